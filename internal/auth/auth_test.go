package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/response"
	"github.com/eventmarket/backend/pkg/utils"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", 1)
	user := &models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleProvider}

	token, err := svc.Generate(user)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "provider", claims.Role)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", 1)
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.Generate(&models.User{ID: uuid.New(), Role: models.RoleClient})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("other", 1)
	other.now = func() time.Time { return issued }
	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsUnknownRole(t *testing.T) {
	svc := NewJWTService("secret", 1)
	token, err := svc.Generate(&models.User{ID: uuid.New(), Role: models.Role("speaker")})
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	created []CreateUserParams
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*models.User{}} }

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, p CreateUserParams) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: p.Email, Password: p.PasswordHash, FullName: p.FullName, Role: p.Role}
	m.byEmail[strings.ToLower(p.Email)] = u
	m.created = append(m.created, p)
	return u, nil
}

func (m *memUsers) List(context.Context) ([]models.UserPublic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserPublic
	for _, u := range m.byEmail {
		out = append(out, u.ToPublic())
	}
	return out, nil
}

func newAuthRouter(store UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, NewJWTService("secret", 1), nil)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func post(t *testing.T, r http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestRegisterProviderCreatesProfile(t *testing.T) {
	store := newMemUsers()
	r := newAuthRouter(store)

	w, body := post(t, r, "/auth/register", map[string]interface{}{
		"email": "dj@example.com", "password": "secret1", "fullName": "DJ Max",
		"role": "provider", "city": "Lyon", "basePrice": 800,
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Error)
	require.Len(t, store.created, 1)
	require.NotNil(t, store.created[0].Provider)
	require.Equal(t, "DJ Max", store.created[0].Provider.Name)
	require.Equal(t, "Lyon", store.created[0].Provider.City)
}

func TestRegisterValidation(t *testing.T) {
	r := newAuthRouter(newMemUsers())

	w, _ := post(t, r, "/auth/register", map[string]interface{}{
		"email": "x@example.com", "password": "secret1", "fullName": "X", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(t, r, "/auth/register", map[string]interface{}{
		"email": "x@example.com", "password": "secret1", "fullName": "X", "role": "provider",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(t, r, "/auth/register", map[string]interface{}{
		"email": "x@example.com", "password": "secret1", "fullName": "X",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := post(t, r, "/auth/register", map[string]interface{}{
		"email": "X@example.com", "password": "secret1", "fullName": "X",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "email already registered", body.Error)
}

func TestLogin(t *testing.T) {
	store := newMemUsers()
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	_, err = store.Create(context.Background(), CreateUserParams{Email: "c@example.com", PasswordHash: hash, Role: models.RoleClient})
	require.NoError(t, err)
	r := newAuthRouter(store)

	w, _ := post(t, r, "/auth/login", map[string]string{"email": "c@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := post(t, r, "/auth/login", map[string]string{"email": "c@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.NotEmpty(t, data["token"])
}
