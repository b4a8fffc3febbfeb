package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/auth"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

func newRouter(jwt *auth.JWTService, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(jwt), RequireRole(roles...), func(c *gin.Context) {
		a := Actor(c)
		response.OK(c, gin.H{"id": a.UserID, "role": a.Role})
	})
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearer(t *testing.T) {
	tok, ok := bearer("Bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	tok, ok = bearer("  bearer   xyz ")
	require.True(t, ok)
	require.Equal(t, "xyz", tok)

	for _, h := range []string{"abc", "Basic abc", "Bearer ", "Bearer"} {
		_, ok = bearer(h)
		require.False(t, ok, h)
	}
}

func TestJWTAndRoleGate(t *testing.T) {
	jwt := auth.NewJWTService("secret", 1)
	r := newRouter(jwt, models.RoleClient, models.RoleAdmin)

	require.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "Token x").Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-jwt").Code)

	client := &models.User{ID: uuid.New(), Email: "c@x.io", Role: models.RoleClient}
	token, err := jwt.Generate(client)
	require.NoError(t, err)
	w := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), client.ID.String())

	provider := &models.User{ID: uuid.New(), Email: "p@x.io", Role: models.RoleProvider}
	token, err = jwt.Generate(provider)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)
}

func TestRequireRoleWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireRole(models.RoleAdmin), func(c *gin.Context) { response.NoContent(c) })
	require.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", func(c *gin.Context) { response.NoContent(c) })
	h := CORS([]string{"https://app.example.com"}).Handler(r)

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
