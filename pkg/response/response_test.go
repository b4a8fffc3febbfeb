package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/pkg/apperr"
)

func TestErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.BadRequestf("need is locked"), http.StatusBadRequest, "need is locked"},
		{apperr.New(apperr.Unauthorized, "missing actor"), http.StatusUnauthorized, "missing actor"},
		{apperr.Forbiddenf("not event owner"), http.StatusForbidden, "not event owner"},
		{apperr.NotFoundf("offer not found"), http.StatusNotFound, "offer not found"},
		{apperr.Conflictf("need already locked"), http.StatusConflict, "need already locked"},
		{apperr.New(apperr.Unavailable, "storage disabled"), http.StatusServiceUnavailable, "storage disabled"},
		{errors.New("pq: relation missing"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, tc.err)

		require.Equal(t, tc.status, w.Code)
		var body Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.False(t, body.Success)
		require.Equal(t, tc.msg, body.Error)
	}
}

func TestInternalErrorAttachedToContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("boom"))

	require.Len(t, c.Errors, 1)
	require.Contains(t, c.Errors.String(), "boom")
}
