package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"authhub/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, handler gin.HandlerFunc) (int, ApiResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/x/:id", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/abc", nil))

	var res ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w.Code, res
}

func TestFail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperr.NotFound("User", "id", "x"), http.StatusNotFound, "User not found with id: 'x'"},
		{"bad request", apperr.BadRequest("User Already Approved"), http.StatusBadRequest, "User Already Approved"},
		{"conflict", apperr.Conflict("Email already taken"), http.StatusConflict, "Email already taken"},
		{"internal error is hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := run(t, func(c *gin.Context) { fail(c, zap.NewNop(), tt.err) })
			assert.Equal(t, tt.status, status)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestInvalidInputWithoutValidationErrors(t *testing.T) {
	status, res := run(t, func(c *gin.Context) { invalidInput(c, errors.New("unexpected EOF")) })
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request data: unexpected EOF", res.Message)
	assert.Empty(t, res.Errors)
}

func TestUUIDParam(t *testing.T) {
	status, res := run(t, func(c *gin.Context) {
		if _, ok := uuidParam(c, "id"); ok {
			respond(c, http.StatusOK, "", nil)
		}
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid id, expected a UUID", res.Message)
}
