package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlink-be/internal/result"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/things", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{result.Validation("bad", nil), http.StatusBadRequest},
		{result.Unauthorized("who"), http.StatusUnauthorized},
		{result.Forbidden("no"), http.StatusForbidden},
		{result.NotFound("gone"), http.StatusNotFound},
		{result.Conflict("dup", nil), http.StatusConflict},
		{result.New(result.CodeNetwork, "net", nil), http.StatusBadGateway},
		{result.New(result.CodeTimeout, "slow", nil), http.StatusGatewayTimeout},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		c, w := newContext()
		Error(c, tt.err)

		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.True(t, c.IsAborted())
	}
}

func TestErrorEnvelope(t *testing.T) {
	c, w := newContext()
	Error(c, result.Validation("Invalid link data", map[string]any{"linkId": "abc"}))

	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "Invalid link data", body.Error.Message)
	assert.Equal(t, "abc", body.Error.Details["linkId"])
}

func TestErrorDropsDetailsInProduction(t *testing.T) {
	result.SetProduction(true)
	defer result.SetProduction(false)

	c, w := newContext()
	Error(c, result.Conflict("Handle is already taken", map[string]any{"handle": "neo"}))

	body := decode(t, w)
	assert.Equal(t, "Handle is already taken", body.Error.Message)
	assert.Nil(t, body.Error.Details)
	assert.NotContains(t, w.Body.String(), "details")

	// server errors hide their message too
	c, w = newContext()
	Error(c, result.Wrap(errors.New(`failed to find profile: pq: password authentication failed for user "admin"`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "An unexpected error occurred", body.Error.Message)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Nil(t, body.Error.Details)
}

func TestErrorKeepsServerMessageOutsideProduction(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("failed to find profile: connection refused"))

	body := decode(t, w)
	assert.Equal(t, "failed to find profile: connection refused", body.Error.Message)
	assert.Contains(t, body.Error.Details, "stack")
}

func TestErrorSetsRetryAfter(t *testing.T) {
	c, w := newContext()
	Error(c, result.New(result.CodeRateLimited, "Too many requests", map[string]any{"retryAfter": int64(42)}))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
}

func TestErrorNil(t *testing.T) {
	c, w := newContext()
	Error(c, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, w).Error.Code)
}

func TestJSON(t *testing.T) {
	t.Run("payload", func(t *testing.T) {
		c, w := newContext()
		JSON(c, http.StatusCreated, result.Ok(map[string]string{"id": "1"}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
	})

	t.Run("nil pointer is no content", func(t *testing.T) {
		c, w := newContext()
		var missing *struct{ ID string }
		JSON(c, http.StatusOK, result.Ok(missing))
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("empty slice stays a list", func(t *testing.T) {
		c, w := newContext()
		JSON(c, http.StatusOK, result.Ok([]string{}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		c, w := newContext()
		JSON(c, http.StatusOK, result.Fail[*struct{}](result.NotFound("Profile not found")))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Profile not found", decode(t, w).Error.Message)
	})
}
