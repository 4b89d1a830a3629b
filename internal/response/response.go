// Package response writes Result values and errors in the API's envelope.
package response

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/logger"
	"aetherlink-be/internal/result"
)

// genericServerMessage replaces 5xx messages in production.
const genericServerMessage = "An unexpected error occurred"

type errorBody struct {
	Error *result.Error `json:"error"`
}

// Error aborts the request with the error envelope. Foreign errors become
// INTERNAL_ERROR. In production details are dropped and 5xx messages are
// replaced with a generic one.
func Error(c *gin.Context, err error) {
	appErr := result.Wrap(err)
	if appErr == nil {
		appErr = result.Internal("unknown error")
	}
	status := result.StatusOf(appErr.Code)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Str("code", string(appErr.Code)).
			Str("path", c.Request.URL.Path).
			Msg(appErr.Message)
	}

	out := *appErr
	if result.Production() {
		out.Details = nil
		if status >= http.StatusInternalServerError {
			out.Message = genericServerMessage
		}
	}

	if appErr.Code == result.CodeRateLimited {
		if retry, ok := retryAfter(appErr.Details); ok {
			c.Header("Retry-After", strconv.FormatInt(retry, 10))
		}
	}

	c.AbortWithStatusJSON(status, errorBody{Error: &out})
}

func retryAfter(details map[string]any) (int64, bool) {
	switch v := details["retryAfter"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// JSON writes a successful Result with the given status, or the error
// envelope on failure. A nil payload answers 204 with no body.
func JSON[T any](c *gin.Context, status int, r result.Result[T]) {
	if r.IsFail() {
		Error(c, r.Err())
		return
	}
	data := r.Data()
	if isNil(data) {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(status, data)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
