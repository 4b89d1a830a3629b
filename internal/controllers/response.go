package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/response"
	"aetherlink-be/internal/result"
)

// bindJSON decodes the body into dst and answers VALIDATION_ERROR when it is
// not valid JSON. Field rules are checked by the services.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, result.Validation("Invalid JSON body", nil))
		return false
	}
	return true
}

// requireQuery returns the named query parameter or answers VALIDATION_ERROR.
func requireQuery(c *gin.Context, name, message string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		response.Error(c, result.Validation(message, nil))
		return "", false
	}
	return v, true
}

func respond[T any](c *gin.Context, status int, data T, err error) {
	response.JSON(c, status, result.From(data, err))
}

// respondEmpty answers 204 on success.
func respondEmpty(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
