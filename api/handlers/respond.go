package handlers

import (
	"net/http"

	apperr "messenger/pkg/errors"

	"github.com/gin-gonic/gin"
)

// abortWithError транслирует код доменной ошибки в HTTP статус
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperr.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperr.CodePermissionDenied:
		status = http.StatusForbidden
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperr.CodeOf(err)})
}

// currentUserID достает id аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID.(int64), true
}
