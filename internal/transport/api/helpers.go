package api

import (
	"strconv"

	"github.com/fsdevblog/laverie-loyal/internal/transport/api/middlewares"
	"github.com/fsdevblog/laverie-loyal/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID устанавливается в
// middlewares.AuthRequired. В случае, если значения в контексте нет или ошибка утверждения типа -
// вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userIDStr, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDStr.(int64)
	if !ok {
		return 0
	}
	return userID
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middlewares.CurrentUserRoleKey) == tokens.RoleAdmin
}

func parseInt64Param(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64) //nolint:wrapcheck
}
