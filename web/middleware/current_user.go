package middleware

import (
	"quill/database/model"
	"quill/web/service"
	"quill/web/session"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// CurrentUser resolves the session's user id to a fresh database record on
// every request. Stale sessions pointing at deleted accounts are cleared
// and treated as anonymous.
func CurrentUser(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := session.GetLoginUserId(c)
		if userId != 0 {
			user, err := userService.GetUser(userId)
			if err != nil {
				_ = session.ClearSession(c)
			} else {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// GetCurrentUser returns the acting identity for this request, or nil for
// anonymous callers.
func GetCurrentUser(c *gin.Context) *model.User {
	if obj, exists := c.Get(currentUserKey); exists {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}
