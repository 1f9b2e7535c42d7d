package middleware

import (
	"net/http"
	"net/url"

	"quill/database/model"
	"quill/web/service"

	"github.com/gin-gonic/gin"
)

// RequirePermissions guards a route behind the authorization gate. The
// check runs fresh on every request: anonymous callers are sent to the
// login page (or get 401 on AJAX), authenticated callers whose role does
// not cover the required permissions get 403.
func RequirePermissions(authz *service.AuthzService, required ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)

		switch authz.Check(user, required...) {
		case service.Granted:
			c.Next()
		case service.Unauthenticated:
			if isAjax(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"msg":     "login required",
				})
				return
			}
			basePath := c.GetString("base_path")
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusTemporaryRedirect, basePath+"login?next="+next)
			c.Abort()
		default:
			if isAjax(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success": false,
					"msg":     "permission denied",
				})
				return
			}
			c.AbortWithStatus(http.StatusForbidden)
		}
	}
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
