// Package controller provides the HTTP request handlers for the quill blog:
// public pages, authentication, content management, and the JSON API.
package controller

import (
	"quill/logger"

	"github.com/gin-gonic/gin"
)

// BaseController carries functionality shared by all controllers.
type BaseController struct{}

// I18nWeb retrieves a localized message for the current request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not exists in gin context!")
		return name
	}
	i18nFunc, _ := anyfunc.(func(key string, params ...string) string)
	return i18nFunc(name, params...)
}
