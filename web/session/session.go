// Package session wraps gin-contrib cookie sessions. Only the user id is
// stored in the cookie; the acting identity is re-read from the database on
// every request so role changes take effect immediately.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUserId = "LOGIN_USER_ID"

	// CookieName is the session cookie written by the cookie store.
	CookieName = "quill"
)

// SetLoginUser binds the session to the given user id.
func SetLoginUser(c *gin.Context, userId int) error {
	s := sessions.Default(c)
	s.Set(loginUserId, userId)
	return s.Save()
}

// SetMaxAge adjusts the session cookie lifetime in seconds.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// GetLoginUserId returns the bound user id, or 0 for anonymous sessions.
func GetLoginUserId(c *gin.Context) int {
	s := sessions.Default(c)
	if obj := s.Get(loginUserId); obj != nil {
		if id, ok := obj.(int); ok {
			return id
		}
	}
	return 0
}

// IsLogin reports whether the request carries an authenticated session.
func IsLogin(c *gin.Context) bool {
	return GetLoginUserId(c) != 0
}

// ClearSession tears the session down. Safe to call on an already-ended
// session.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return nil
}
