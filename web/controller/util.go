package controller

import (
	"net"
	"net/http"
	"strings"

	"quill/config"
	"quill/logger"
	"quill/web/entity"
	"quill/web/locale"
	"quill/web/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real client IP from proxy headers or the remote
// address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warning(msg+" "+I18nWeb(c, "fail")+": ", err)
	}
	c.JSON(http.StatusOK, m)
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders a template with the shared page context: title, base path,
// the request localizer, the acting identity, and any pending flash messages.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["base_path"] = c.GetString("base_path")

	// Templates call the localizer through the data, keeping each request on
	// its own language.
	if fn, ok := c.Get("I18n"); ok {
		data["i18n"] = fn
	} else {
		data["i18n"] = locale.I18n
	}

	user := middleware.GetCurrentUser(c)
	data["user"] = user
	data["logged_in"] = user != nil

	if _, ok := data["flashes"]; !ok {
		data["flashes"] = takeFlashes(c)
	}

	c.HTML(http.StatusOK, name, getContext(data))
}

func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// flash queues a message for the next rendered page.
func flash(c *gin.Context, msg string) {
	s := sessions.Default(c)
	s.AddFlash(msg)
	if err := s.Save(); err != nil {
		logger.Warning("unable to save flash message:", err)
	}
}

// takeFlashes drains queued flash messages.
func takeFlashes(c *gin.Context) []string {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) > 0 {
		if err := s.Save(); err != nil {
			logger.Warning("unable to clear flash messages:", err)
		}
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// safeNext validates a post-login redirect target, allowing only internal
// paths so the login endpoint cannot be used as an open redirect.
func safeNext(next, fallback string) string {
	if next == "" {
		return fallback
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.Contains(next, "://") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
