package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"quill/database"
	"quill/database/model"
	"quill/logger"
	"quill/web/service"
	"quill/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func setup() {
	logger.InitLogger(logging.ERROR)
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

// newTestEngine builds a minimal engine with sessions, identity resolution,
// a login helper route, and one route guarded by the gate.
func newTestEngine(required ...model.Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	userService := service.UserService{}
	authz := service.NewAuthzService()

	store := cookie.NewStore([]byte("test-secret"))
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", "/")
		c.Next()
	})
	engine.Use(CurrentUser(&userService))

	engine.GET("/login-as/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		_ = session.SetLoginUser(c, id)
		c.Status(http.StatusOK)
	})
	engine.GET("/guarded", RequirePermissions(authz, required...), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return engine
}

// loginCookie performs the login helper request and returns the session
// cookie for subsequent requests.
func loginCookie(t *testing.T, engine *gin.Engine, userId int) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login-as/"+strconv.Itoa(userId), nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	assert.NotEmpty(t, cookies)
	return cookies[0].Name + "=" + cookies[0].Value
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestEngine(model.PermCreatePost)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?next=")
}

func TestGateReturns401ForAnonymousAjax(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestEngine(model.PermCreatePost)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateForbidsInsufficientRole(t *testing.T) {
	setup()
	defer teardown()

	userService := service.UserService{}
	user, err := userService.Register("member@example.com", "member", "password1")
	assert.NoError(t, err)

	engine := newTestEngine(model.PermCreatePost)
	cookieHeader := loginCookie(t, engine, user.Id)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Cookie", cookieHeader)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGateAppliesPromotionToNextRequest(t *testing.T) {
	setup()
	defer teardown()

	userService := service.UserService{}
	user, err := userService.Register("member@example.com", "member", "password1")
	assert.NoError(t, err)

	engine := newTestEngine(model.PermCreatePost)
	cookieHeader := loginCookie(t, engine, user.Id)

	// Forbidden before promotion
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Cookie", cookieHeader)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Promote without touching the session
	assert.NoError(t, userService.SetRole("member@example.com", model.RoleEditor))

	// The same cookie is granted on the very next request
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Cookie", cookieHeader)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateAllowsCommentingForStandardUser(t *testing.T) {
	setup()
	defer teardown()

	userService := service.UserService{}
	user, err := userService.Register("member@example.com", "member", "password1")
	assert.NoError(t, err)

	engine := newTestEngine(model.PermPostComment)
	cookieHeader := loginCookie(t, engine, user.Id)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Cookie", cookieHeader)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaleSessionIsCleared(t *testing.T) {
	setup()
	defer teardown()

	engine := newTestEngine(model.PermPostComment)

	// Session points at an account that does not exist
	cookieHeader := loginCookie(t, engine, 424242)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Cookie", cookieHeader)
	engine.ServeHTTP(w, req)

	// Treated as anonymous, not forbidden
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
}
