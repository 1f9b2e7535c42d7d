package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"quill/database"
	"quill/database/model"
	"quill/logger"
	"quill/web/locale"
	"quill/web/service"
	"quill/web/session"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

// newRouter builds the real server router on a throwaway database, with the
// embedded templates and translations loaded.
func newRouter(t *testing.T) *gin.Engine {
	logger.InitLogger(logging.ERROR)
	os.Remove("test.db")
	assert.NoError(t, database.InitDB("test.db"))
	assert.NoError(t, locale.InitLocalizer(i18nFS))

	gin.SetMode(gin.TestMode)
	engine, err := NewServer().initRouter()
	assert.NoError(t, err)
	return engine
}

func closeRouter() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func getPage(engine *gin.Engine, path string, cookies ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.Header.Add("Cookie", cookie)
	}
	engine.ServeHTTP(w, req)
	return w
}

func postForm(engine *gin.Engine, path string, values url.Values, cookies ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.Header.Add("Cookie", cookie)
	}
	engine.ServeHTTP(w, req)
	return w
}

// sessionCookie extracts the session cookie set on a response. The session
// may be saved more than once while handling a request, so the last
// Set-Cookie wins.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	var value string
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			value = c.Name + "=" + c.Value
		}
	}
	if value == "" {
		t.Fatal("session cookie not set")
	}
	return value
}

// loginAsAdmin signs in with the seeded administrator account and returns
// the session cookie.
func loginAsAdmin(t *testing.T, engine *gin.Engine) string {
	w := postForm(engine, "/login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"admin"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	return sessionCookie(t, w)
}

func TestLogoutIsIdempotent(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	cookie := loginAsAdmin(t, engine)

	w := getPage(engine, "/logout", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cleared := sessionCookie(t, w)

	// Logging out again with the same cookie is a clean redirect, not an
	// error
	w = getPage(engine, "/logout", cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	// And without any session at all
	w = getPage(engine, "/logout")
	assert.Equal(t, http.StatusFound, w.Code)

	// The cleared session no longer opens the admin dashboard
	w = getPage(engine, "/admin", cleared)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?next=")
}

func TestContactValidationShortCircuitsDelivery(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	form := url.Values{
		"name":    {"Pat"},
		"email":   {"pat@example.com"},
		"phone":   {"12345"},
		"message": {"hello"},
	}

	// A bad phone re-renders the form without ever reaching the mail relay.
	// No relay is configured here, so reaching it would surface the
	// delivery-failure message instead.
	w := postForm(engine, "/contact", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Phone must be 10 to 15 digits")
	assert.NotContains(t, w.Body.String(), "could not be delivered")

	// A valid submission does reach the relay and reports the failed
	// delivery
	form.Set("phone", "+12025551234")
	w = postForm(engine, "/contact", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "could not be delivered")
}

func TestDuplicateRegistrationRedirectsToLogin(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	// The administrator account is seeded, so this email is taken
	w := postForm(engine, "/register", url.Values{
		"email":           {"admin@example.com"},
		"username":        {"somebody"},
		"password":        {"password1"},
		"confirmPassword": {"password1"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The login page then shows the explanation
	w = getPage(engine, "/login", sessionCookie(t, w))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestSetRoleFormPostRedirectsToDashboard(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	userService := service.UserService{}
	_, err := userService.Register("member@example.com", "member", "password1")
	assert.NoError(t, err)

	cookie := loginAsAdmin(t, engine)

	// A plain form post lands back on the dashboard
	w := postForm(engine, "/admin/users/role", url.Values{
		"email": {"member@example.com"},
		"role":  {model.RoleEditor},
	}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	member, err := userService.GetUserByEmail("member@example.com")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleEditor, member.Role)

	// AJAX callers still get the JSON envelope
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/users/role",
		strings.NewReader(url.Values{
			"email": {"member@example.com"},
			"role":  {model.RoleAdministrator},
		}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Add("Cookie", cookie)
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":true`)
}

func TestAdminSettingEndpoints(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	// Settings are admin-only
	w := postForm(engine, "/admin/setting/all", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	cookie := loginAsAdmin(t, engine)

	w = postForm(engine, "/admin/setting/all", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webPort")

	// Enable the second factor through the settings endpoint
	w = postForm(engine, "/admin/setting/update", url.Values{
		"webPort":         {"8080"},
		"webBasePath":     {"/"},
		"sessionMaxAge":   {"60"},
		"pageSize":        {"10"},
		"timeLocation":    {"UTC"},
		"loginLimit":      {"10"},
		"smtpPort":        {"587"},
		"smtpTimeout":     {"10"},
		"twoFactorEnable": {"true"},
		"twoFactorToken":  {"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"},
	}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	settingService := service.SettingService{}
	enabled, err := settingService.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.True(t, enabled)

	token, err := settingService.GetTwoFactorToken()
	assert.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP", token)

	// Invalid settings are rejected and nothing is persisted
	w = postForm(engine, "/admin/setting/update", url.Values{
		"webPort":       {"-1"},
		"sessionMaxAge": {"60"},
	}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	port, err := settingService.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 8080, port)
}

func TestLocalizationIsPerRequest(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	// Concurrent visitors in different languages each get their own
	// translation
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		lang, want := "en-US", "About"
		if i%2 == 1 {
			lang, want = "es-ES", "Acerca de"
		}
		wg.Add(1)
		go func(lang, want string) {
			defer wg.Done()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/about", nil)
			req.AddCookie(&http.Cookie{Name: "lang", Value: lang})
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), want)
		}(lang, want)
	}
	wg.Wait()
}

func TestIndexPaginatesWithPageSizeSetting(t *testing.T) {
	engine := newRouter(t)
	defer closeRouter()

	userService := service.UserService{}
	postService := service.PostService{}
	admin, err := userService.GetUserByEmail("admin@example.com")
	assert.NoError(t, err)

	titles := []string{"Alpha", "Beta", "Gamma"}
	for _, title := range titles {
		_, err := postService.CreatePost(title, "s", "b", "", admin)
		assert.NoError(t, err)
	}

	settingService := service.SettingService{}
	allSetting, err := settingService.GetAllSetting()
	assert.NoError(t, err)
	allSetting.PageSize = 2
	assert.NoError(t, settingService.UpdateAllSetting(allSetting))

	// Newest two posts on the first page, with a link onward
	w := getPage(engine, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gamma")
	assert.Contains(t, w.Body.String(), "Beta")
	assert.NotContains(t, w.Body.String(), "Alpha")
	assert.Contains(t, w.Body.String(), "?page=2")

	// The rest on the second page
	w = getPage(engine, "/?page=2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alpha")
	assert.NotContains(t, w.Body.String(), "Gamma")
}
