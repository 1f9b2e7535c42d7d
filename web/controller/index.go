package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"quill/logger"
	"quill/util/limiter"
	"quill/web/middleware"
	"quill/web/service"
	"quill/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm is the login page submission.
type LoginForm struct {
	Email         string `form:"email" binding:"required,email"`
	Password      string `form:"password" binding:"required"`
	TwoFactorCode string `form:"twoFactorCode"`
	Next          string `form:"next"`
}

// RegisterForm is the registration page submission.
type RegisterForm struct {
	Email           string `form:"email" binding:"required,email"`
	Username        string `form:"username" binding:"required,min=4,max=25"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" binding:"required,eqfield=Password"`
}

// ContactForm is the contact page submission. Phone is optional but must be
// 10 to 15 digits with an optional leading + when present.
type ContactForm struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required,email"`
	Phone   string `form:"phone" binding:"omitempty,phone"`
	Message string `form:"message" binding:"required"`
}

// IndexController serves the public pages: the post listing, authentication,
// the contact form, the about page, and the JSON feed.
type IndexController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	postService    service.PostService
	mailService    service.MailService
	feedService    service.FeedService
	tgbot          service.Tgbot
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/about", a.about)
	g.GET("/register", a.registerPage)
	g.POST("/register", a.register)
	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)
	g.GET("/contact", a.contactPage)
	g.POST("/contact", a.contact)
	g.GET("/feed.json", a.feed)
}

func (a *IndexController) index(c *gin.Context) {
	service.AddPageView()

	pageSize, err := a.settingService.GetPageSize()
	if err != nil || pageSize < 1 {
		pageSize = 10
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, total, err := a.postService.PostsPage(page, pageSize)
	if err != nil {
		logger.Warning("load posts err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	html(c, "index.html", I18nWeb(c, "pages.index.title"), gin.H{
		"posts":     posts,
		"has_prev":  page > 1,
		"has_next":  int64(page*pageSize) < total,
		"prev_page": page - 1,
		"next_page": page + 1,
	})
}

func (a *IndexController) about(c *gin.Context) {
	service.AddPageView()
	html(c, "about.html", I18nWeb(c, "pages.about.title"), nil)
}

func (a *IndexController) registerPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		return
	}
	html(c, "register.html", I18nWeb(c, "pages.register.title"), gin.H{
		"form": RegisterForm{},
	})
}

func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		html(c, "register.html", I18nWeb(c, "pages.register.title"), gin.H{
			"error": I18nWeb(c, "pages.register.toasts.invalidFormData"),
			"form":  form,
		})
		return
	}

	user, err := a.userService.Register(form.Email, form.Username, form.Password)
	if errors.Is(err, service.ErrDuplicateIdentity) {
		// The account already exists, so send the visitor to the login page
		// instead of re-rendering the form.
		flash(c, I18nWeb(c, "pages.register.toasts.duplicate"))
		c.Redirect(http.StatusFound, c.GetString("base_path")+"login")
		return
	} else if err != nil {
		logger.Warning("register err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if err := a.startSession(c, user.Id); err != nil {
		logger.Warning("session err after register:", err)
	}
	logger.Infof("new account registered: %s", form.Email)
	flash(c, I18nWeb(c, "pages.register.toasts.success"))
	c.Redirect(http.StatusFound, c.GetString("base_path"))
}

func (a *IndexController) loginPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		return
	}
	html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
		"next": c.Query("next"),
	})
}

func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
			"error": I18nWeb(c, "pages.login.toasts.invalidFormData"),
			"next":  form.Next,
		})
		return
	}

	remoteIp := getRemoteIp(c)
	loginLimit, err := a.settingService.GetLoginLimit()
	if err != nil {
		logger.Warning("get login limit err:", err)
		loginLimit = 10
	}
	if loginLimit > 0 && !limiter.Allow("login:"+remoteIp, int64(loginLimit), time.Minute) {
		logger.Warningf("login throttled for %s", remoteIp)
		html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
			"error": I18nWeb(c, "pages.login.toasts.tooManyAttempts"),
			"next":  form.Next,
		})
		return
	}

	timeStr := time.Now().Format("2006-01-02 15:04:05")
	user, err := a.userService.Authenticate(form.Email, form.Password, form.TwoFactorCode)
	if err != nil {
		logger.Warningf("wrong credentials for %s, ip: %s", form.Email, remoteIp)
		a.tgbot.UserLoginNotify(form.Email, remoteIp, timeStr, false)
		html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
			"error": I18nWeb(c, "pages.login.toasts.wrongCredentials"),
			"next":  form.Next,
		})
		return
	}

	if err := a.startSession(c, user.Id); err != nil {
		logger.Warning("session err:", err)
		html(c, "login.html", I18nWeb(c, "pages.login.title"), gin.H{
			"error": I18nWeb(c, "fail"),
			"next":  form.Next,
		})
		return
	}

	limiter.Reset("login:" + remoteIp)
	logger.Infof("%s logged in, ip: %s", form.Email, remoteIp)
	a.tgbot.UserLoginNotify(form.Email, remoteIp, timeStr, true)

	flash(c, I18nWeb(c, "pages.login.toasts.successLogin"))
	c.Redirect(http.StatusFound, safeNext(form.Next, c.GetString("base_path")))
}

// startSession binds the cookie session to the user and applies the
// configured lifetime.
func (a *IndexController) startSession(c *gin.Context, userId int) error {
	maxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("get session max age err:", err)
		maxAge = 0
	}
	if maxAge > 0 {
		if err := session.SetMaxAge(c, maxAge*60); err != nil {
			return err
		}
	}
	return session.SetLoginUser(c, userId)
}

func (a *IndexController) logout(c *gin.Context) {
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.Infof("%s logged out", user.Email)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("clear session err:", err)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path"))
}

func (a *IndexController) contactPage(c *gin.Context) {
	service.AddPageView()
	html(c, "contact.html", I18nWeb(c, "pages.contact.title"), gin.H{
		"form": ContactForm{},
	})
}

func (a *IndexController) contact(c *gin.Context) {
	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		msg := I18nWeb(c, "pages.login.toasts.invalidFormData")
		if form.Phone != "" {
			msg = I18nWeb(c, "pages.contact.invalidPhone")
		}
		html(c, "contact.html", I18nWeb(c, "pages.contact.title"), gin.H{
			"error": msg,
			"form":  form,
		})
		return
	}

	ref, err := a.mailService.SendContactMessage(form.Name, form.Email, form.Phone, form.Message)
	if err != nil {
		logger.Warning("contact message not delivered:", err)
		html(c, "contact.html", I18nWeb(c, "pages.contact.title"), gin.H{
			"error": I18nWeb(c, "pages.contact.notDelivered"),
			"form":  form,
		})
		return
	}

	a.tgbot.ContactNotify(form.Name, form.Email, ref)
	flash(c, I18nWeb(c, "pages.contact.sent", "ref=="+ref))
	c.Redirect(http.StatusFound, c.GetString("base_path")+"contact")
}

func (a *IndexController) feed(c *gin.Context) {
	rendered, err := a.feedService.Get(c.GetString("base_path"))
	if err != nil {
		logger.Warning("render feed err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", rendered)
}
