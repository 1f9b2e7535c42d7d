package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quill/database/model"
	"quill/logger"
	"quill/util/limiter"
	"quill/web/service"

	"github.com/gin-gonic/gin"
)

// APILoginForm is the token login request body.
type APILoginForm struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"twoFactorCode"`
}

// APIPostForm is the post create/update request body.
type APIPostForm struct {
	Title    string `json:"title" binding:"required"`
	Subtitle string `json:"subtitle" binding:"required"`
	ImgURL   string `json:"imgUrl" binding:"required,url"`
	Body     string `json:"body" binding:"required"`
}

// APIController exposes a token-authenticated JSON API over the same
// services and the same authorization gate as the HTML pages. Bearer tokens
// only carry the user id; role and permissions are resolved fresh on every
// call.
type APIController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	postService    service.PostService
	authService    service.AuthService
	authz          *service.AuthzService
	feedService    service.FeedService
}

func NewAPIController(g *gin.RouterGroup, authz *service.AuthzService) *APIController {
	a := &APIController{authz: authz}
	a.initRouter(g.Group("/api"))
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)

	g.GET("/posts", a.listPosts)

	authed := g.Group("")
	authed.Use(a.bearerAuth)
	authed.POST("/posts", a.createPost)
	authed.PUT("/posts/:id", a.updatePost)
	authed.DELETE("/posts/:id", a.deletePost)
}

func (a *APIController) login(c *gin.Context) {
	var form APILoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	remoteIp := getRemoteIp(c)
	loginLimit, err := a.settingService.GetLoginLimit()
	if err != nil {
		loginLimit = 10
	}
	if loginLimit > 0 && !limiter.Allow("login:"+remoteIp, int64(loginLimit), time.Minute) {
		pureJsonMsg(c, http.StatusTooManyRequests, false, "too many login attempts")
		return
	}

	user, err := a.userService.Authenticate(form.Email, form.Password, form.TwoFactorCode)
	if err != nil {
		logger.Warningf("api login failed for %s, ip: %s", form.Email, remoteIp)
		pureJsonMsg(c, http.StatusUnauthorized, false, "invalid credentials")
		return
	}

	token, err := a.authService.IssueToken(user.Id)
	if err != nil {
		jsonMsg(c, "issue token", err)
		return
	}

	limiter.Reset("login:" + remoteIp)
	jsonObj(c, gin.H{"token": token}, nil)
}

// bearerAuth resolves the Authorization header into a fresh user record.
// The token proves identity only; permissions come from the database on
// every request.
func (a *APIController) bearerAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		pureJsonMsg(c, http.StatusUnauthorized, false, "missing bearer token")
		c.Abort()
		return
	}

	userId, err := a.authService.VerifyToken(strings.TrimPrefix(header, prefix))
	if err != nil {
		pureJsonMsg(c, http.StatusUnauthorized, false, "invalid token")
		c.Abort()
		return
	}

	user, err := a.userService.GetUser(userId)
	if err != nil {
		pureJsonMsg(c, http.StatusUnauthorized, false, "invalid token")
		c.Abort()
		return
	}

	c.Set("apiUser", user)
	c.Next()
}

func (a *APIController) apiUser(c *gin.Context) *model.User {
	if obj, ok := c.Get("apiUser"); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

// check runs the gate and writes the JSON error when the call is not
// granted.
func (a *APIController) check(c *gin.Context, user *model.User, required ...model.Permission) bool {
	switch a.authz.Check(user, required...) {
	case service.Granted:
		return true
	case service.Unauthenticated:
		pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
	default:
		pureJsonMsg(c, http.StatusForbidden, false, "permission denied")
	}
	return false
}

func (a *APIController) listPosts(c *gin.Context) {
	posts, err := a.postService.AllPosts()
	jsonObj(c, posts, err)
}

func (a *APIController) createPost(c *gin.Context) {
	user := a.apiUser(c)
	if !a.check(c, user, model.PermCreatePost) {
		return
	}

	var form APIPostForm
	if err := c.ShouldBindJSON(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	post, err := a.postService.CreatePost(form.Title, form.Subtitle, form.Body, form.ImgURL, user)
	if errors.Is(err, service.ErrDuplicateTitle) {
		pureJsonMsg(c, http.StatusConflict, false, err.Error())
		return
	} else if err != nil {
		jsonMsg(c, "create post", err)
		return
	}

	a.feedService.Invalidate()
	jsonObj(c, post, nil)
}

func (a *APIController) updatePost(c *gin.Context) {
	user := a.apiUser(c)
	if !a.check(c, user, model.PermEditPost) {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusNotFound, false, "no such post")
		return
	}

	var form APIPostForm
	if err := c.ShouldBindJSON(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	err = a.postService.UpdatePost(id, form.Title, form.Subtitle, form.Body, form.ImgURL, user)
	if errors.Is(err, service.ErrNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, "no such post")
		return
	} else if errors.Is(err, service.ErrDuplicateTitle) {
		pureJsonMsg(c, http.StatusConflict, false, err.Error())
		return
	} else if err != nil {
		jsonMsg(c, "update post", err)
		return
	}

	a.feedService.Invalidate()
	jsonMsg(c, "", nil)
}

func (a *APIController) deletePost(c *gin.Context) {
	user := a.apiUser(c)
	if !a.check(c, user, model.PermDeletePost) {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusNotFound, false, "no such post")
		return
	}

	err = a.postService.DeletePost(id)
	if errors.Is(err, service.ErrNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, "no such post")
		return
	} else if err != nil {
		jsonMsg(c, "delete post", err)
		return
	}

	a.feedService.Invalidate()
	jsonMsg(c, "", nil)
}
