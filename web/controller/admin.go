package controller

import (
	"errors"
	"net/http"
	"strconv"

	"quill/database/model"
	"quill/logger"
	"quill/web/entity"
	"quill/web/middleware"
	"quill/web/service"

	"github.com/gin-gonic/gin"
)

// SetRoleForm assigns a role to an account by email.
type SetRoleForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
	Role  string `form:"role" json:"role" binding:"required"`
}

// AdminController serves the dashboard. The whole group sits behind the
// comment-moderation permission, which only the administrator role carries
// in the seeded catalog.
type AdminController struct {
	BaseController

	userService    service.UserService
	roleService    service.RoleService
	serverService  service.ServerService
	settingService service.SettingService
}

func NewAdminController(g *gin.RouterGroup, authz *service.AuthzService) *AdminController {
	a := &AdminController{}
	g = g.Group("/admin")
	g.Use(middleware.RequirePermissions(authz, model.PermDeleteComment))
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.dashboard)
	g.GET("", a.dashboard)
	g.POST("/status", a.status)
	g.POST("/users/role", a.setRole)
	g.POST("/logs", a.logs)
	g.POST("/setting/all", a.getAllSetting)
	g.POST("/setting/update", a.updateSetting)
}

func (a *AdminController) dashboard(c *gin.Context) {
	users, err := a.userService.AllUsers()
	if err != nil {
		logger.Warning("load users err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	roles, err := a.roleService.AllRoles()
	if err != nil {
		logger.Warning("load roles err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	html(c, "admin.html", I18nWeb(c, "pages.admin.title"), gin.H{
		"users":  users,
		"roles":  roles,
		"status": a.serverService.GetStatus(),
	})
}

func (a *AdminController) status(c *gin.Context) {
	jsonObj(c, a.serverService.GetStatus(), nil)
}

func (a *AdminController) setRole(c *gin.Context) {
	var form SetRoleForm
	if err := c.ShouldBind(&form); err != nil {
		a.setRoleReply(c, http.StatusBadRequest, I18nWeb(c, "pages.login.toasts.invalidFormData"), err)
		return
	}

	err := a.userService.SetRole(form.Email, form.Role)
	if errors.Is(err, service.ErrUnknownRole) || errors.Is(err, service.ErrNotFound) {
		a.setRoleReply(c, http.StatusBadRequest, err.Error(), err)
		return
	} else if err != nil {
		a.setRoleReply(c, http.StatusInternalServerError, I18nWeb(c, "fail"), err)
		return
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		logger.Infof("%s set role of %s to %q", actor.Email, form.Email, form.Role)
	}
	a.setRoleReply(c, http.StatusOK, I18nWeb(c, "pages.admin.toasts.roleUpdated"), nil)
}

// setRoleReply answers AJAX callers with the JSON envelope and plain form
// posts with a flash and a redirect back to the dashboard.
func (a *AdminController) setRoleReply(c *gin.Context, statusCode int, msg string, err error) {
	if isAjax(c) {
		if statusCode == http.StatusOK {
			jsonMsg(c, "", nil)
		} else {
			pureJsonMsg(c, statusCode, false, msg)
		}
		return
	}
	if err != nil {
		flash(c, msg+" ("+err.Error()+")")
	} else {
		flash(c, msg)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"admin")
}

func (a *AdminController) getAllSetting(c *gin.Context) {
	allSetting, err := a.settingService.GetAllSetting()
	jsonObj(c, allSetting, err)
}

// updateSetting persists runtime settings, including the two-factor toggle.
// Changes to listen address, port, or TLS files take effect on restart.
func (a *AdminController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	if err := c.ShouldBind(allSetting); err != nil {
		jsonMsg(c, I18nWeb(c, "pages.login.toasts.invalidFormData"), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.admin.toasts.settingsUpdated"), a.settingService.UpdateAllSetting(allSetting))
}

func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultPostForm("count", "50"))
	if err != nil || count < 1 {
		count = 50
	}
	level := c.DefaultPostForm("level", "info")
	jsonObj(c, logger.GetLogs(count, level), nil)
}
