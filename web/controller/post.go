package controller

import (
	"errors"
	"net/http"
	"strconv"

	"quill/database/model"
	"quill/logger"
	"quill/web/middleware"
	"quill/web/service"

	"github.com/gin-gonic/gin"
)

// PostForm is the create/edit post submission.
type PostForm struct {
	Title    string `form:"title" binding:"required"`
	Subtitle string `form:"subtitle" binding:"required"`
	ImgURL   string `form:"imgUrl" binding:"required,url"`
	Body     string `form:"body" binding:"required"`
}

// CommentForm is the comment submission on a post page.
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// PostController serves post pages and the permission-gated content
// mutations. Every gate decision is made fresh per request by the
// authorization middleware.
type PostController struct {
	BaseController

	postService    service.PostService
	commentService service.CommentService
	feedService    service.FeedService
}

func NewPostController(g *gin.RouterGroup, authz *service.AuthzService) *PostController {
	a := &PostController{}
	a.initRouter(g, authz)
	return a
}

func (a *PostController) initRouter(g *gin.RouterGroup, authz *service.AuthzService) {
	g.GET("/post/:id", a.show)
	g.POST("/post/:id/comment",
		middleware.RequirePermissions(authz, model.PermPostComment), a.comment)

	g.GET("/new-post",
		middleware.RequirePermissions(authz, model.PermCreatePost), a.newPostPage)
	g.POST("/new-post",
		middleware.RequirePermissions(authz, model.PermCreatePost), a.create)

	g.GET("/edit-post/:id",
		middleware.RequirePermissions(authz, model.PermEditPost), a.editPostPage)
	g.POST("/edit-post/:id",
		middleware.RequirePermissions(authz, model.PermEditPost), a.update)

	g.GET("/delete/:id",
		middleware.RequirePermissions(authz, model.PermDeletePost), a.delete)

	g.GET("/delete-comment/:postId/:commentId",
		middleware.RequirePermissions(authz, model.PermDeleteComment), a.deleteComment)
}

func (a *PostController) show(c *gin.Context) {
	service.AddPageView()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	post, err := a.postService.GetPost(id)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Warning("load post err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	comments, err := a.commentService.CommentsForPost(id)
	if err != nil {
		logger.Warning("load comments err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	html(c, "post.html", post.Title, gin.H{
		"post":     post,
		"comments": comments,
	})
}

func (a *PostController) comment(c *gin.Context) {
	postId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, a.postPath(c, postId))
		return
	}

	user := middleware.GetCurrentUser(c)
	_, err = a.commentService.CreateComment(form.Text, user, postId)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Warning("create comment err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusFound, a.postPath(c, postId))
}

func (a *PostController) newPostPage(c *gin.Context) {
	html(c, "make-post.html", I18nWeb(c, "pages.makePost.newTitle"), gin.H{
		"editing": false,
	})
}

func (a *PostController) create(c *gin.Context) {
	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		html(c, "make-post.html", I18nWeb(c, "pages.makePost.newTitle"), gin.H{
			"editing": false,
			"error":   I18nWeb(c, "pages.login.toasts.invalidFormData"),
			"form":    form,
		})
		return
	}

	user := middleware.GetCurrentUser(c)
	post, err := a.postService.CreatePost(form.Title, form.Subtitle, form.Body, form.ImgURL, user)
	if errors.Is(err, service.ErrDuplicateTitle) {
		html(c, "make-post.html", I18nWeb(c, "pages.makePost.newTitle"), gin.H{
			"editing": false,
			"error":   I18nWeb(c, "pages.makePost.duplicateTitle"),
			"form":    form,
		})
		return
	} else if err != nil {
		logger.Warning("create post err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	a.feedService.Invalidate()
	logger.Infof("post %d created by %s", post.Id, user.Email)
	c.Redirect(http.StatusFound, a.postPath(c, post.Id))
}

func (a *PostController) editPostPage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	post, err := a.postService.GetPost(id)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Warning("load post err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	html(c, "make-post.html", I18nWeb(c, "pages.makePost.editTitle"), gin.H{
		"editing": true,
		"post":    post,
		"form": PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
	})
}

func (a *PostController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		html(c, "make-post.html", I18nWeb(c, "pages.makePost.editTitle"), gin.H{
			"editing": true,
			"error":   I18nWeb(c, "pages.login.toasts.invalidFormData"),
			"form":    form,
		})
		return
	}

	user := middleware.GetCurrentUser(c)
	err = a.postService.UpdatePost(id, form.Title, form.Subtitle, form.Body, form.ImgURL, user)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if errors.Is(err, service.ErrDuplicateTitle) {
		html(c, "make-post.html", I18nWeb(c, "pages.makePost.editTitle"), gin.H{
			"editing": true,
			"error":   I18nWeb(c, "pages.makePost.duplicateTitle"),
			"form":    form,
		})
		return
	} else if err != nil {
		logger.Warning("update post err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	a.feedService.Invalidate()
	c.Redirect(http.StatusFound, a.postPath(c, id))
}

func (a *PostController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	err = a.postService.DeletePost(id)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Warning("delete post err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	a.feedService.Invalidate()
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.Infof("post %d deleted by %s", id, user.Email)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path"))
}

func (a *PostController) deleteComment(c *gin.Context) {
	postId, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	commentId, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	err = a.commentService.DeleteComment(commentId, postId)
	if errors.Is(err, service.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Warning("delete comment err:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusFound, a.postPath(c, postId))
}

func (a *PostController) postPath(c *gin.Context, id int) string {
	return c.GetString("base_path") + "post/" + strconv.Itoa(id)
}
