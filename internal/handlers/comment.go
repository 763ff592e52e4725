package handlers

import (
	"net/http"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/services"
	"quillpress/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
	viewer   *services.ViewerService
}

func NewCommentHandler(comments *services.CommentService, viewer *services.ViewerService) *CommentHandler {
	return &CommentHandler{comments: comments, viewer: viewer}
}

type createCommentRequest struct {
	Article   uint   `json:"article"`
	Parent    *uint  `json:"parent"`
	Content   string `json:"content" binding:"required,max=10000"`
	UserName  string `json:"user_name" binding:"max=100"`
	UserEmail string `json:"user_email" binding:"omitempty,email,max=254"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

// ListByArticle returns the approved threads of an article.
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	articleID, ok := paramID(c, "id", "Article")
	if !ok {
		return
	}
	threads, err := h.comments.ListTopLevel(c.Request.Context(), articleID, services.KeepStatus(models.StatusApproved))
	if err != nil {
		writeError(c, err)
		return
	}
	h.renderThreads(c, http.StatusOK, threads)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	// Signed-in callers always comment as themselves.
	author := models.AnonymousAuthor(req.UserName, req.UserEmail)
	if user := middleware.CurrentUser(c); user != nil {
		author = models.RegisteredAuthor(user.ID)
	}

	comment, err := h.comments.Create(c.Request.Context(), services.CreateCommentInput{
		ArticleID: req.Article,
		ParentID:  req.Parent,
		Author:    author,
		Content:   req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.renderThread(c, http.StatusCreated, &services.Thread{Comment: comment})
}

// Detail shows a comment with its replies. Comments that are not approved are
// only visible to admins and their author.
func (h *CommentHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	keep := services.KeepStatus(models.StatusApproved)
	if user.IsAdmin() {
		keep = services.KeepAll
	}

	thread, err := h.comments.Thread(c.Request.Context(), id, keep)
	if err != nil {
		writeError(c, err)
		return
	}
	root := thread.Comment
	if root.Status != models.StatusApproved && !user.IsAdmin() && (user == nil || !root.OwnedBy(user.ID)) {
		writeError(c, services.NotFoundError("Comment not found"))
		return
	}
	h.renderThread(c, http.StatusOK, thread)
}

func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	var req updateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, req.Content, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.renderThread(c, http.StatusOK, &services.Thread{Comment: comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, middleware.CurrentUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recent lists the newest approved comments across all articles.
func (h *CommentHandler) Recent(c *gin.Context) {
	limit := utils.StringToInt(c.Query("limit"))
	comments, err := h.comments.ListRecentApproved(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	renderComments(c, h.viewer, comments)
}

func (h *CommentHandler) renderThreads(c *gin.Context, status int, threads []*services.Thread) {
	s, err := newSerializer(c.Request.Context(), h.viewer, middleware.CurrentUser(c), threads...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, s.threads(threads))
}

func (h *CommentHandler) renderThread(c *gin.Context, status int, thread *services.Thread) {
	s, err := newSerializer(c.Request.Context(), h.viewer, middleware.CurrentUser(c), thread)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, s.thread(thread))
}

// renderComments writes a flat comment list.
func renderComments(c *gin.Context, viewer *services.ViewerService, comments []models.Comment) {
	s, err := newSerializer(c.Request.Context(), viewer, middleware.CurrentUser(c), asThreads(comments)...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.comments(comments))
}
