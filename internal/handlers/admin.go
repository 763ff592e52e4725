package handlers

import (
	"net/http"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the moderation queue and status changes.
type AdminHandler struct {
	comments *services.CommentService
	flags    *services.FlagService
	viewer   *services.ViewerService
}

func NewAdminHandler(comments *services.CommentService, flags *services.FlagService, viewer *services.ViewerService) *AdminHandler {
	return &AdminHandler{comments: comments, flags: flags, viewer: viewer}
}

type statusRequest struct {
	Status string `json:"status" binding:"required,comment_status"`
}

func (h *AdminHandler) Approve(c *gin.Context) {
	h.setStatus(c, models.StatusApproved)
}

func (h *AdminHandler) Reject(c *gin.Context) {
	h.setStatus(c, models.StatusRejected)
}

// SetStatus accepts any of the three statuses, so a comment can go back to pending.
func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.setStatus(c, models.CommentStatus(req.Status))
}

func (h *AdminHandler) setStatus(c *gin.Context, status models.CommentStatus) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	comment, err := h.comments.SetStatus(c.Request.Context(), id, status, user)
	if err != nil {
		writeError(c, err)
		return
	}

	thread := &services.Thread{Comment: comment}
	s, err := newSerializer(c.Request.Context(), h.viewer, user, thread)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.thread(thread))
}

func (h *AdminHandler) Pending(c *gin.Context) {
	comments, err := h.comments.ListPending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	renderComments(c, h.viewer, comments)
}

func (h *AdminHandler) Flagged(c *gin.Context) {
	comments, err := h.comments.ListFlagged(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	renderComments(c, h.viewer, comments)
}

// Flags lists unresolved flags, newest first.
func (h *AdminHandler) Flags(c *gin.Context) {
	flags, err := h.flags.ListUnresolved(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderFlags(flags))
}

func (h *AdminHandler) ResolveFlag(c *gin.Context) {
	id, ok := paramID(c, "id", "Flag")
	if !ok {
		return
	}
	flag, err := h.flags.Resolve(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderFlag(flag))
}
