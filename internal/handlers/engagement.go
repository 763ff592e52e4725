package handlers

import (
	"errors"
	"io"
	"net/http"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/services"

	"github.com/gin-gonic/gin"
)

// EngagementHandler serves reactions and user flags.
type EngagementHandler struct {
	reactions *services.ReactionService
	flags     *services.FlagService
	viewer    *services.ViewerService
}

func NewEngagementHandler(reactions *services.ReactionService, flags *services.FlagService, viewer *services.ViewerService) *EngagementHandler {
	return &EngagementHandler{reactions: reactions, flags: flags, viewer: viewer}
}

type reactRequest struct {
	IsLike *bool `json:"is_like"`
}

type flagRequest struct {
	Reason      string `json:"reason" binding:"required,flag_reason"`
	Description string `json:"description" binding:"max=2000"`
}

// React likes or dislikes a comment; is_like defaults to true.
func (h *EngagementHandler) React(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, services.ValidationError("Invalid request body"))
		return
	}
	isLike := req.IsLike == nil || *req.IsLike

	user := middleware.CurrentUser(c)
	res, err := h.reactions.React(c.Request.Context(), id, user.ID, isLike)
	if err != nil {
		writeError(c, err)
		return
	}

	thread := &services.Thread{Comment: res.Comment}
	s, err := newSerializer(c.Request.Context(), h.viewer, user, thread)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"action":  res.Action,
		"comment": s.thread(thread),
	})
}

func (h *EngagementHandler) Flag(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	var req flagRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	flag, err := h.flags.Flag(c.Request.Context(), id, user.ID, models.FlagReason(req.Reason), req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment flagged for review",
		"flag":    renderFlag(flag),
	})
}

func (h *EngagementHandler) Unflag(c *gin.Context) {
	id, ok := paramID(c, "id", "Comment")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.flags.Unflag(c.Request.Context(), id, user.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flag removed"})
}
