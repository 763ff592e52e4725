package router

import (
	"net/http"

	"quillpress/internal/access"
	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the services the routes are served by.
type Deps struct {
	DB            *gorm.DB
	Comments      *services.CommentService
	Reactions     *services.ReactionService
	Flags         *services.FlagService
	Viewer        *services.ViewerService
	Notifications *services.NotificationService
	Gatherer      prometheus.Gatherer
}

// RegisterRoutes mounts the API. Identity must already be loaded on the
// context (middleware.LoadUser); every route then passes the access table.
func RegisterRoutes(r *gin.Engine, d Deps) {
	handlers.SetupValidator()

	authHandler := handlers.NewAuthHandler(d.DB)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Viewer)
	engagementHandler := handlers.NewEngagementHandler(d.Reactions, d.Flags, d.Viewer)
	adminHandler := handlers.NewAdminHandler(d.Comments, d.Flags, d.Viewer)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login/", authHandler.Login)
		auth.POST("/logout/", authHandler.Logout)
		auth.GET("/me/", authHandler.Me)
	}

	comments := r.Group("/comments")
	{
		// Public
		comments.GET("/article/:id/", middleware.Require(access.ActionListComments), commentHandler.ListByArticle)
		comments.POST("/create/", middleware.Require(access.ActionCreateComment), commentHandler.Create)
		comments.GET("/recent/", middleware.Require(access.ActionRecent), commentHandler.Recent)
		comments.GET("/:id/", middleware.Require(access.ActionReadComment), commentHandler.Detail)

		// Author or admin; ownership is checked by the comment service
		comments.PUT("/:id/", middleware.Require(access.ActionUpdateComment), commentHandler.Update)
		comments.PATCH("/:id/", middleware.Require(access.ActionUpdateComment), commentHandler.Update)
		comments.DELETE("/:id/", middleware.Require(access.ActionDeleteComment), commentHandler.Delete)

		// Signed-in users
		comments.POST("/:id/like/", middleware.Require(access.ActionReact), engagementHandler.React)
		comments.POST("/:id/flag/", middleware.Require(access.ActionFlag), engagementHandler.Flag)
		comments.DELETE("/:id/flag/", middleware.Require(access.ActionFlag), engagementHandler.Unflag)

		// Admins
		comments.POST("/:id/approve/", middleware.Require(access.ActionModerate), adminHandler.Approve)
		comments.POST("/:id/reject/", middleware.Require(access.ActionModerate), adminHandler.Reject)
		comments.POST("/:id/status/", middleware.Require(access.ActionModerate), adminHandler.SetStatus)
		comments.GET("/pending/", middleware.Require(access.ActionViewQueue), adminHandler.Pending)
		comments.GET("/flagged/", middleware.Require(access.ActionViewQueue), adminHandler.Flagged)
		comments.GET("/flags/", middleware.Require(access.ActionViewQueue), adminHandler.Flags)
		comments.POST("/flags/:id/resolve/", middleware.Require(access.ActionResolveFlag), adminHandler.ResolveFlag)
	}

	notifications := r.Group("/notifications")
	notifications.Use(middleware.Require(access.ActionNotifications))
	{
		notifications.GET("/", notificationHandler.List)
		notifications.POST("/read-all/", notificationHandler.ReadAll)
		notifications.POST("/:id/read/", notificationHandler.Read)
		notifications.DELETE("/:id/", notificationHandler.Delete)
	}
}
