package routes

import (
	"github.com/SridharA16/Ghostprotocol/internal/handler"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(router *gin.Engine, postHandler *handler.PostHandler) {
	api := router.Group("/api/v1")

	posts := api.Group("/posts")
	posts.POST("", postHandler.CreatePost)
	posts.GET("", postHandler.ListPosts)
	posts.GET("/:id", postHandler.GetPost)
	posts.PUT("/:id", postHandler.EditPost)
	posts.DELETE("/:id", postHandler.DeletePost)
	posts.GET("/:id/history", postHandler.GetHistory)

	// Lifecycle transitions
	posts.POST("/:id/schedule", postHandler.SchedulePost)
	posts.POST("/:id/unschedule", postHandler.UnschedulePost)
	posts.POST("/:id/publish", postHandler.PublishPost)
	posts.POST("/:id/archive", postHandler.ArchivePost)
	posts.POST("/:id/restore", postHandler.RestorePost)
}
