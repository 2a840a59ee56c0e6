package routes

import (
	"authhub/internal/controllers"
	"authhub/internal/middleware"
	"authhub/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterNotificationRoutes(router gin.IRouter, notificationController *controllers.NotificationController, auth gin.HandlerFunc) {
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Use(auth)
	{
		notificationRoutes.GET("", notificationController.List)
		notificationRoutes.GET("/today", notificationController.Today)
		notificationRoutes.GET("/yesterday", notificationController.Yesterday)
		notificationRoutes.GET("/unread-count", notificationController.UnreadCount)
		notificationRoutes.POST("", middleware.RequireRole(models.RoleAdmin), notificationController.Create)
		notificationRoutes.PUT("/:id/read", notificationController.MarkAsRead)
		notificationRoutes.PUT("/:id/delete", notificationController.MarkAsDeleted)
	}
}
