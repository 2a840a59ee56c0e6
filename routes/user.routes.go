package routes

import (
	"authhub/internal/controllers"
	"authhub/internal/middleware"
	"authhub/internal/models"

	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(router gin.IRouter, userController *controllers.UserController, auth gin.HandlerFunc, limit func(scope string) gin.HandlerFunc) {
	userRoutesPublic := router.Group("/users")
	{
		userRoutesPublic.POST("/register", limit("register"), userController.Register)
		userRoutesPublic.POST("/verify-email", limit("verify-email"), userController.VerifyEmail)
	}

	userRoutes := router.Group("/users")
	userRoutes.Use(auth)
	{
		userRoutes.GET("", userController.List)
		userRoutes.GET("/all", userController.List)
		userRoutes.GET("/current-user", userController.GetCurrentUser)
		userRoutes.GET("/search", userController.Search)
		userRoutes.GET("/load-file/:filename", userController.LoadFile)
		userRoutes.GET("/:id", userController.GetByID)

		userRoutes.POST("/send-email", middleware.RequireRole(models.RoleAdmin), userController.SendEmail)

		userRoutes.PUT("/change-password", userController.ChangePassword)
		userRoutes.PUT("/approve-many", userController.ApproveMany)
		userRoutes.PUT("/reject-many", userController.RejectMany)
		userRoutes.PUT("/:id", userController.Update)
		userRoutes.PUT("/:id/upload-profile", userController.UploadProfile)
		userRoutes.PUT("/:id/approve", userController.Approve)
		userRoutes.PUT("/:id/reject", userController.Reject)
		userRoutes.PUT("/:id/de-activate", userController.Deactivate)
		userRoutes.PUT("/:id/mark-as-pending", userController.MarkAsPending)

		userRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), userController.Delete)
	}
}
