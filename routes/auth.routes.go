package routes

import (
	"authhub/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router gin.IRouter, authController *controllers.AuthController, limit func(scope string) gin.HandlerFunc) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", limit("login"), authController.Login)
		authRoutes.POST("/forgot-password", limit("forgot-password"), authController.ForgotPassword)
		authRoutes.POST("/reset-password", authController.ResetPassword)
	}
}
