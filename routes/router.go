package routes

import (
	"net/http"

	"authhub/database"
	"authhub/internal/controllers"
	"authhub/internal/middleware"
	"authhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the HTTP surface needs from main.
type Dependencies struct {
	Users         *controllers.UserController
	Auth          *controllers.AuthController
	Notifications *controllers.NotificationController

	Tokens  middleware.TokenParser
	Limiter middleware.Limiter // nil disables rate limiting
	DB      *gorm.DB
	Log     *zap.Logger

	MaxMultipartMemory int64
	Version            string
}

func NewRouter(deps Dependencies) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			deps.Log.Error("failed to register validators", zap.Error(err))
		}
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))
	if deps.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = deps.MaxMultipartMemory
	}

	auth := middleware.AuthMiddleware(deps.Tokens)
	limit := func(scope string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Limiter, scope, deps.Log)
	}

	RegisterHealthRoutes(router, deps.DB, deps.Version)
	RegisterSwaggerRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterUserRoutes(router, deps.Users, auth, limit)
	RegisterAuthRoutes(router, deps.Auth, limit)
	RegisterNotificationRoutes(router, deps.Notifications, auth)

	return router
}

func RegisterHealthRoutes(router gin.IRouter, db *gorm.DB, version string) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "AuthHub API is running",
			"version": version,
			"status":  "healthy",
		})
	})

	router.GET("/debug/database", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"database_health": false,
				"error":           err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"database_health": true})
	})
}
