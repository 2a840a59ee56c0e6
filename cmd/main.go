// @title AuthHub API
// @version 1.0
// @description User accounts, approval workflow and notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"authhub/database"
	"authhub/internal/cache"
	"authhub/internal/config"
	"authhub/internal/controllers"
	"authhub/internal/logger"
	"authhub/internal/mail"
	"authhub/internal/middleware"
	"authhub/internal/repository"
	"authhub/internal/services"
	"authhub/internal/utils"
	"authhub/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDatabase(cfg.DB, zlog)
	if err != nil {
		return err
	}
	if err := database.MigrateDatabase(db, zlog); err != nil {
		return err
	}
	database.MonitorDBConnections(ctx, db, zlog)

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	fileRepo := repository.NewFileRepository(db)
	tx := repository.NewTransactor(db)
	hasher := utils.NewBcryptHasher()

	roleService := services.NewRoleService(repository.NewRoleRepository(db), zlog)
	if err := roleService.SeedRoles(ctx); err != nil {
		return err
	}

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			limiter = cache.NewRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBlock)
			zlog.Info("rate limiting enabled", zap.Int("limit", cfg.RateLimitRequests), zap.Duration("window", cfg.RateLimitWindow))
		}
	}

	mailer, closeMailer, err := newMailer(cfg, zlog)
	if err != nil {
		return err
	}
	defer closeMailer()

	worker := services.NewTaskWorker(cfg.WorkerCount, cfg.WorkerQueueSize, zlog)
	worker.Start()
	defer worker.Stop()

	notificationService := services.NewNotificationService(notificationRepo, userRepo, tx, worker, zlog)
	userService := services.NewUserService(
		userRepo,
		fileRepo,
		roleService,
		notificationService,
		tx,
		hasher,
		mailer,
		worker,
		services.NewImageStore(cfg.MaxUploadBytes, cfg.ProfileImageMaxPx, zlog),
		services.UserServiceConfig{
			UploadDir:        cfg.UploadDir,
			ClientHost:       cfg.ClientHost,
			FrontendLoginURL: cfg.FrontendLoginURL,
		},
		zlog,
	)
	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())
	authService := services.NewAuthService(userRepo, hasher, tokens, zlog)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.Dependencies{
		Users:              controllers.NewUserController(userService, zlog),
		Auth:               controllers.NewAuthController(authService, userService, zlog),
		Notifications:      controllers.NewNotificationController(notificationService, zlog),
		Tokens:             tokens,
		Limiter:            limiter,
		DB:                 db,
		Log:                zlog,
		MaxMultipartMemory: cfg.MaxUploadBytes,
		Version:            version,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("docs", "http://localhost:"+cfg.Port+"/swagger/index.html"),
			zap.Int("workers", cfg.WorkerCount),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newMailer publishes to the broker when one is configured, otherwise it
// sends over SMTP from this process.
func newMailer(cfg *config.Config, zlog *zap.Logger) (mail.Mailer, func(), error) {
	if cfg.RabbitMQURL != "" {
		publisher, err := mail.NewPublisher(cfg.RabbitMQURL, cfg.MailQueue)
		if err != nil {
			return nil, nil, err
		}
		zlog.Info("mail goes through the broker", zap.String("queue", cfg.MailQueue))
		return publisher, func() { _ = publisher.Close() }, nil
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, nil, err
	}
	return mail.NewSMTPMailer(cfg.SMTP, renderer, zlog), func() {}, nil
}
