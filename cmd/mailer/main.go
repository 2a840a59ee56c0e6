// Command mailer consumes the outbound mail queue and delivers each message over SMTP.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"authhub/internal/config"
	"authhub/internal/logger"
	"authhub/internal/mail"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.RabbitMQURL == "" {
		zlog.Fatal("RABBITMQ_URL is required")
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		zlog.Fatal("failed to parse mail templates", zap.Error(err))
	}
	smtp := mail.NewSMTPMailer(cfg.SMTP, renderer, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The broker may still be starting next to us.
	var consumer *mail.Consumer
	for attempt := 1; ; attempt++ {
		consumer, err = mail.NewConsumer(cfg.RabbitMQURL, cfg.MailQueue, smtp, zlog)
		if err == nil {
			break
		}
		if attempt == 5 {
			zlog.Fatal("failed to connect to broker", zap.Error(err))
		}
		zlog.Warn("broker not ready, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	defer consumer.Close()

	zlog.Info("mailer consuming", zap.String("queue", cfg.MailQueue))
	if err := consumer.Run(ctx); err != nil {
		zlog.Error("consumer stopped", zap.Error(err))
	}
}
