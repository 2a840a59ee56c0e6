package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"production"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DB   DBConfig
	JWT  JWTConfig
	SMTP SMTPConfig

	// Mail goes straight to SMTP unless a broker URL is configured.
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`
	MailQueue   string `envconfig:"MAIL_QUEUE" default:"mail.outbound"`

	RedisURL          string        `envconfig:"REDIS_URL"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"20"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitBlock    time.Duration `envconfig:"RATE_LIMIT_BLOCK" default:"5m"`

	UploadDir         string `envconfig:"UPLOAD_DIR" default:"./uploads/user_profiles"`
	ProfileImageMaxPx int    `envconfig:"PROFILE_IMAGE_MAX_PX" default:"512"`
	MaxUploadBytes    int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	ClientHost       string `envconfig:"CLIENT_HOST" default:"http://localhost:3000"`
	FrontendLoginURL string `envconfig:"FRONTEND_LOGIN_URL" default:"http://localhost:3000/login"`

	WorkerCount     int `envconfig:"WORKER_COUNT" default:"4"`
	WorkerQueueSize int `envconfig:"WORKER_QUEUE_SIZE" default:"256"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"authhub"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type JWTConfig struct {
	Secret    string `envconfig:"JWT_SECRET_KEY" required:"true"`
	ExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
}

type SMTPConfig struct {
	Host       string `envconfig:"SMTP_HOST"`
	Port       string `envconfig:"SMTP_PORT" default:"587"`
	Username   string `envconfig:"SMTP_USERNAME"`
	Password   string `envconfig:"SMTP_PASSWORD"`
	Sender     string `envconfig:"SMTP_SENDER"`
	SenderName string `envconfig:"SMTP_SENDER_NAME" default:"AuthHub"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpireMin) * time.Minute
}

func (d DBConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s "+
			"application_name=authhub TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

func (s SMTPConfig) Addr() string {
	return s.Host + ":" + s.Port
}
