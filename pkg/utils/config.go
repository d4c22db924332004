package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Rabbit    RabbitConfig
	JWT       JWTConfig
	QR        JWTConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Reminder  ReminderConfig
	Telemetry TelemetryConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	ClientOrigins []string
	// TrustProxy honours X-Forwarded-For / X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxy    bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type ReminderConfig struct {
	Enabled bool
	Cron    string
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

// AdminConfig seeds an admin account at startup when Email and Password are set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "eventx")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CLIENT_URL", "http://localhost:5173")
	viper.SetDefault("TRUST_PROXY", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("MONGO_DB", "eventx")
	viper.SetDefault("RABBIT_EXCHANGE", "eventx.jobs")
	viper.SetDefault("RABBIT_QUEUE", "eventx.side_effects")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24*7)
	viper.SetDefault("QR_EXPIRY_HOURS", 24*300)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_FROM", "EventX <no-reply@eventx.local>")
	viper.SetDefault("RATE_LIMIT_MAX", 1000)
	viper.SetDefault("RATE_LIMIT_WINDOW", "15m")
	viper.SetDefault("REMINDER_ENABLED", true)
	viper.SetDefault("REMINDER_CRON", "0 9 * * *")
	viper.SetDefault("ADMIN_NAME", "Administrator")

	// .env is optional, plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:          viper.GetString("APP_NAME"),
			Port:          viper.GetString("PORT"),
			Debug:         viper.GetBool("DEBUG"),
			LogPath:       viper.GetString("LOG_PATH"),
			ClientOrigins: splitList(viper.GetString("CLIENT_URL")),
			TrustProxy:    viper.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DB"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Rabbit: RabbitConfig{
			URL:      viper.GetString("RABBIT_URL"),
			Exchange: viper.GetString("RABBIT_EXCHANGE"),
			Queue:    viper.GetString("RABBIT_QUEUE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		QR: JWTConfig{
			Secret:      viper.GetString("QR_SECRET"),
			ExpiryHours: viper.GetInt("QR_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		RateLimit: RateLimitConfig{
			Max:    viper.GetInt("RATE_LIMIT_MAX"),
			Window: viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Reminder: ReminderConfig{
			Enabled: viper.GetBool("REMINDER_ENABLED"),
			Cron:    viper.GetString("REMINDER_CRON"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.QR.Secret == "" {
		config.QR.Secret = config.JWT.Secret
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
