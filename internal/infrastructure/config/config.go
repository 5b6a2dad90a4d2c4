package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// PublicURL is the externally reachable base URL, used to build the
	// confirmation links sent by email.
	PublicURL string `env:"PUBLIC_URL, default=http://localhost:8080"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET, required"`
	JWTAlgorithm string `env:"JWT_ALGORITHM, default=HS256"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=336h"`
	ConfirmTokenTTL time.Duration `env:"CONFIRM_TOKEN_TTL, default=1h"`

	// AccessCookieName is the HTTP-only cookie the access token travels in.
	AccessCookieName string `env:"ACCESS_COOKIE_NAME, default=access_token"`

	// EmailConfirmationEnabled gates the confirmation flow. When false,
	// accounts are active immediately after registration.
	EmailConfirmationEnabled bool `env:"EMAIL_CONFIRMATION_ENABLED, default=true"`

	// ConfirmRedirectURL is where the browser is sent after a successful
	// email confirmation.
	ConfirmRedirectURL string `env:"CONFIRM_REDIRECT_URL, default=http://localhost:8080/"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`

	// Workers is the size of the background delivery pool.
	Workers int `env:"SMTP_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
