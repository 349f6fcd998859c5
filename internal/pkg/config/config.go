package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/sunflower/sunflower-api/internal/pkg/security"
)

type Config struct {
	Port               string   `env:"PORT,                 default=8080"`
	Env                string   `env:"ENV,                  default=development"`
	LogLevel           string   `env:"LOG_LEVEL,            default=info"`
	FrontendURL        string   `env:"FRONTEND_URL,         default=http://localhost:3000"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS"`
	AdminSignupEnabled bool     `env:"ADMIN_SIGNUP_ENABLED, default=false"`

	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Notifier NotifierConfig
}

type AuthConfig struct {
	JWTSecret                  string        `env:"JWT_SECRET, required"`
	JWTAlgorithm               string        `env:"JWT_ALGORITHM,                default=HS256"`
	AccessTokenTTL             time.Duration `env:"ACCESS_TOKEN_TTL,             default=30m"`
	EmailVerifyTokenTTL        time.Duration `env:"EMAIL_VERIFY_TOKEN_TTL,       default=30m"`
	ResendVerificationCooldown time.Duration `env:"RESEND_VERIFICATION_COOLDOWN, default=120s"`
	BcryptCost                 int           `env:"BCRYPT_COST,                  default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sunflower"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SMTPConfig leaves email delivery disabled when Host, User or Password is empty.
type SMTPConfig struct {
	Host       string `env:"SMTP_HOST"`
	User       string `env:"SMTP_USER"`
	Password   string `env:"SMTP_PASSWORD"`
	From       string `env:"EMAIL_FROM,       default=Sunflower <no-reply@sunflower.local>"`
	SkipVerify bool   `env:"SMTP_SKIP_VERIFY, default=false"`
}

type NotifierConfig struct {
	Workers int `env:"NOTIFIER_WORKERS, default=4"`
	Buffer  int `env:"NOTIFIER_BUFFER,  default=256"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if !security.SupportedAlgorithm(c.Auth.JWTAlgorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.Auth.JWTAlgorithm))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.Auth.EmailVerifyTokenTTL <= 0 {
		errs = append(errs, errors.New("EMAIL_VERIFY_TOKEN_TTL must be positive"))
	}
	if c.Auth.ResendVerificationCooldown <= 0 {
		errs = append(errs, errors.New("RESEND_VERIFICATION_COOLDOWN must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
