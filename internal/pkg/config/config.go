package config

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

const (
	minSecretBytes     = 32
	minSessionKeyBytes = 32
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Session   SessionConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Bootstrap BootstrapConfig
}

// JWTConfig has no defaults: a missing secret or TTL fails startup.
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL"`
}

type SessionConfig struct {
	Key          string        `env:"SESSION_KEY"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE, default=8h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sun_booking"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SecurityConfig struct {
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	AuditWorkers       int      `env:"AUDIT_WORKERS,        default=4"`
	SweepSchedule      string   `env:"ATTEMPT_SWEEP_SCHEDULE, default=@every 5m"`
}

type BootstrapConfig struct {
	AdminName     string `env:"BOOTSTRAP_ADMIN_NAME, default=Administrator"`
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadFrom reads configuration through l. Validation failures wrap
// domain.ErrConfiguration.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	secret, err := hex.DecodeString(strings.TrimSpace(c.JWT.Secret))
	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case err != nil:
		errs = append(errs, errors.New("JWT_SECRET must be hex encoded"))
	case len(secret) < minSecretBytes:
		errs = append(errs, fmt.Errorf("JWT_SECRET must decode to at least %d bytes", minSecretBytes))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL is required and must be positive"))
	}
	if len(c.Session.Key) < minSessionKeyBytes {
		errs = append(errs, fmt.Errorf("SESSION_KEY must be at least %d bytes", minSessionKeyBytes))
	}
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}
