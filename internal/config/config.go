package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"diamond-mines-backend/internal/models"
)

// Config is the process configuration read from the environment.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// UsedCodeBackend is one of redis, postgres, sqlite.
	UsedCodeBackend string `env:"USED_CODE_BACKEND" envDefault:"redis"`
	DatabaseURL     string `env:"DATABASE_URL"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"data/used_codes.db"`

	AuditWebhookURL string `env:"AUDIT_WEBHOOK_URL"`

	// AttemptScope is durable or tab.
	AttemptScope       string        `env:"ATTEMPT_SCOPE" envDefault:"durable"`
	TabScopeTTL        time.Duration `env:"TAB_SCOPE_TTL" envDefault:"30m"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	GameConfigPath string `env:"GAME_CONFIG_PATH"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.UsedCodeBackend {
	case "redis", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid used code backend: %s", cfg.UsedCodeBackend)
	}
	if cfg.UsedCodeBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	switch cfg.AttemptScope {
	case "durable", "tab":
	default:
		return nil, fmt.Errorf("invalid attempt scope: %s", cfg.AttemptScope)
	}
	return &cfg, nil
}

// LoadGameConfig reads the game rules from path over the built-in defaults.
// An empty path returns the defaults.
func LoadGameConfig(path string) (models.GameConfig, error) {
	cfg := models.DefaultGameConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read game config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode game config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}
