package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"eastereggs/internal/notify"
	"eastereggs/internal/state"
	"eastereggs/internal/triggers"
)

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "EASTEREGGS_"

var validate = validator.New()

// Config controls runtime behavior for the page and its engine.
type Config struct {
	DataDir     string `env:"DATA_DIR"`
	Store       string `env:"STORE" validate:"oneof=sqlite badger memory"`
	CatalogPath string `env:"CATALOG"`
	LogPath     string `env:"LOG_PATH"`
	Dev         bool   `env:"DEV"`
	DevHTTP     string `env:"DEV_HTTP" validate:"omitempty,hostname_port"`
	Debug       bool   `env:"DEBUG"`
	ASCIIOnly   bool   `env:"ASCII"`
	Style       string `env:"STYLE" validate:"omitempty,oneof=midnight retro"`

	IdleTimeout      time.Duration `env:"IDLE_TIMEOUT" validate:"min=1s"`
	SessionMilestone time.Duration `env:"SESSION_MILESTONE" validate:"min=1s"`
	MaxToasts        int           `env:"MAX_TOASTS" validate:"min=1,max=16"`
}

func DefaultConfig() Config {
	return Config{
		Store:            state.BackendSQLite,
		DevHTTP:          "127.0.0.1:17321",
		IdleTimeout:      triggers.DefaultIdleTimeout,
		SessionMilestone: triggers.DefaultSessionMilestone,
		MaxToasts:        notify.DefaultMaxLive,
	}
}

// LoadEnv overlays EASTEREGGS_* variables onto cfg. Unset variables leave
// the current value alone.
func LoadEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return err
	}
	if c.Dev && c.DevHTTP == "" {
		return errors.New("dev mode requires a dev http address")
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "eastereggs")
	}
	return nil
}
