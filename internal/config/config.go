package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/manager"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	ServerURL    string        `validate:"required,url"`
	Profile      string        `validate:"required,max=64"`
	TickInterval time.Duration `validate:"gte=0"`
	JoinTimeout  time.Duration `validate:"gt=0"`

	ReconnectDSN string        `validate:"required"`
	ReconnectTTL time.Duration `validate:"gte=0"`

	// DebugAddr serves the debug HTTP API when set, e.g. "127.0.0.1:6060".
	DebugAddr string `validate:"omitempty,hostname_port"`

	LogDevelopment bool
}

func Default() Config {
	return Config{
		ServerURL:    "ws://localhost:8080/ws",
		Profile:      "default",
		TickInterval: time.Second,
		JoinTimeout:  10 * time.Second,
		ReconnectDSN: "mafia-client.db",
		ReconnectTTL: time.Hour,
	}
}

// Load starts from Default and applies environment overrides. Values that
// do not parse are ignored.
func Load() Config {
	cfg := Default()
	if raw := os.Getenv("MAFIA_SERVER_URL"); raw != "" {
		cfg.ServerURL = raw
	}
	if raw := os.Getenv("MAFIA_PROFILE"); raw != "" {
		cfg.Profile = raw
	}
	if raw := os.Getenv("MAFIA_TICK_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.TickInterval = time.Duration(value) * time.Millisecond
		}
	}
	if raw := os.Getenv("MAFIA_JOIN_TIMEOUT_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.JoinTimeout = time.Duration(value) * time.Millisecond
		}
	}
	if raw := os.Getenv("MAFIA_RECONNECT_DSN"); raw != "" {
		cfg.ReconnectDSN = raw
	}
	if raw := os.Getenv("MAFIA_RECONNECT_TTL_MIN"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.ReconnectTTL = time.Duration(value) * time.Minute
		}
	}
	if raw := os.Getenv("MAFIA_DEBUG_ADDR"); raw != "" {
		cfg.DebugAddr = raw
	}
	if raw := os.Getenv("MAFIA_LOG_DEV"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogDevelopment = value
		}
	}
	return cfg
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Manager() manager.Config {
	return manager.Config{TickInterval: c.TickInterval, JoinTimeout: c.JoinTimeout}
}
