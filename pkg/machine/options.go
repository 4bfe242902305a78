package machine

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/dmitrymomot/machinekit/pkg/config"
	"github.com/dmitrymomot/machinekit/pkg/logger"
)

// Option configures a machine during construction.
type Option func(*Machine) error

// Config holds the engine settings that can come from the environment.
type Config struct {
	// PanicOnViolation makes contract violations panic instead of returning
	// a *ContractViolationError.
	PanicOnViolation bool   `env:"MACHINE_PANIC_ON_VIOLATION" envDefault:"false"`
	LogLevel         string `env:"MACHINE_LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"MACHINE_LOG_FORMAT" envDefault:"json"`
}

// LoadConfig reads Config from the environment and the optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("load machine config: %w", err)
	}
	return cfg, nil
}

// WithConfig applies cfg: the violation policy and a logger writing to
// stderr with the configured level and format.
func WithConfig(cfg Config) Option {
	return func(m *Machine) error {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		format, err := logger.ParseFormat(cfg.LogFormat)
		if err != nil {
			return err
		}
		m.logger = logger.New(
			logger.WithLevel(level),
			logger.WithFormat(format),
			logger.WithOutput(os.Stderr),
		)
		m.panicOnViolation = cfg.PanicOnViolation
		return nil
	}
}

// WithLogger sets the logger for the machine. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) error {
		if l != nil {
			m.logger = l
		}
		return nil
	}
}

// WithID overrides the generated machine identifier.
func WithID(id uuid.UUID) Option {
	return func(m *Machine) error {
		if id == uuid.Nil {
			return fmt.Errorf("machine id cannot be nil")
		}
		m.id = id
		return nil
	}
}

// WithPanicOnViolation makes contract violations panic with the
// *ContractViolationError instead of returning it.
func WithPanicOnViolation() Option {
	return func(m *Machine) error {
		m.panicOnViolation = true
		return nil
	}
}
