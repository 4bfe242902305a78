// Package config loads typed configuration from environment variables and
// optional .env files, on top of github.com/caarlos0/env/v11 and
// github.com/joho/godotenv.
//
// Each configuration struct type is parsed once; later Load calls for the same
// type are served from an in-process cache. ForceReload re-parses a type after
// the environment has changed and ResetCache clears everything, both mainly for tests.
//
// # Usage
//
//	type EngineConfig struct {
//	    PanicOnViolation bool   `env:"MACHINE_PANIC_ON_VIOLATION"`
//	    LogLevel         string `env:"MACHINE_LOG_LEVEL" envDefault:"info"`
//	}
//
//	if err := config.LoadEnv("./deploy/engine.env"); err != nil {
//	    log.Fatalf("loading env: %v", err)
//	}
//
//	var cfg EngineConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is:
//
//   - ErrParsingConfig: env vars could not be parsed into the struct.
//   - ErrLoadingEnvFile: a .env file passed to LoadEnv could not be read.
//   - ErrInvalidConfigType: a cached value does not match the requested type.
//   - ErrNilPointer: nil pointer passed to Load, MustLoad or ForceReload.
package config
