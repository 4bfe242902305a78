package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// configCache holds one parsed copy per configuration type, keyed by the
// type's fully-qualified name.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into v according to its `env` struct tags.
//
// The default .env file in the working directory is read once per process
// before the first parse; a missing file is not an error. Each configuration
// type is parsed once and served from the cache afterwards.
//
// Example:
//
//	type EngineConfig struct {
//		PanicOnViolation bool   `env:"MACHINE_PANIC_ON_VIOLATION"`
//		LogLevel         string `env:"MACHINE_LOG_LEVEL" envDefault:"info"`
//	}
//
//	var cfg EngineConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	globalCache.mu.RLock()
	cached, ok := globalCache.values[key]
	globalCache.mu.RUnlock()
	if ok {
		return assign(v, cached)
	}

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	// Another goroutine may have parsed the type while we waited for the lock.
	if cached, ok := globalCache.values[key]; ok {
		return assign(v, cached)
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ForceReload parses the environment into v again, ignoring and replacing
// any cached value for T.
func ForceReload[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	globalCache.mu.Lock()
	globalCache.values[typeName[T]()] = parsed
	globalCache.mu.Unlock()

	*v = parsed
	return nil
}

// LoadEnv reads the given .env files into the process environment. Variables
// that are already set are not overwritten, and earlier files win over later
// ones. With no arguments it reads ".env".
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	globalCache.values = make(map[string]any)
	globalCache.mu.Unlock()
}

func assign[T any](v *T, cached any) error {
	val, ok := cached.(T)
	if !ok {
		return ErrInvalidConfigType
	}
	*v = val
	return nil
}

// typeName returns a string identifier for the generic type T.
func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
