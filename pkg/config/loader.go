package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

type options struct {
	files  []string
	prefix string
}

// Option customizes a Load call.
type Option func(*options)

// WithEnvFiles replaces the default .env file list.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = files }
}

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load parses environment variables into v. Missing .env files are not an
// error.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load(o.files...)
	})

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Use it for configuration the process cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
