package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvWith loads configuration from environ instead of the process
// environment.
func ParseEnvWith(target any, environ map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LookupFunc reports the value of an environment variable, like
// os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ParseEnvLookup loads configuration reading only the variables target
// declares through lookup.
func ParseEnvLookup(target any, lookup LookupFunc) error {
	params, err := env.GetFieldParams(target)
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	environ := make(map[string]string, len(params))
	for _, p := range params {
		if value, ok := lookup(p.Key); ok {
			environ[p.Key] = value
		}
	}
	return ParseEnvWith(target, environ)
}
