// Package environment loads .env files and maps environment variables onto
// configuration structs.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the given .env files, or ./.env when no path
// is given. Missing files are ignored so production deployments that set the
// environment directly do not need one. Variables already present in the
// process environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// GetEnvOrDefault returns the value of key or fallback when it is unset.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Key joins a prefix and a key with an underscore: Key("HELIX", "PORT") is
// "HELIX_PORT". An empty prefix returns key unchanged.
func Key(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}

// GetPrefixEnvOrDefault looks up Key(prefix, key) and falls back when unset.
func GetPrefixEnvOrDefault(prefix, key, fallback string) string {
	return GetEnvOrDefault(Key(prefix, key), fallback)
}
