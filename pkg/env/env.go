// Package env reads process environment knobs that sit outside the typed
// configuration, such as log formatting toggles consulted before config
// loads.
package env

import (
	"os"
	"strconv"
)

// String returns the named variable, or fallback when unset or empty.
func String(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

// Bool parses the named variable as a boolean, falling back when unset or
// unparseable.
func Bool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
