// Package env reads raw process environment values outside the typed
// config path (envconfig covers everything prefixed PHARMTRACK_).
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
