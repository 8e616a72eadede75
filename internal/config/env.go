package config

import (
	"log"
	"os"
)

// Get returns the value of the environment variable or the fallback when unset.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetRequired returns the value of the environment variable or exits.
// Used for secrets that must never have a baked-in default.
func GetRequired(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}
