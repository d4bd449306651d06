// Package env provides small helpers for reading configuration from
// environment variables with defaults.
package env

import (
	"os"
	"strconv"
)

// GetString returns the value of the environment variable named by key, or
// defaultValue when the variable is not set.
func GetString(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

// GetBool returns true if the variable is set to "1" or "true", false for any
// other set value, and defaultValue when unset.
func GetBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value == "1" || value == "true"
}

// GetInt64 returns the variable parsed as an integer, or defaultValue when
// the variable is unset or not an integer.
func GetInt64(key string, defaultValue int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetInt is GetInt64 for plain ints.
func GetInt(key string, defaultValue int) int {
	return int(GetInt64(key, int64(defaultValue)))
}
