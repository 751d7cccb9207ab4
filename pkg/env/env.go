// Package env reads the handful of settings consulted before config.Load runs.
package env

import (
	"os"
	"strconv"
	"strings"
)

func lookup(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

// String returns the trimmed value of key, or fallback when unset or blank.
func String(key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

// Bool is like String but parses with strconv.ParseBool. Malformed values
// fall back as well.
func Bool(key string, fallback bool) bool {
	v, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
