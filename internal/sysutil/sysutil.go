// Package sysutil holds process-level helpers: log level selection, env
// value parsing, and request correlation ids carried in a context.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps LOG_LEVEL to a zerolog level. It accepts zerolog's own
// names plus "warning"; blank or unknown values give info.
func ParseLogLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLogLevel applies ParseLogLevel(s) globally and returns the level set.
func SetLogLevel(s string) zerolog.Level {
	lvl := ParseLogLevel(s)
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

// ParseBool reads a boolean env value. ok is false when v is neither a
// recognised true nor false spelling, so callers can keep their default.
func ParseBool(v string) (val, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
