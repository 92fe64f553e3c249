// Package sysutil holds process-level helpers shared by the command
// entrypoints: global log-level plumbing and small environment fallbacks.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel sets the global zerolog level from a config string.
//
// Levels follow zerolog's names (trace, debug, info, warn, error, fatal,
// panic); "warning" is accepted as an alias for warn. Empty or unknown
// values fall back to info so a typo in LOG_LEVEL never silences the
// process.
func SetLogLevel(lvl string) {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	parsed, err := zerolog.ParseLevel(s)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// FirstNonEmpty returns the first value that is not empty or blank,
// preserving its original spacing. It returns "" when every value is
// blank. Used to layer an env override on top of a build-time default,
// e.g. FirstNonEmpty(os.Getenv("APP_VERSION"), version).
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
