package model

import (
	"log/slog"
	"regexp"
	"strings"
)

// DefaultNamespace is prepended to dimension ids written without one.
const DefaultNamespace = "minimal"

var dimensionPattern = regexp.MustCompile(`^[a-z0-9_.-]+:[a-z0-9_./-]+$`)

// NormalizeDimension turns a configured dimension id into "namespace:path".
// Ids without a namespace get DefaultNamespace; malformed ids fall back to
// DefaultDimension with a warning.
func NormalizeDimension(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	if s != "" && !strings.Contains(s, ":") {
		s = DefaultNamespace + ":" + s
	}
	if !dimensionPattern.MatchString(s) {
		slog.Warn("invalid dimension id, using default", "dimension", id, "default", DefaultDimension)
		return DefaultDimension
	}
	return s
}
