package errors

import (
	"strings"
	"unicode"
)

// ValidatePlaceName validates a free-text place name before it is sent to
// the geocoding service. Ambiguous or multi-word names pass through
// unmodified; only clearly unusable input is rejected.
func ValidatePlaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPlace, "place name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPlace, "place name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPlace, "place name contains invalid control characters")
		}
	}

	return nil
}

// ValidateRadius validates a buffer radius in meters.
// The upper bound protects the network data source from queries whose
// result size would be unusable anyway.
func ValidateRadius(meters float64) error {
	if meters <= 0 {
		return New(ErrCodeInvalidRadius, "radius must be positive, got %g m", meters)
	}
	if meters > 100_000 {
		return New(ErrCodeInvalidRadius, "radius too large (max 100 km), got %g m", meters)
	}
	return nil
}
