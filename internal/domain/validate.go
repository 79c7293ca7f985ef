package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	guessPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// ValidSlug reports whether slug can be used verbatim in a URL path segment.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ParseNumber parses a tiebreaker value and rejects NaN and infinities.
func ParseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ValidGuess reports whether raw is an acceptable tiebreaker guess from a player.
func ValidGuess(raw string) bool {
	return guessPattern.MatchString(raw)
}

// ValidOption reports whether raw is one of the two option tags.
func ValidOption(raw string) bool {
	return raw == OptionA || raw == OptionB
}

// ValidTheme reports whether theme is a known theme.
func ValidTheme(theme string) bool {
	return theme == ThemeDefault || theme == ThemeBabyAutumn
}
