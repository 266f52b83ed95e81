package slug

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]+`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Make lowercases title, drops anything outside [a-z0-9] and joins words with hyphens.
// Titles with no usable characters yield "item".
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 180 {
		s = strings.Trim(s[:180], "-")
	}
	if s == "" {
		return "item"
	}
	return s
}

// WithSuffix appends a short random suffix, used when the plain slug is taken.
func WithSuffix(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}
