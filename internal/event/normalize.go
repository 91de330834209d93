package event

import (
	"regexp"
	"strings"
	"unicode"
)

// slugSuffixPattern matches trailing numeric slug suffixes such as the "-3"
// that paginated sources append to re-listed events.
var slugSuffixPattern = regexp.MustCompile(`-\d+$`)

// connectiveTokens are dropped from titles so that lineups written as
// "A with B" and "A feat B" normalize identically.
var connectiveTokens = map[string]bool{
	"with":      true,
	"and":       true,
	"feat":      true,
	"featuring": true,
}

// NormalizeTitle canonicalizes an event title for identity comparison:
// lowercase, trailing numeric slug suffix removed, punctuation stripped,
// connective tokens dropped, internal whitespace collapsed. The function is
// deterministic and side-effect free.
func NormalizeTitle(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	lower = slugSuffixPattern.ReplaceAllString(lower, "")

	fields := strings.Fields(stripPunctuation(lower))
	kept := fields[:0]
	for _, f := range fields {
		if !connectiveTokens[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeVenueName canonicalizes a venue name for table lookup: lowercase,
// punctuation stripped, whitespace collapsed. Possessive forms collapse via
// apostrophe stripping, so "Will's Pub" and "Wills Pub" normalize to the same
// token.
func NormalizeVenueName(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(stripPunctuation(lower)), " ")
}

// stripPunctuation removes everything except letters, digits and spaces.
// Non-space separators (hyphens, slashes) are dropped entirely rather than
// replaced, matching how the scrapers' own comparison keys were built.
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}
