package dictionary

import "strings"

// VerbosityMarker raises the verbosity by one for every occurrence in a query.
const VerbosityMarker = "!"

// Query is a parsed user input.
type Query struct {
	Word      string
	Verbosity int
}

// ParseQuery counts and strips verbosity markers and normalizes the word.
func ParseQuery(raw string) Query {
	return Query{
		Word:      NormalizeWord(raw),
		Verbosity: strings.Count(raw, VerbosityMarker),
	}
}

// NormalizeWord returns the cache key for a raw word.
func NormalizeWord(raw string) string {
	word := strings.ReplaceAll(raw, VerbosityMarker, "")
	return strings.ToLower(strings.TrimSpace(word))
}
