package dictionary

import "strings"

// Record is a translation result for a single word.
// Each field is an opaque text block shown at a different verbosity level.
type Record struct {
	Basic          string `json:"basic" yaml:"basic" db:"basic"`
	Authoritative  string `json:"authoritative,omitempty" yaml:"authoritative,omitempty" db:"authoritative"`
	Extended       string `json:"extended,omitempty" yaml:"extended,omitempty" db:"extended"`
	Examples       string `json:"examples,omitempty" yaml:"examples,omitempty" db:"examples"`
	TypoSuggestion string `json:"typo_suggestion,omitempty" yaml:"typo_suggestion,omitempty" db:"typo_suggestion"`
}

// IsEmpty reports whether the record is a "no result" marker.
func (r Record) IsEmpty() bool {
	return r.Basic == "" &&
		r.Authoritative == "" &&
		r.Extended == "" &&
		r.Examples == "" &&
		r.TypoSuggestion == ""
}

// Render returns the explanation for the given verbosity.
// An empty string means there is nothing to show.
func (r Record) Render(verbosity int) string {
	parts := make([]string, 0, 4)
	if r.Basic != "" {
		parts = append(parts, r.Basic)
	}

	levels := []string{r.Authoritative, r.Extended, r.Examples}
	for i, text := range levels {
		if verbosity < i+1 {
			break
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return r.TypoSuggestion
	}
	return strings.Join(parts, "\n\n")
}
