package churn

import (
	"fmt"
	"strings"
)

// AuthorMatch selects how the acting author is compared to prior line authors.
type AuthorMatch string

const (
	// MatchSubstring treats a line as self authored when its label contains the acting
	// author name. This is the historical behavior and the default.
	MatchSubstring AuthorMatch = "substring"
	// MatchExact compares the trimmed, case folded plain names.
	MatchExact AuthorMatch = "exact"
)

func ParseAuthorMatch(s string) (AuthorMatch, error) {
	switch AuthorMatch(s) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchExact:
		return MatchExact, nil
	}
	return "", fmt.Errorf("unknown author match mode %q, expecting one of %v, %v", s, MatchSubstring, MatchExact)
}

// IsSelf returns true if line was authored by author. An empty author never matches.
func (m AuthorMatch) IsSelf(author string, line LineAuthor) bool {
	if author == "" {
		return false
	}
	if m == MatchExact {
		return strings.EqualFold(strings.TrimSpace(line.Name), strings.TrimSpace(author))
	}
	return line.Name == author || strings.Contains(line.Label, author)
}
