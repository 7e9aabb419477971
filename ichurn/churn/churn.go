// Package churn computes per commit, per file churn records with self and other
// attribution of deleted lines.
package churn

import (
	"context"
	"errors"
	"fmt"
)

// PatchSource returns the zero context unified diff of a single revision restricted to a
// single file, split into lines. The patch must contain an "Author: " line before the
// first hunk for attribution to work.
type PatchSource interface {
	Patch(ctx context.Context, revision, file string) ([]string, error)
}

// AuthorshipSource returns authorship of lines [start, start+count-1] of file as it was
// in the parent of revision. Result is keyed by line number.
type AuthorshipSource interface {
	Lookup(ctx context.Context, revision, file string, start, count int) (map[int]LineAuthor, error)
}

// LineAuthor is the prior authorship of one line.
type LineAuthor struct {
	Line   int
	Commit string
	// Name is the plain author name without timestamp or line decoration.
	Name  string
	Email string
	// Label is the decorated authorship text the acting author is matched against.
	Label string
}

// ErrAuthorshipLookupFailed is returned when authorship for a deleted line can't be
// resolved.
var ErrAuthorshipLookupFailed = errors.New("authorship lookup failed")

// LookupError describes a failed authorship lookup. Line is 0 when the whole lookup
// failed rather than a single line being missing.
type LookupError struct {
	Revision string
	File     string
	Line     int
	Err      error
}

func (e *LookupError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %v %v: %v", ErrAuthorshipLookupFailed, e.Revision, e.File, e.Err)
	}
	return fmt.Sprintf("%v: %v %v line %v: %v", ErrAuthorshipLookupFailed, e.Revision, e.File, e.Line, e.Err)
}

func (e *LookupError) Unwrap() []error {
	return []error{ErrAuthorshipLookupFailed, e.Err}
}

var errLineMissing = errors.New("line not present in authorship result")

// UnitError is a failed (revision, file) unit.
type UnitError struct {
	Revision string
	File     string
	Err      error
}

func (e *UnitError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("revision %v: %v", e.Revision, e.Err)
	}
	return fmt.Sprintf("revision %v file %v: %v", e.Revision, e.File, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
