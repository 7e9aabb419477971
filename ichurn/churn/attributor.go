package churn

import (
	"context"
	"errors"
	"time"

	"github.com/pinpt/ichurn/ichurn/hunk"
)

// Attribution is the classification of the deleted lines of one hunk.
type Attribution struct {
	Self     int
	Other    int
	Affected map[string]struct{}
}

// Observer is notified about every authorship lookup. Used for metrics.
type Observer interface {
	ObserveLookup(d time.Duration, err error)
}

// Attributor classifies deleted lines as self or other authored.
type Attributor struct {
	Authorship AuthorshipSource
	Match      AuthorMatch
	// Timeout bounds a single authorship lookup. Zero means no timeout.
	Timeout  time.Duration
	Observer Observer
}

// Attribute looks up prior authorship for the deleted range of h in the parent of
// revision and classifies each line against author.
func (s *Attributor) Attribute(ctx context.Context, revision, file string, h hunk.Header, author string) (res Attribution, _ error) {
	res.Affected = map[string]struct{}{}
	if h.DeletedCount <= 0 {
		return res, nil
	}

	lines, err := s.lookup(ctx, revision, file, h)
	if err != nil {
		return Attribution{}, err
	}

	for n := h.DeletedStart; n <= h.DeletedEnd(); n++ {
		line, ok := lines[n]
		if !ok {
			return Attribution{}, &LookupError{Revision: revision, File: file, Line: n, Err: errLineMissing}
		}
		if s.Match.IsSelf(author, line) {
			res.Self++
			continue
		}
		res.Other++
		res.Affected[line.Name] = struct{}{}
	}
	return res, nil
}

func (s *Attributor) lookup(ctx context.Context, revision, file string, h hunk.Header) (map[int]LineAuthor, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	lines, err := s.Authorship.Lookup(ctx, revision, file, h.DeletedStart, h.DeletedCount)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if s.Observer != nil {
		s.Observer.ObserveLookup(time.Since(start), err)
	}
	if err != nil {
		var lerr *LookupError
		if errors.As(err, &lerr) {
			return nil, err
		}
		return nil, &LookupError{Revision: revision, File: file, Err: err}
	}
	return lines, nil
}
