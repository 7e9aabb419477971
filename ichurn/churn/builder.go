package churn

import (
	"context"
	"sort"
	"strings"

	"github.com/pinpt/ichurn/ichurn/hunk"
	"github.com/pinpt/ichurn/ichurn/pkg/logger"
)

const (
	authorPrefix = "Author: "
	hunkPrefix   = "@@"
)

// Builder aggregates all hunks of a patch into one Record. It keeps no state between
// calls and is safe for concurrent use.
type Builder struct {
	Attributor *Attributor
	Logger     logger.Logger
}

func NewBuilder(attr *Attributor, log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{Attributor: attr, Logger: log}
}

// Build walks patchLines once. The first "Author: " line sets the acting author, every
// "@@" line is parsed and folded into the totals. All other lines are ignored.
//
// When no author line exists the record is still built and every deleted line counts as
// other authored.
//
// On error the returned Record is the zero value.
func (s *Builder) Build(ctx context.Context, revision, file string, patchLines []string) (Record, error) {
	var (
		author      string
		authorFound bool
		added       int
		deleted     int
		self        int
		other       int
		affected    = map[string]struct{}{}
	)

	for _, line := range patchLines {
		switch {
		case !authorFound && strings.HasPrefix(line, authorPrefix):
			author = ParseAuthorLine(line)
			authorFound = true
		case strings.HasPrefix(line, hunkPrefix):
			h, err := hunk.Parse(line)
			if err != nil {
				return Record{}, err
			}
			added += h.AddedCount
			deleted += h.DeletedCount
			if h.DeletedCount == 0 {
				continue
			}
			if !authorFound {
				s.Logger.Debug("no author line before hunk, attributing to other", "commit", revision, "file", file)
			}
			attr, err := s.Attributor.Attribute(ctx, revision, file, h, author)
			if err != nil {
				return Record{}, err
			}
			self += attr.Self
			other += attr.Other
			for a := range attr.Affected {
				affected[a] = struct{}{}
			}
		}
	}

	authors := make([]string, 0, len(affected))
	for a := range affected {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	return Record{
		Commit:            revision,
		Filepath:          file,
		Author:            author,
		TotalChurn:        added + deleted,
		LinesAdded:        added,
		LinesDeleted:      deleted,
		LinesDeletedSelf:  self,
		LinesDeletedOther: other,
		NumDevsAffected:   len(authors),
		AuthorsAffected:   authors,
	}, nil
}

// ParseAuthorLine extracts the name from "Author: Name <email>".
func ParseAuthorLine(line string) string {
	s := strings.TrimPrefix(line, authorPrefix)
	if i := strings.Index(s, " <"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
