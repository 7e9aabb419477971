// Package hunk parses unified diff hunk headers.
package hunk

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrMalformedHeader is returned when a @@ line can't be parsed.
var ErrMalformedHeader = errors.New("malformed hunk header")

// Header is the line range description from one hunk header line
//
//	@@ -a[,b] +c[,d] @@
//
// DeletedStart is a, the 1-based first line removed in the pre-change file.
// For pure additions (b == 0) it is the line after which the new lines are inserted.
type Header struct {
	DeletedStart int
	DeletedCount int
	AddedStart   int
	AddedCount   int
}

// DeletedEnd returns the last deleted line. Only meaningful when DeletedCount > 0.
func (h Header) DeletedEnd() int {
	return h.DeletedStart + h.DeletedCount - 1
}

func (h Header) String() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.DeletedStart, h.DeletedCount, h.AddedStart, h.AddedCount)
}

var headerRE = regexp.MustCompile(`^@@\s+-(?P<del_start>\d+)(?:,(?P<del_count>\d+))?\s+\+(?P<add_start>\d+)(?:,(?P<add_count>\d+))?\s+@@`)

var (
	delStartIdx = headerRE.SubexpIndex("del_start")
	delCountIdx = headerRE.SubexpIndex("del_count")
	addStartIdx = headerRE.SubexpIndex("add_start")
	addCountIdx = headerRE.SubexpIndex("add_count")
)

// Parse parses a hunk header line. Omitted counts default to 1.
func Parse(line string) (res Header, _ error) {
	m := headerRE.FindStringSubmatch(line)
	if m == nil {
		return res, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	var err error
	if res.DeletedStart, err = atoi(m[delStartIdx], 0); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrMalformedHeader, line, err)
	}
	if res.DeletedCount, err = atoi(m[delCountIdx], 1); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrMalformedHeader, line, err)
	}
	if res.AddedStart, err = atoi(m[addStartIdx], 0); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrMalformedHeader, line, err)
	}
	if res.AddedCount, err = atoi(m[addCountIdx], 1); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrMalformedHeader, line, err)
	}
	if res.DeletedStart > math.MaxInt-res.DeletedCount || res.AddedStart > math.MaxInt-res.AddedCount {
		return Header{}, fmt.Errorf("%w: %q: line range out of bounds", ErrMalformedHeader, line)
	}
	return res, nil
}

func atoi(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
