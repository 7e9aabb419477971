package churn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/pinpt/ichurn/ichurn/hunk"
	"github.com/pinpt/ichurn/ichurn/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthorship struct {
	lines map[int]LineAuthor
	err   error
	calls int
	delay time.Duration
}

func (s *fakeAuthorship) Lookup(ctx context.Context, revision, file string, start, count int) (map[int]LineAuthor, error) {
	s.calls++
	if s.delay != 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	res := map[int]LineAuthor{}
	for n := start; n < start+count; n++ {
		if l, ok := s.lines[n]; ok {
			res[n] = l
		}
	}
	return res, nil
}

func blameLine(n int, name string) LineAuthor {
	return LineAuthor{
		Line:  n,
		Name:  name,
		Label: fmt.Sprintf("3f2a9c1 (%s 2012-04-01 10:00:00 +0000 %d)", name, n),
	}
}

func newTestBuilder(src AuthorshipSource) *Builder {
	return NewBuilder(&Attributor{Authorship: src}, nil)
}

func patch(author string, headers ...string) []string {
	res := []string{
		"commit 3f2a9c1d2e",
	}
	if author != "" {
		res = append(res, "Author: "+author)
	}
	res = append(res, "Date:   Sun Apr 1 10:00:00 2012 +0000", "", "    change things", "")
	res = append(res, "diff --git a/main.c b/main.c", "--- a/main.c", "+++ b/main.c")
	for _, h := range headers {
		res = append(res, h, "-old", "+new")
	}
	return res
}

func TestBuildAllSelf(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{2: blameLine(2, "Alice"), 3: blameLine(3, "Alice")}}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -2,2 +2,2 @@"))
	require.NoError(t, err)
	assert.Equal(t, Record{
		Commit:            "c1",
		Filepath:          "main.c",
		Author:            "Alice",
		TotalChurn:        4,
		LinesAdded:        2,
		LinesDeleted:      2,
		LinesDeletedSelf:  2,
		LinesDeletedOther: 0,
		NumDevsAffected:   0,
		AuthorsAffected:   []string{},
	}, rec)
	assert.NoError(t, rec.Validate())
}

func TestBuildSelfAndOther(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{2: blameLine(2, "Alice"), 3: blameLine(3, "Bob")}}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -2,2 +2,2 @@"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.LinesDeletedSelf)
	assert.Equal(t, 1, rec.LinesDeletedOther)
	assert.Equal(t, []string{"Bob"}, rec.AuthorsAffected)
	assert.Equal(t, 1, rec.NumDevsAffected)
	assert.NoError(t, rec.Validate())
}

func TestBuildPureAdditionSkipsLookup(t *testing.T) {
	src := &fakeAuthorship{err: errors.New("must not be called")}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -0,0 +1,5 @@"))
	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, 5, rec.LinesAdded)
	assert.Equal(t, 0, rec.LinesDeleted)
	assert.Equal(t, 5, rec.TotalChurn)
}

func TestBuildMalformedHeader(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{1: blameLine(1, "Alice")}}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -1 +1 @@", "@@ garbage @@"))
	assert.ErrorIs(t, err, hunk.ErrMalformedHeader)
	assert.Equal(t, Record{}, rec)
}

func TestBuildMultipleHunks(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{
		1:  blameLine(1, "Carol"),
		10: blameLine(10, "Bob"),
		11: blameLine(11, "Alice"),
		12: blameLine(12, "Carol"),
	}}
	lines := patch("Alice <a@x.com>", "@@ -1 +1 @@", "@@ -5,0 +6,3 @@", "@@ -10,3 +12 @@ int main() {")
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", lines)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.LinesAdded)
	assert.Equal(t, 4, rec.LinesDeleted)
	assert.Equal(t, 9, rec.TotalChurn)
	assert.Equal(t, 1, rec.LinesDeletedSelf)
	assert.Equal(t, 3, rec.LinesDeletedOther)
	assert.Equal(t, []string{"Bob", "Carol"}, rec.AuthorsAffected)
	assert.Equal(t, 2, src.calls)
}

func TestBuildMissingAuthorDegradesToOther(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{2: blameLine(2, "Alice"), 3: blameLine(3, "Bob")}}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("", "@@ -2,2 +2,2 @@"))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Author)
	assert.Equal(t, 0, rec.LinesDeletedSelf)
	assert.Equal(t, 2, rec.LinesDeletedOther)
	assert.Equal(t, []string{"Alice", "Bob"}, rec.AuthorsAffected)
	assert.NoError(t, rec.Validate())
}

func TestBuildFirstAuthorLineWins(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{2: blameLine(2, "Alice")}}
	lines := patch("Alice <a@x.com>", "@@ -2 +2 @@")
	lines = append(lines, "Author: Bob <b@x.com>", "@@ -2 +2 @@")
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", lines)
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.Author)
	assert.Equal(t, 2, rec.LinesDeletedSelf)
}

func TestBuildLookupFailed(t *testing.T) {
	src := &fakeAuthorship{err: errors.New("fatal: no such path 'main.c' in c1^")}
	rec, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -2,2 +2,2 @@"))
	assert.ErrorIs(t, err, ErrAuthorshipLookupFailed)
	assert.Equal(t, Record{}, rec)
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "c1", lerr.Revision)
	assert.Equal(t, "main.c", lerr.File)
}

func TestBuildLineMissing(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{2: blameLine(2, "Alice")}}
	_, err := newTestBuilder(src).Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -2,2 +2,2 @@"))
	assert.ErrorIs(t, err, ErrAuthorshipLookupFailed)
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 3, lerr.Line)
}

func TestBuildLookupTimeout(t *testing.T) {
	src := &fakeAuthorship{delay: time.Second, lines: map[int]LineAuthor{2: blameLine(2, "Alice")}}
	b := NewBuilder(&Attributor{Authorship: src, Timeout: 10 * time.Millisecond}, nil)
	_, err := b.Build(context.Background(), "c1", "main.c", patch("Alice <a@x.com>", "@@ -2 +2 @@"))
	assert.ErrorIs(t, err, ErrAuthorshipLookupFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildIdempotent(t *testing.T) {
	src := &fakeAuthorship{lines: map[int]LineAuthor{
		2: blameLine(2, "Dan"), 3: blameLine(3, "Bob"), 4: blameLine(4, "Carol"), 5: blameLine(5, "Alice"),
	}}
	b := newTestBuilder(src)
	lines := patch("Alice <a@x.com>", "@@ -2,4 +2,1 @@")
	r1, err := b.Build(context.Background(), "c1", "main.c", lines)
	require.NoError(t, err)
	r2, err := b.Build(context.Background(), "c1", "main.c", lines)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, []string{"Bob", "Carol", "Dan"}, r1.AuthorsAffected)
}

func TestParseAuthorLine(t *testing.T) {
	for in, want := range map[string]string{
		"Author: Alice <a@x.com>":            "Alice",
		"Author:   Alice Smith   <a@x.com>\n": "Alice Smith",
		"Author: Alice":                      "Alice",
		"Author: ":                           "",
	} {
		assert.Equal(t, want, ParseAuthorLine(in), in)
	}
}

// Deleted lines must always land in exactly one bucket, whatever the patch shape.
func TestBuildPropertySelfPlusOther(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		names := random.Names(1 + rnd.Intn(5))
		acting := names[rnd.Intn(len(names))]
		src := &fakeAuthorship{lines: map[int]LineAuthor{}}

		var headers []string
		line := 1
		for h := 0; h < 1+rnd.Intn(6); h++ {
			line += rnd.Intn(20)
			del := rnd.Intn(5)
			add := rnd.Intn(5)
			for n := line; n < line+del; n++ {
				src.lines[n] = blameLine(n, names[rnd.Intn(len(names))])
			}
			headers = append(headers, hunk.Header{DeletedStart: line, DeletedCount: del, AddedStart: line, AddedCount: add}.String())
			line += del
		}

		rec, err := newTestBuilder(src).Build(context.Background(), "c", "f.c", patch(acting+" <x@y.z>", headers...))
		require.NoError(t, err)
		require.NoError(t, rec.Validate())
		assert.Equal(t, rec.LinesDeleted, rec.LinesDeletedSelf+rec.LinesDeletedOther)
		assert.NotContains(t, rec.AuthorsAffected, acting)
	}
}
