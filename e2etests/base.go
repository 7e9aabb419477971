// Package e2etests runs the churn command end to end on generated repos.
package e2etests

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdchurn"
	"github.com/pinpt/ichurn/ichurn/config"
	"github.com/pinpt/ichurn/ichurn/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type Test struct {
	t    *testing.T
	Dirs testutil.TestRepoDirs
	SHAs []string

	// Extensions selects files, defaults to .go.
	Extensions []string
}

func NewTest(t *testing.T, commits []testutil.Commit) *Test {
	s := &Test{}
	s.t = t
	s.Dirs, s.SHAs = testutil.CreateRepo(t, commits)
	s.Extensions = []string{".go"}
	return s
}

func (s *Test) Remove() {
	s.Dirs.Remove()
}

// Run processes revisions in both patch modes, checks that they agree and returns the
// records. All non-merge commits are processed when revisions is empty.
func (s *Test) Run(revisions []string) []churn.Record {
	t := s.t
	t.Helper()
	var res [][]churn.Record
	for _, mode := range []ichurn.PatchMode{ichurn.PatchModeFile, ichurn.PatchModeCommit} {
		res = append(res, s.run(mode, revisions))
	}
	require.Equal(t, res[0], res[1], "patch modes disagree")
	return res[0]
}

func (s *Test) run(mode ichurn.PatchMode, revisions []string) (res []churn.Record) {
	t := s.t
	t.Helper()
	cfg := &config.Config{
		GitCommand:  "git",
		Workers:     2,
		Extensions:  s.Extensions,
		PatchMode:   string(mode),
		AuthorMatch: string(churn.MatchSubstring),
		Format:      "jsonl",
		LogLevel:    "error",
	}
	require.NoError(t, cfg.Validate())

	out := bytes.NewBuffer(nil)
	stats, err := cmdchurn.Run(context.Background(), cmdchurn.Opts{
		RepoDir:   s.Dirs.RepoDir,
		Revisions: revisions,
		Config:    cfg,
		Out:       out,
		Log:       bytes.NewBuffer(nil),
	})
	require.NoError(t, err)
	require.Empty(t, stats.Failures)

	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var rec churn.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		require.NoError(t, rec.Validate())
		res = append(res, rec)
	}
	require.NoError(t, sc.Err())
	require.Equal(t, stats.Records, len(res))
	return
}

func assertResult(t *testing.T, want, got []churn.Record) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("invalid result count, wanted %v, got %v\n%+v", len(want), len(got), got)
	}
	for i := range want {
		if !recordsEqual(want[i], got[i]) {
			t.Fatalf("invalid record %v, wanted\n%+v\ngot\n%+v", i, want[i], got[i])
		}
	}
}

func recordsEqual(r1, r2 churn.Record) bool {
	if r1.Commit != r2.Commit || r1.Filepath != r2.Filepath || r1.Author != r2.Author {
		return false
	}
	if r1.TotalChurn != r2.TotalChurn || r1.LinesAdded != r2.LinesAdded || r1.LinesDeleted != r2.LinesDeleted {
		return false
	}
	if r1.LinesDeletedSelf != r2.LinesDeletedSelf || r1.LinesDeletedOther != r2.LinesDeletedOther {
		return false
	}
	if r1.NumDevsAffected != r2.NumDevsAffected || len(r1.AuthorsAffected) != len(r2.AuthorsAffected) {
		return false
	}
	for i := range r1.AuthorsAffected {
		if r1.AuthorsAffected[i] != r2.AuthorsAffected[i] {
			return false
		}
	}
	return true
}

const (
	u1n = "User1"
	u1e = "user1@example.com"
	u2n = "User2"
	u2e = "user2@example.com"
)
