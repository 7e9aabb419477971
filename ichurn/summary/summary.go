// Package summary computes repository level churn totals from git history and from churn
// records.
package summary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/gitexec"
)

// CommandName prefixes all errors returned by History.
const CommandName = "ichurn"

// Counts are inserted and deleted line totals.
type Counts struct {
	Insertions int
	Deletions  int
}

// CountLines sums shortstat fragments such as " 2 insertions(+)" or " 1 deletion(-)".
// Other fragments, like " 1 file changed", are ignored.
func CountLines(fragments []string) (res Counts) {
	for _, f := range fragments {
		parts := strings.Fields(f)
		if len(parts) < 2 {
			continue
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(parts[1], "insertion"):
			res.Insertions += n
		case strings.HasPrefix(parts[1], "deletion"):
			res.Deletions += n
		}
	}
	return
}

// Standard is the history summary. JSON keys match the historical report format.
type Standard struct {
	Commits      int `json:"Commits"`
	TotalChurn   int `json:"Total Churn"`
	LinesAdded   int `json:"Lines added"`
	LinesDeleted int `json:"Lines deleted"`
}

func (s Standard) String() string {
	return fmt.Sprintf("%v commits, %v lines churned (+%v -%v)",
		humanize.Comma(int64(s.Commits)),
		humanize.Comma(int64(s.TotalChurn)),
		humanize.Comma(int64(s.LinesAdded)),
		humanize.Comma(int64(s.LinesDeleted)))
}

// Affected is the number of deleted lines previously written by someone else.
type Affected struct {
	AffectedLines int `json:"Affected lines"`
}

type Opts struct {
	// Revision defaults to HEAD.
	Revision string
	// File restricts the history to a single path.
	File string
	// GitCommand defaults to git.
	GitCommand string
}

// ErrNoHistory is returned when File has no commits in the history of Revision.
var ErrNoHistory = errors.New("no commits touch path")

// Log returns the commits and the shortstat fragments of the history, newest first.
func Log(ctx context.Context, repoDir string, opts Opts) (commits []string, fragments []string, _ error) {
	if stat, err := os.Stat(repoDir); err != nil || !stat.IsDir() {
		return nil, nil, fmt.Errorf("%v: %v: No such file or directory", CommandName, repoDir)
	}
	if opts.Revision == "" {
		opts.Revision = "HEAD"
	}
	if opts.GitCommand == "" {
		opts.GitCommand = "git"
	}
	args := []string{"log", "--shortstat", "--no-color", "--pretty=format:%H", opts.Revision, "--"}
	if opts.File != "" {
		args = append(args, opts.File)
	}
	out, err := gitexec.Exec(ctx, opts.GitCommand, repoDir, args)
	if err != nil {
		var gerr *gitexec.Error
		if errors.As(err, &gerr) && strings.TrimSpace(gerr.Stderr) != "" {
			return nil, nil, fmt.Errorf("%v: %v: %v", CommandName, repoDir, firstLine(gerr.Stderr))
		}
		return nil, nil, fmt.Errorf("%v: %v: %w", CommandName, repoDir, err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case gitexec.IsFullSHA(line):
			commits = append(commits, line)
		case strings.TrimSpace(line) == "":
		default:
			fragments = append(fragments, strings.Split(line, ",")...)
		}
	}
	if len(commits) == 0 && opts.File != "" {
		return nil, nil, fmt.Errorf("%v: %v: %w %v", CommandName, repoDir, ErrNoHistory, opts.File)
	}
	return commits, fragments, nil
}

// History summarizes the whole history of the revision, optionally for one file.
func History(ctx context.Context, repoDir string, opts Opts) (res Standard, _ error) {
	commits, fragments, err := Log(ctx, repoDir, opts)
	if err != nil {
		return res, err
	}
	c := CountLines(fragments)
	res.Commits = len(commits)
	res.LinesAdded = c.Insertions
	res.LinesDeleted = c.Deletions
	res.TotalChurn = c.Insertions + c.Deletions
	return res, nil
}

// Aggregate sums churn records. Commits counts distinct revisions.
func Aggregate(records []churn.Record) (std Standard, aff Affected) {
	commits := map[string]bool{}
	for _, r := range records {
		commits[r.Commit] = true
		std.LinesAdded += r.LinesAdded
		std.LinesDeleted += r.LinesDeleted
		std.TotalChurn += r.TotalChurn
		aff.AffectedLines += r.LinesDeletedOther
	}
	std.Commits = len(commits)
	return
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
