// Package gitpatch produces the patch text the churn builder consumes.
package gitpatch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pinpt/ichurn/ichurn/commitmeta"
	"github.com/pinpt/ichurn/ichurn/gitexec"
	"github.com/pinpt/ichurn/ichurn/hunk"
	"github.com/sourcegraph/go-diff/diff"
)

// Source implements churn.PatchSource using git log.
type Source struct {
	RepoDir    string
	GitCommand string
	// Cache is optional. Only used when revision is a full sha.
	Cache *gitexec.Cache
}

func New(repoDir string) *Source {
	return &Source{RepoDir: repoDir, GitCommand: "git"}
}

// Patch returns the zero context patch of file as changed by revision, split into lines.
func (s *Source) Patch(ctx context.Context, revision, file string) ([]string, error) {
	args := []string{
		"-c", "core.quotePath=false",
		"log",
		"-p",
		"--unified=0",
		"-1",
		"--no-color",
		"--no-ext-diff",
		"--no-renames",
		"--format=medium",
		"--use-mailmap",
		revision,
		"--",
		file,
	}
	out, err := s.exec(ctx, revision, args)
	if err != nil {
		return nil, err
	}
	return splitLines(string(out)), nil
}

// CommitPatches diffs the whole commit once and returns synthesized patch lines per file,
// in the same shape Patch returns. Merge commits have no patches.
func (s *Source) CommitPatches(ctx context.Context, c commitmeta.Commit) (map[string][]string, error) {
	res := map[string][]string{}
	if c.IsMerge() {
		return res, nil
	}
	args := []string{
		"-c", "core.quotePath=false",
		"-c", "diff.noprefix=false",
		"-c", "diff.mnemonicPrefix=false",
		"show",
		"--format=",
		"--unified=0",
		"--no-color",
		"--no-ext-diff",
		"--no-renames",
		"--src-prefix=a/",
		"--dst-prefix=b/",
		c.SHA,
		"--",
	}
	out, err := s.exec(ctx, c.SHA, args)
	if err != nil {
		return nil, err
	}
	fileDiffs, err := diff.ParseMultiFileDiff(bytes.TrimLeft(out, "\n"))
	if err != nil {
		return nil, fmt.Errorf("could not parse diff of %v: %w", c.SHA, err)
	}
	for _, d := range fileDiffs {
		name := FileName(d)
		lines := []string{
			"commit " + c.SHA,
			c.AuthorLine(),
			"diff --git " + d.OrigName + " " + d.NewName,
		}
		for _, h := range d.Hunks {
			lines = append(lines, hunk.Header{
				DeletedStart: int(h.OrigStartLine),
				DeletedCount: int(h.OrigLines),
				AddedStart:   int(h.NewStartLine),
				AddedCount:   int(h.NewLines),
			}.String())
		}
		res[name] = lines
	}
	return res, nil
}

// FileName returns the repo relative path of a file diff. Deleted files use the old name.
func FileName(d *diff.FileDiff) string {
	if d.NewName == "/dev/null" {
		return strings.TrimPrefix(d.OrigName, "a/")
	}
	return strings.TrimPrefix(d.NewName, "b/")
}

func (s *Source) exec(ctx context.Context, revision string, args []string) ([]byte, error) {
	gitCommand := s.GitCommand
	if gitCommand == "" {
		gitCommand = "git"
	}
	if s.Cache != nil && gitexec.IsFullSHA(revision) {
		return s.Cache.Exec(ctx, gitCommand, s.RepoDir, args)
	}
	return gitexec.Exec(ctx, gitCommand, s.RepoDir, args)
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
