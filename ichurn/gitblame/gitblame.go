// Package gitblame resolves prior line authorship with git blame.
package gitblame

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/gitexec"
)

// Source implements churn.AuthorshipSource on top of git blame of the parent revision.
type Source struct {
	RepoDir    string
	GitCommand string
	// Cache is optional. Only used when revision is a full sha.
	Cache *gitexec.Cache
}

func New(repoDir string) *Source {
	return &Source{RepoDir: repoDir, GitCommand: "git"}
}

// Lookup returns the authors of lines [start, start+count-1] of file in revision^.
func (s *Source) Lookup(ctx context.Context, revision, file string, start, count int) (map[int]churn.LineAuthor, error) {
	if start < 1 || count < 1 {
		return nil, fmt.Errorf("invalid blame range start=%v count=%v", start, count)
	}
	args := []string{
		"blame",
		"--line-porcelain",
		"-L", strconv.Itoa(start) + "," + strconv.Itoa(start+count-1),
		revision + "^",
		"--",
		file,
	}
	out, err := s.exec(ctx, revision, args)
	if err != nil {
		return nil, err
	}
	lines, err := parseOutput(string(out))
	if err != nil {
		return nil, err
	}
	res := make(map[int]churn.LineAuthor, len(lines))
	for _, l := range lines {
		res[l.FinalLine] = toLineAuthor(l)
	}
	return res, nil
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

func toLineAuthor(l line) churn.LineAuthor {
	name := l.Meta["author"]
	email := l.Meta["author-mail"]
	return churn.LineAuthor{
		Line:   l.FinalLine,
		Commit: l.CommitHash,
		Name:   name,
		Email:  strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">"),
		Label:  strings.TrimSpace(name + " " + email),
	}
}

// Line is one line of a full file blame.
type Line struct {
	Content    string
	CommitHash string
	Author     string
}

func (l Line) String() string {
	return l.CommitHash + ":" + l.Author + ":" + l.Content
}

type Result struct {
	Lines []Line
}

func (r Result) String() string {
	out := []string{}
	for i, l := range r.Lines {
		out = append(out, strconv.Itoa(i+1)+":"+l.String())
	}
	return strings.Join(out, "\n")
}

// Run blames the whole file at commitHash. Used by validation tooling.
func (s *Source) Run(ctx context.Context, commitHash, file string) (res Result, _ error) {
	args := []string{
		"blame",
		"--porcelain",
		commitHash,
		"--",
		file,
	}
	out, err := s.exec(ctx, commitHash, args)
	if err != nil {
		return res, err
	}
	lines, err := parseOutput(string(out))
	if err != nil {
		return res, err
	}
	for _, l0 := range lines {
		res.Lines = append(res.Lines, Line{Content: l0.Content, CommitHash: l0.CommitHash, Author: l0.Meta["author"]})
	}
	return res, nil
}
