// Package ichurn computes per commit, per file code churn for a list of revisions of a
// git repository.
package ichurn

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/commitmeta"
	"github.com/pinpt/ichurn/ichurn/filefilter"
	"github.com/pinpt/ichurn/ichurn/gitblame"
	"github.com/pinpt/ichurn/ichurn/gitexec"
	"github.com/pinpt/ichurn/ichurn/gitpatch"
	"github.com/pinpt/ichurn/ichurn/pkg/logger"
)

// Record is the churn summary for one (revision, file) pair.
type Record = churn.Record

// PatchMode selects how patches are obtained.
type PatchMode string

const (
	// PatchModeFile runs git log once per (revision, file).
	PatchModeFile PatchMode = "file"
	// PatchModeCommit diffs each revision once and splits the result per file.
	PatchModeCommit PatchMode = "commit"
)

func ParsePatchMode(s string) (PatchMode, error) {
	switch PatchMode(s) {
	case "", PatchModeFile:
		return PatchModeFile, nil
	case PatchModeCommit:
		return PatchModeCommit, nil
	}
	return "", fmt.Errorf("unknown patch mode %q, expecting one of %v, %v", s, PatchModeFile, PatchModeCommit)
}

// Observer receives run events. metrics.Metrics implements it.
type Observer interface {
	churn.Observer
	ObserveRecord(rec churn.Record)
	ObserveFailure(err error)
}

// Opts is configuration for running churn on a single repo.
type Opts struct {
	// RepoDir git repo to run commands on.
	RepoDir string

	// GitCommand defaults to git.
	GitCommand string

	// Logger object for info and debug. Defaults to stdout.
	Logger logger.Logger

	// Workers is the number of units processed concurrently. Defaults to the number of CPUs.
	Workers int

	// Filter selects files. The zero value selects every file.
	Filter filefilter.Filter

	// PatchMode defaults to PatchModeFile.
	PatchMode PatchMode

	// AuthorMatch defaults to churn.MatchSubstring.
	AuthorMatch churn.AuthorMatch

	// BlameTimeout bounds every authorship lookup. Zero disables it.
	BlameTimeout time.Duration

	// Cache is an optional persistent cache for git output of full sha revisions.
	Cache *gitexec.Cache

	// Observer is optional.
	Observer Observer

	// Patches and Authorship replace the git backed collaborators when set.
	Patches    churn.PatchSource
	Authorship churn.AuthorshipSource
}

// Ichurn runs on a single repo.
type Ichurn struct {
	opts Opts

	meta     *commitmeta.Processor
	gitPatch *gitpatch.Source
	patches  churn.PatchSource
	builder  *churn.Builder
}

func New(opts Opts) *Ichurn {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(os.Stdout)
	}
	if opts.GitCommand == "" {
		opts.GitCommand = "git"
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.PatchMode == "" {
		opts.PatchMode = PatchModeFile
	}
	if opts.AuthorMatch == "" {
		opts.AuthorMatch = churn.MatchSubstring
	}

	s := &Ichurn{}
	s.opts = opts
	s.meta = commitmeta.New(opts.RepoDir, commitmeta.Opts{GitCommand: opts.GitCommand})

	s.gitPatch = &gitpatch.Source{RepoDir: opts.RepoDir, GitCommand: opts.GitCommand, Cache: opts.Cache}
	s.patches = opts.Patches
	if s.patches == nil {
		s.patches = s.gitPatch
	}

	authorship := opts.Authorship
	if authorship == nil {
		authorship = &gitblame.Source{RepoDir: opts.RepoDir, GitCommand: opts.GitCommand, Cache: opts.Cache}
	}
	attr := &churn.Attributor{
		Authorship: authorship,
		Match:      opts.AuthorMatch,
		Timeout:    opts.BlameTimeout,
		Observer:   opts.Observer,
	}
	s.builder = churn.NewBuilder(attr, opts.Logger)
	return s
}
