// Package cmdvalidate cross-checks churn records against git's own numstat and blame.
package cmdvalidate

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/pinpt/ichurn/ichurn"
	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/cmd/cmdutils"
	"github.com/pinpt/ichurn/ichurn/commitmeta"
	"github.com/pinpt/ichurn/ichurn/gitblame"
	"github.com/pinpt/ichurn/ichurn/pkg/gitrepos"
	"github.com/pinpt/ichurn/ichurn/pkg/logger"
)

type Opts struct {
	GitCommand string
	Workers    int
	Logger     logger.Logger
	// MaxCommits limits the number of most recent commits checked per repo. 0 checks all.
	MaxCommits int
}

// MismatchError is a record that does not agree with git.
type MismatchError struct {
	Repo     string
	Revision string
	File     string
	Msg      string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("repo: %v commit: %v file: %v: %v", e.Repo, e.Revision, e.File, e.Msg)
}

// Run validates every repo found in dirs and returns all mismatches and failures.
func Run(ctx context.Context, wr io.Writer, dirs []string, opts Opts) (errs []error, _ error) {
	if opts.GitCommand == "" {
		opts.GitCommand = "git"
	}
	for _, dir := range dirs {
		err := gitrepos.IterDir(dir, 1, func(repoDir string) error {
			var repoErrs []error
			err := cmdutils.RunOnRepo(ctx, wr, opts.GitCommand, repoDir, func() error {
				var err error
				repoErrs, err = Repo(ctx, repoDir, opts)
				if err != nil {
					return err
				}
				if len(repoErrs) != 0 {
					return fmt.Errorf("%v checks failed", len(repoErrs))
				}
				fmt.Fprintln(wr, color.GreenString("SUCCESS on %v", repoDir))
				return nil
			})
			switch {
			case err == cmdutils.ErrRevParseFailed:
				fmt.Fprintf(wr, "%v", color.YellowString("skipped empty repo %v\n", repoDir))
			case len(repoErrs) != 0:
				errs = append(errs, repoErrs...)
			case err != nil:
				errs = append(errs, fmt.Errorf("repo: %v err: %v", repoDir, err))
			}
			return nil
		})
		if err != nil {
			return errs, err
		}
	}
	return errs, nil
}

// Repo validates all non-merge commits of HEAD in repoDir.
func Repo(ctx context.Context, repoDir string, opts Opts) (errs []error, _ error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	meta := commitmeta.New(repoDir, commitmeta.Opts{GitCommand: opts.GitCommand})
	revisions, err := meta.RevList(ctx, "HEAD", true)
	if err != nil {
		return nil, err
	}
	if opts.MaxCommits > 0 && len(revisions) > opts.MaxCommits {
		revisions = revisions[len(revisions)-opts.MaxCommits:]
	}

	ic := ichurn.New(ichurn.Opts{
		RepoDir:    repoDir,
		GitCommand: opts.GitCommand,
		Workers:    opts.Workers,
		Logger:     opts.Logger,
	})
	records, failed, err := ic.RunAll(ctx, revisions)
	if err != nil {
		return nil, err
	}
	for _, f := range failed {
		errs = append(errs, f)
	}

	commits := map[string]commitmeta.Commit{}
	blame := gitblame.New(repoDir)
	if opts.GitCommand != "" {
		blame.GitCommand = opts.GitCommand
	}

	for _, rec := range records {
		mismatch := func(format string, args ...interface{}) {
			errs = append(errs, &MismatchError{Repo: repoDir, Revision: rec.Commit, File: rec.Filepath, Msg: fmt.Sprintf(format, args...)})
		}
		if err := rec.Validate(); err != nil {
			mismatch("%v", err)
		}
		c, ok := commits[rec.Commit]
		if !ok {
			c, err = meta.Commit(ctx, rec.Commit)
			if err != nil {
				return errs, err
			}
			commits[rec.Commit] = c
		}
		f := c.Files[rec.Filepath]
		if f == nil {
			mismatch("file not in numstat")
			continue
		}
		if !f.Binary && (f.Additions != rec.LinesAdded || f.Deletions != rec.LinesDeleted) {
			mismatch("numstat +%v -%v, record +%v -%v", f.Additions, f.Deletions, rec.LinesAdded, rec.LinesDeleted)
		}
		if len(rec.AuthorsAffected) != 0 {
			if err := checkAffected(ctx, blame, c, rec); err != nil {
				mismatch("%v", err)
			}
		}
	}
	return errs, nil
}

// checkAffected verifies that every affected author owned a line of the file in the
// parent commit.
func checkAffected(ctx context.Context, blame *gitblame.Source, c commitmeta.Commit, rec churn.Record) error {
	if len(c.Parents) == 0 {
		return fmt.Errorf("affected authors %v in root commit", rec.AuthorsAffected)
	}
	res, err := blame.Run(ctx, c.Parents[0], rec.Filepath)
	if err != nil {
		return err
	}
	var owners []string
	for _, l := range res.Lines {
		owners = append(owners, l.Author)
	}
	for _, a := range rec.AuthorsAffected {
		if !slices.Contains(owners, a) {
			return fmt.Errorf("affected author %q owns no line in parent %v", a, c.Parents[0])
		}
	}
	return nil
}
