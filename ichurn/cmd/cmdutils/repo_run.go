package cmdutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pinpt/ichurn/ichurn/gitexec"
)

var ErrRevParseFailed = errors.New("git rev-parse HEAD failed")

// RunOnRepo checks that repoDir has a HEAD commit, then calls run and prints timing.
func RunOnRepo(ctx context.Context, wr io.Writer, gitCommand string, repoDir string, run func() error) error {
	start := time.Now()
	fmt.Fprintf(wr, "starting processing repo:%v\n", color.GreenString(repoDir))
	if _, err := gitexec.HeadCommit(ctx, gitCommand, repoDir); err != nil {
		fmt.Fprintf(wr, "git rev-parse HEAD failed, happens for empty repos, repo: %v err: %v\n", repoDir, err)
		return ErrRevParseFailed
	}

	err := run()
	if err != nil {
		fmt.Fprintf(wr, "completed repo processing in %v repo: %v err: %v\n", time.Since(start), color.RedString(repoDir), color.RedString(err.Error()))
		return err
	}

	fmt.Fprintf(wr, "completed repo processing in %v repo: %v\n", time.Since(start), color.GreenString(repoDir))
	return nil
}
