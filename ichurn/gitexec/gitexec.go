package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
)

// Error is returned when git exits with a non-zero status.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %v: %v", strings.Join(e.Args, " "), msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Exec(ctx context.Context, gitCommand string, repoDir string, args []string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	err := ExecIntoWriter(ctx, buf, gitCommand, repoDir, args)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExecIntoWriter(ctx context.Context, wr io.Writer, gitCommand string, repoDir string, args []string) error {
	stderr := bytes.NewBuffer(nil)
	c := exec.CommandContext(ctx, gitCommand, args...)
	c.Dir = repoDir
	c.Stderr = stderr
	c.Stdout = wr
	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return &Error{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// HeadCommit returns the sha of HEAD. Fails for empty repos.
func HeadCommit(ctx context.Context, gitCommand string, repoDir string) (string, error) {
	out, err := Exec(ctx, gitCommand, repoDir, []string{"rev-parse", "HEAD"})
	if err != nil {
		return "", err
	}
	res := strings.TrimSpace(string(out))
	if !IsFullSHA(res) {
		return "", fmt.Errorf("invalid head commit %q", res)
	}
	return res, nil
}

var shaRE = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsFullSHA returns true for a full 40 char hex commit id. Only these are safe cache
// keys since symbolic refs move.
func IsFullSHA(s string) bool {
	return shaRE.MatchString(s)
}
