package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type TestRepoDirs struct {
	TempWrapper string
	RepoDir     string
}

func (s TestRepoDirs) Remove() {
	err := os.RemoveAll(s.TempWrapper)
	if err != nil {
		panic(err)
	}
}

// Commit describes one commit to create in a test repo.
type Commit struct {
	Author string
	Email  string
	// Files maps path to full new content.
	Files map[string]string
	// Delete lists paths to remove.
	Delete  []string
	Message string
}

// SkipIfNoGit skips the test when git is not installed.
func SkipIfNoGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not found, skipping")
	}
}

// CreateRepo creates a git repo in a temp dir with the given commits applied in order.
// Returns the dirs and the sha of every commit.
func CreateRepo(t testing.TB, commits []Commit) (res TestRepoDirs, shas []string) {
	t.Helper()
	SkipIfNoGit(t)

	tempDir, err := os.MkdirTemp("", "ichurn-test-")
	if err != nil {
		t.Fatal(err)
	}
	res.TempWrapper = tempDir
	res.RepoDir = filepath.Join(tempDir, "repo")
	if err := os.MkdirAll(res.RepoDir, 0777); err != nil {
		t.Fatal(err)
	}

	Git(t, res.RepoDir, nil, "init", "-q")
	Git(t, res.RepoDir, nil, "config", "user.email", "atester@ichurn.org")
	Git(t, res.RepoDir, nil, "config", "user.name", "auto tester")
	Git(t, res.RepoDir, nil, "config", "commit.gpgsign", "false")

	for i, c := range commits {
		shas = append(shas, AddCommit(t, res.RepoDir, c, i+1))
	}
	return
}

// AddCommit applies c to the checked out branch of repoDir and returns the new sha. n sets
// the commit date to 2012-04-n and the default message to cn.
func AddCommit(t testing.TB, repoDir string, c Commit, n int) string {
	t.Helper()
	for p, content := range c.Files {
		loc := filepath.Join(repoDir, p)
		if err := os.MkdirAll(filepath.Dir(loc), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(loc, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range c.Delete {
		if err := os.Remove(filepath.Join(repoDir, p)); err != nil {
			t.Fatal(err)
		}
	}
	Git(t, repoDir, nil, "add", "-A")
	msg := c.Message
	if msg == "" {
		msg = fmt.Sprintf("c%d", n)
	}
	Git(t, repoDir, commitEnv(c.Author, c.Email, n), "commit", "-q", "--allow-empty", "-m", msg)
	return strings.TrimSpace(Git(t, repoDir, nil, "rev-parse", "HEAD"))
}

func commitEnv(name, email string, n int) []string {
	date := fmt.Sprintf("2012-04-%02dT10:00:00+00:00", n)
	return []string{
		"GIT_AUTHOR_NAME=" + name,
		"GIT_AUTHOR_EMAIL=" + email,
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_NAME=" + name,
		"GIT_COMMITTER_EMAIL=" + email,
		"GIT_COMMITTER_DATE=" + date,
	}
}

// Merge merges branch into the checked out branch with a merge commit authored by name
// and returns its sha.
func Merge(t testing.TB, repoDir string, branch string, name, email string, n int) string {
	t.Helper()
	Git(t, repoDir, commitEnv(name, email, n), "merge", "-q", "--no-ff", "--no-edit", branch)
	return strings.TrimSpace(Git(t, repoDir, nil, "rev-parse", "HEAD"))
}

// Git runs git in dir and fails the test on error. Returns combined output.
func Git(t testing.TB, dir string, env []string, args ...string) string {
	t.Helper()
	out := bytes.NewBuffer(nil)
	c := exec.Command("git", args...)
	c.Dir = dir
	c.Env = append(os.Environ(), env...)
	c.Stdout = out
	c.Stderr = out
	if err := c.Run(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

// Lines joins lines with a trailing newline, for file contents.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
