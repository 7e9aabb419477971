package gitexec

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBin(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			t.Skipf("%v not available: %v", n, err)
		}
	}
}

func TestExec(t *testing.T) {
	requireBin(t, "echo")
	out, err := Exec(context.Background(), "echo", t.TempDir(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExecError(t *testing.T) {
	requireBin(t, "sh")
	_, err := Exec(context.Background(), "sh", t.TempDir(), []string{"-c", "echo 'fatal: bad revision' >&2; exit 128"})
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "fatal: bad revision\n", gerr.Stderr)
	assert.Contains(t, err.Error(), "fatal: bad revision")
}

func TestCache(t *testing.T) {
	requireBin(t, "echo", "false")
	dir := t.TempDir()
	c, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	out, err := c.Exec(ctx, "echo", dir, []string{"blame", "abc"})
	require.NoError(t, err)
	assert.Equal(t, "blame abc\n", string(out))

	// served from cache, command is not run again
	out, err = c.Exec(ctx, "false", dir, []string{"blame", "abc"})
	require.NoError(t, err)
	assert.Equal(t, "blame abc\n", string(out))

	// different args miss
	_, err = c.Exec(ctx, "false", dir, []string{"blame", "abd"})
	assert.Error(t, err)
}

func TestCacheEntryRoundTrip(t *testing.T) {
	e := entry{Dir: "/repo", Args: []string{"blame", "-L", "1,2"}, Created: 1543352136, Output: []byte("x\ny\n")}
	b, err := e.MarshalMsg(nil)
	require.NoError(t, err)
	var got entry
	rest, err := got.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, e, got)
}

func TestIsFullSHA(t *testing.T) {
	assert.True(t, IsFullSHA("69ba50fff990c169f80de96674919033a0a9b66d"))
	assert.False(t, IsFullSHA("HEAD"))
	assert.False(t, IsFullSHA("69ba50f"))
}
