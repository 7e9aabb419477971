package gitrepos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0777))
	}
}

func TestFind(t *testing.T) {
	root, err := os.MkdirTemp("", "ichurn-gitrepos-")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	mkdirs(t, root,
		"a/.git",
		"a/nested/.git",
		"b/c/.git",
		"bare.git/objects",
		"d/e/f/.git",
		"plain",
	)

	got, err := Find(root, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b", "c"),
		filepath.Join(root, "bare.git"),
	}, got)

	got, err = Find(root, 3)
	require.NoError(t, err)
	assert.Contains(t, got, filepath.Join(root, "d", "e", "f"))
}

func TestIterDirRepoItself(t *testing.T) {
	root, err := os.MkdirTemp("", "ichurn-gitrepos-")
	require.NoError(t, err)
	defer os.RemoveAll(root)
	mkdirs(t, root, ".git", "sub/.git")

	var got []string
	err = IterDir(root, 5, func(repo string) error {
		got = append(got, repo)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean(root)}, got)
}

func TestFindNotADir(t *testing.T) {
	f, err := os.CreateTemp("", "ichurn-gitrepos-file")
	require.NoError(t, err)
	f.Close()
	defer os.Remove(f.Name())

	_, err = Find(f.Name(), 1)
	assert.Error(t, err)
}
