package gitpatch

import (
	"context"
	"testing"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/commitmeta"
	"github.com/pinpt/ichurn/ichurn/gitblame"
	"github.com/pinpt/ichurn/ichurn/pkg/testutil"
	"github.com/sourcegraph/go-diff/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRepo(t *testing.T) (testutil.TestRepoDirs, []string) {
	return testutil.CreateRepo(t, []testutil.Commit{
		{Author: "Alice", Email: "alice@example.com", Files: map[string]string{
			"a.c":     testutil.Lines("1", "2", "3"),
			"gone.sh": testutil.Lines("x"),
		}},
		{Author: "Bob", Email: "bob@example.com", Files: map[string]string{
			"a.c":    testutil.Lines("1", "b", "3", "4"),
			"new.py": testutil.Lines("p"),
		}, Delete: []string{"gone.sh"}},
	})
}

func TestPatch(t *testing.T) {
	dirs, shas := createTestRepo(t)
	defer dirs.Remove()

	lines, err := New(dirs.RepoDir).Patch(context.Background(), shas[1], "a.c")
	require.NoError(t, err)
	assert.Equal(t, "commit "+shas[1], lines[0])
	assert.Contains(t, lines, "Author: Bob <bob@example.com>")
	assert.Contains(t, lines, "-2")
	assert.Contains(t, lines, "+b")
	assert.Contains(t, lines, "+4")
}

func TestPatchBuildsRecord(t *testing.T) {
	dirs, shas := createTestRepo(t)
	defer dirs.Remove()

	ctx := context.Background()
	lines, err := New(dirs.RepoDir).Patch(ctx, shas[1], "a.c")
	require.NoError(t, err)

	b := churn.NewBuilder(&churn.Attributor{Authorship: gitblame.New(dirs.RepoDir)}, nil)
	rec, err := b.Build(ctx, shas[1], "a.c", lines)
	require.NoError(t, err)
	assert.Equal(t, churn.Record{
		Commit:            shas[1],
		Filepath:          "a.c",
		Author:            "Bob",
		TotalChurn:        3,
		LinesAdded:        2,
		LinesDeleted:      1,
		LinesDeletedSelf:  0,
		LinesDeletedOther: 1,
		NumDevsAffected:   1,
		AuthorsAffected:   []string{"Alice"},
	}, rec)
}

func TestCommitPatches(t *testing.T) {
	dirs, shas := createTestRepo(t)
	defer dirs.Remove()

	ctx := context.Background()
	c, err := commitmeta.New(dirs.RepoDir, commitmeta.Opts{}).Commit(ctx, shas[1])
	require.NoError(t, err)

	got, err := New(dirs.RepoDir).CommitPatches(ctx, c)
	require.NoError(t, err)
	require.Len(t, got, 3)

	header := []string{"commit " + shas[1], "Author: Bob <bob@example.com>"}
	assert.Equal(t, header, got["a.c"][:2])
	assert.Equal(t, []string{"@@ -2,1 +2,1 @@", "@@ -3,0 +4,1 @@"}, got["a.c"][3:])
	assert.Equal(t, []string{"@@ -1,1 +0,0 @@"}, got["gone.sh"][3:])
	assert.Equal(t, []string{"@@ -0,0 +1,1 @@"}, got["new.py"][3:])
}

func TestCommitPatchesIgnoresPrefixConfig(t *testing.T) {
	dirs, shas := createTestRepo(t)
	defer dirs.Remove()
	testutil.Git(t, dirs.RepoDir, nil, "config", "diff.noprefix", "true")
	testutil.Git(t, dirs.RepoDir, nil, "config", "diff.mnemonicPrefix", "true")

	ctx := context.Background()
	c, err := commitmeta.New(dirs.RepoDir, commitmeta.Opts{}).Commit(ctx, shas[1])
	require.NoError(t, err)

	got, err := New(dirs.RepoDir).CommitPatches(ctx, c)
	require.NoError(t, err)
	for _, f := range c.FileNames() {
		assert.Contains(t, got, f)
	}
	assert.Equal(t, []string{"@@ -2,1 +2,1 @@", "@@ -3,0 +4,1 @@"}, got["a.c"][3:])
}

func TestPatchUsesMailmap(t *testing.T) {
	dirs, shas := testutil.CreateRepo(t, []testutil.Commit{
		{Author: "al", Email: "a@example.com", Files: map[string]string{
			".mailmap": "Alice <a@example.com> al <a@example.com>\n",
			"a.c":      testutil.Lines("1"),
		}},
	})
	defer dirs.Remove()

	lines, err := New(dirs.RepoDir).Patch(context.Background(), shas[0], "a.c")
	require.NoError(t, err)
	assert.Contains(t, lines, "Author: Alice <a@example.com>")
}

func TestCommitPatchesSkipsMerges(t *testing.T) {
	got, err := New("/does/not/exist").CommitPatches(context.Background(), commitmeta.Commit{
		SHA:     "9b39087654af70197f68d0b3d196a4a20d987cd6",
		Parents: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "x/y.go", FileName(&diff.FileDiff{OrigName: "a/x/y.go", NewName: "b/x/y.go"}))
	assert.Equal(t, "gone.go", FileName(&diff.FileDiff{OrigName: "a/gone.go", NewName: "/dev/null"}))
	assert.Equal(t, "new.go", FileName(&diff.FileDiff{OrigName: "/dev/null", NewName: "b/new.go"}))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a", "", "b"}, splitLines("a\n\nb\n"))
}
