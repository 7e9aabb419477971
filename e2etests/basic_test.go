package e2etests

import (
	"testing"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/pkg/testutil"
)

func TestBasic(t *testing.T) {
	test := NewTest(t, []testutil.Commit{
		{Author: u1n, Email: u1e, Files: map[string]string{
			"main.go": testutil.Lines("package main", "", "import \"fmt\"", "", "func main() {", "\tfmt.Println(\"hello\")", "\tfmt.Println(\"world\")", "}"),
		}},
		{Author: u2n, Email: u2e, Files: map[string]string{
			"main.go": testutil.Lines("package main", "", "import \"fmt\"", "func main() {", "\tfmt.Println(\"hello world\")", "}"),
		}},
	})
	defer test.Remove()
	got := test.Run(nil)

	want := []churn.Record{
		{
			Commit:          test.SHAs[0],
			Filepath:        "main.go",
			Author:          u1n,
			TotalChurn:      8,
			LinesAdded:      8,
			AuthorsAffected: []string{},
		},
		{
			Commit:            test.SHAs[1],
			Filepath:          "main.go",
			Author:            u2n,
			TotalChurn:        4,
			LinesAdded:        1,
			LinesDeleted:      3,
			LinesDeletedOther: 3,
			NumDevsAffected:   1,
			AuthorsAffected:   []string{u1n},
		},
	}
	assertResult(t, want, got)
}

func TestFilesOutsideFilterAreSkipped(t *testing.T) {
	test := NewTest(t, []testutil.Commit{
		{Author: u1n, Email: u1e, Files: map[string]string{
			"main.go":   testutil.Lines("package main"),
			"README.md": testutil.Lines("readme"),
		}},
		{Author: u2n, Email: u2e, Files: map[string]string{
			"README.md": testutil.Lines("new readme"),
		}},
	})
	defer test.Remove()
	got := test.Run(nil)

	want := []churn.Record{
		{
			Commit:          test.SHAs[0],
			Filepath:        "main.go",
			Author:          u1n,
			TotalChurn:      1,
			LinesAdded:      1,
			AuthorsAffected: []string{},
		},
	}
	assertResult(t, want, got)
}
