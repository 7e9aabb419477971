package e2etests

import (
	"testing"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/pkg/testutil"
)

func TestDeletedFiles(t *testing.T) {
	test := NewTest(t, []testutil.Commit{
		{Author: u1n, Email: u1e, Files: map[string]string{
			"a.go": testutil.Lines("package a", "", "func A() {", "}"),
			"b.go": testutil.Lines("package a", "var B = 1"),
		}},
		{Author: u1n, Email: u1e, Delete: []string{"a.go"}},
		{Author: u2n, Email: u2e, Delete: []string{"b.go"}},
	})
	defer test.Remove()
	got := test.Run(test.SHAs[1:])

	want := []churn.Record{
		{
			Commit:           test.SHAs[1],
			Filepath:         "a.go",
			Author:           u1n,
			TotalChurn:       4,
			LinesDeleted:     4,
			LinesDeletedSelf: 4,
			AuthorsAffected:  []string{},
		},
		{
			Commit:            test.SHAs[2],
			Filepath:          "b.go",
			Author:            u2n,
			TotalChurn:        2,
			LinesDeleted:      2,
			LinesDeletedOther: 2,
			NumDevsAffected:   1,
			AuthorsAffected:   []string{u1n},
		},
	}
	assertResult(t, want, got)
}
