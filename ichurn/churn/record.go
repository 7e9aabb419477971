package churn

import (
	"fmt"
	"slices"
)

// Record is the churn summary for one (revision, file) pair.
type Record struct {
	Commit            string   `json:"commit" db:"commit_sha"`
	Filepath          string   `json:"filepath" db:"filepath"`
	Author            string   `json:"author" db:"author"`
	TotalChurn        int      `json:"total_churn" db:"total_churn"`
	LinesAdded        int      `json:"lines_added" db:"lines_added"`
	LinesDeleted      int      `json:"lines_deleted" db:"lines_deleted"`
	LinesDeletedSelf  int      `json:"lines_deleted_self" db:"lines_deleted_self"`
	LinesDeletedOther int      `json:"lines_deleted_other" db:"lines_deleted_other"`
	NumDevsAffected   int      `json:"num_devs_affected" db:"num_devs_affected"`
	AuthorsAffected   []string `json:"authors_affected" db:"-"`
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	if r.LinesAdded < 0 || r.LinesDeleted < 0 {
		return fmt.Errorf("negative line counts added=%v deleted=%v", r.LinesAdded, r.LinesDeleted)
	}
	if r.TotalChurn != r.LinesAdded+r.LinesDeleted {
		return fmt.Errorf("total_churn %v != lines_added %v + lines_deleted %v", r.TotalChurn, r.LinesAdded, r.LinesDeleted)
	}
	if r.LinesDeletedSelf+r.LinesDeletedOther != r.LinesDeleted {
		return fmt.Errorf("lines_deleted_self %v + lines_deleted_other %v != lines_deleted %v", r.LinesDeletedSelf, r.LinesDeletedOther, r.LinesDeleted)
	}
	if r.NumDevsAffected != len(r.AuthorsAffected) {
		return fmt.Errorf("num_devs_affected %v != len(authors_affected) %v", r.NumDevsAffected, len(r.AuthorsAffected))
	}
	if r.Author != "" && slices.Contains(r.AuthorsAffected, r.Author) {
		return fmt.Errorf("acting author %q listed in authors_affected", r.Author)
	}
	return nil
}
