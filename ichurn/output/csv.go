package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pinpt/ichurn/ichurn/churn"
)

var csvHeader = []string{
	"commit",
	"filepath",
	"author",
	"total_churn",
	"lines_added",
	"lines_deleted",
	"lines_deleted_self",
	"lines_deleted_other",
	"num_devs_affected",
	"authors_affected",
}

// CSV writes a header row followed by one row per record. Affected authors are joined
// with ";".
type CSV struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSV(wr io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(wr)}
}

func (s *CSV) Write(rec churn.Record) error {
	if !s.wroteHeader {
		if err := s.w.Write(csvHeader); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	return s.w.Write([]string{
		rec.Commit,
		rec.Filepath,
		rec.Author,
		strconv.Itoa(rec.TotalChurn),
		strconv.Itoa(rec.LinesAdded),
		strconv.Itoa(rec.LinesDeleted),
		strconv.Itoa(rec.LinesDeletedSelf),
		strconv.Itoa(rec.LinesDeletedOther),
		strconv.Itoa(rec.NumDevsAffected),
		strings.Join(rec.AuthorsAffected, ";"),
	})
}

func (s *CSV) Close() error {
	s.w.Flush()
	return s.w.Error()
}
