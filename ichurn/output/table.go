package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pinpt/ichurn/ichurn/churn"
)

const shortSHALen = 10

// Table buffers records and renders a single table with a totals footer on Close.
type Table struct {
	wr  io.Writer
	tbl table.Writer

	rows    int
	added   int
	deleted int
	self    int
	other   int
}

func NewTable(wr io.Writer) *Table {
	s := &Table{wr: wr}
	s.tbl = table.NewWriter()
	s.tbl.SetStyle(table.StyleLight)
	s.tbl.Style().Format.Footer = text.FormatDefault
	s.tbl.AppendHeader(table.Row{"Commit", "File", "Author", "Added", "Deleted", "Self", "Other", "Affected"})
	return s
}

func (s *Table) Write(rec churn.Record) error {
	sha := rec.Commit
	if len(sha) > shortSHALen {
		sha = sha[:shortSHALen]
	}
	s.tbl.AppendRow(table.Row{
		sha,
		rec.Filepath,
		rec.Author,
		rec.LinesAdded,
		rec.LinesDeleted,
		rec.LinesDeletedSelf,
		rec.LinesDeletedOther,
		strings.Join(rec.AuthorsAffected, ", "),
	})
	s.rows++
	s.added += rec.LinesAdded
	s.deleted += rec.LinesDeleted
	s.self += rec.LinesDeletedSelf
	s.other += rec.LinesDeletedOther
	return nil
}

func (s *Table) Close() error {
	s.tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %v records", humanize.Comma(int64(s.rows))),
		"",
		"",
		humanize.Comma(int64(s.added)),
		humanize.Comma(int64(s.deleted)),
		humanize.Comma(int64(s.self)),
		humanize.Comma(int64(s.other)),
		"",
	})
	_, err := fmt.Fprintln(s.wr, s.tbl.Render())
	return err
}
