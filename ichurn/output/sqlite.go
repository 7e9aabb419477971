package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pinpt/ichurn/ichurn/churn"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS churn_records (
	run_id TEXT NOT NULL,
	commit_sha TEXT NOT NULL,
	filepath TEXT NOT NULL,
	author TEXT,
	total_churn INTEGER NOT NULL,
	lines_added INTEGER NOT NULL,
	lines_deleted INTEGER NOT NULL,
	lines_deleted_self INTEGER NOT NULL,
	lines_deleted_other INTEGER NOT NULL,
	num_devs_affected INTEGER NOT NULL,
	authors_affected TEXT,
	PRIMARY KEY (run_id, commit_sha, filepath)
);

CREATE INDEX IF NOT EXISTS idx_churn_records_commit ON churn_records(commit_sha);
`

type sqliteRow struct {
	RunID string `db:"run_id"`
	churn.Record
	Authors string `db:"authors_affected"`
}

// SQLite stores records in the churn_records table. Every opened writer gets a new run id
// so repeated runs over the same revisions can coexist.
type SQLite struct {
	db    *sqlx.DB
	runID string
}

func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db, runID: uuid.NewString()}, nil
}

func (s *SQLite) RunID() string {
	return s.runID
}

func (s *SQLite) Write(rec churn.Record) error {
	row := sqliteRow{RunID: s.runID, Record: rec, Authors: strings.Join(rec.AuthorsAffected, "\n")}
	_, err := s.db.NamedExec(`INSERT INTO churn_records (
		run_id, commit_sha, filepath, author, total_churn, lines_added, lines_deleted,
		lines_deleted_self, lines_deleted_other, num_devs_affected, authors_affected
	) VALUES (
		:run_id, :commit_sha, :filepath, :author, :total_churn, :lines_added, :lines_deleted,
		:lines_deleted_self, :lines_deleted_other, :num_devs_affected, :authors_affected
	)`, row)
	if err != nil {
		return fmt.Errorf("insert churn record %v %v: %w", rec.Commit, rec.Filepath, err)
	}
	return nil
}

// Records returns the records stored for runID ordered by insertion.
func (s *SQLite) Records(ctx context.Context, runID string) ([]churn.Record, error) {
	var rows []sqliteRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM churn_records WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	res := make([]churn.Record, 0, len(rows))
	for _, r := range rows {
		rec := r.Record
		rec.AuthorsAffected = []string{}
		if r.Authors != "" {
			rec.AuthorsAffected = strings.Split(r.Authors, "\n")
		}
		res = append(res, rec)
	}
	return res, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
