package output

import (
	"encoding/json"
	"io"

	"github.com/pinpt/ichurn/ichurn/churn"
)

// JSONL writes one JSON object per line.
type JSONL struct {
	enc *json.Encoder
}

func NewJSONL(wr io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(wr)}
}

func (s *JSONL) Write(rec churn.Record) error {
	if rec.AuthorsAffected == nil {
		rec.AuthorsAffected = []string{}
	}
	return s.enc.Encode(rec)
}

func (s *JSONL) Close() error {
	return nil
}
