// Package output writes churn records in the supported formats.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/pinpt/ichurn/ichurn/churn"
)

// Writer receives records one at a time. Close flushes buffered output. Writers are not
// safe for concurrent use.
type Writer interface {
	Write(rec churn.Record) error
	Close() error
}

type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

var Formats = []Format{FormatJSONL, FormatCSV, FormatTable}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSONL:
		return FormatJSONL, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q, expecting one of %v", s, Formats)
}

// New returns a stream writer for format.
func New(format Format, wr io.Writer) (Writer, error) {
	switch format {
	case "", FormatJSONL:
		return NewJSONL(wr), nil
	case FormatCSV:
		return NewCSV(wr), nil
	case FormatTable:
		return NewTable(wr), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Multi writes every record to all writers.
type Multi []Writer

func (s Multi) Write(rec churn.Record) error {
	for _, w := range s {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all writers, returning the joined errors.
func (s Multi) Close() error {
	var errs []error
	for _, w := range s {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
