package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// Record is one CSV row keyed by header column. Header names are trimmed and
// lower-cased; values are trimmed.
type Record map[string]string

// Get returns the value for a column, matching the column name case-insensitively.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[strings.ToLower(strings.TrimSpace(column))]
	return v, ok
}

// ReadRecords reads a headed CSV document into records. The first row is the
// header; short rows leave the missing columns unset.
func ReadRecords(ctx context.Context, r io.Reader, opts CSVOptions) ([]Record, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	for i, h := range header {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		h = strings.TrimPrefix(h, "\uFEFF")
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []Record
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		rec := make(Record, len(header))
		for i, field := range row {
			if i >= len(header) {
				break
			}
			rec[header[i]] = strings.TrimSpace(field)
		}
		records = append(records, rec)
	}
}
