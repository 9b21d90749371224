package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultDelimiter is the field delimiter of the ImageCLEFmed label files
const DefaultDelimiter = ';'

// CSVSource reads a delimited label file whose first line is the header
type CSVSource struct {
	path      string
	delimiter rune
}

// NewCSVSource creates a source for the file at path. A zero delimiter
// selects DefaultDelimiter.
func NewCSVSource(path string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &CSVSource{path: path, delimiter: delimiter}
}

// Name returns the file path
func (s *CSVSource) Name() string {
	return s.path
}

// Rows reads and parses the whole file
func (s *CSVSource) Rows(ctx context.Context) ([]Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	return ReadDelimited(ctx, f, s.delimiter)
}

// RowError reports a data row the reader could not parse. Row is zero-based
// and does not count the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("failed to parse row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadDelimited parses a delimited table from r. Values are returned as read.
// Rows shorter than the header simply lack the trailing fields; callers decide
// whether that is an error.
func ReadDelimited(ctx context.Context, r io.Reader, delimiter rune) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("label table has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	for i := range header {
		header[i] = normalizeHeader(header[i])
	}

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Row: len(rows), Err: err}
		}

		row := make(Row, len(header))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}
