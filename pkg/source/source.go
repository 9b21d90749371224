// Package source reads label tables as rows of named fields, independent of
// where the table lives.
package source

import (
	"context"
	"strings"
)

// Label source columns
const (
	ColumnImageID  = "image_id"
	ColumnIRMACode = "irma_code"
)

// Row is one label table row keyed by column name
type Row map[string]string

// Get returns a field value and whether the field is present
func (r Row) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// RowSource yields the rows of one label table in source order
type RowSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// Rows reads every row of the table
	Rows(ctx context.Context) ([]Row, error)
}

// StaticSource serves rows already held in memory
type StaticSource struct {
	name string
	rows []Row
}

// NewStaticSource creates a source over the given rows
func NewStaticSource(name string, rows []Row) *StaticSource {
	return &StaticSource{name: name, rows: rows}
}

// Name returns the source name
func (s *StaticSource) Name() string {
	return s.name
}

// Rows returns a copy of the rows
func (s *StaticSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}
