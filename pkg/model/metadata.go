// pkg/model/metadata.go
package model

import "strings"

// Table names used when a dataset is persisted
const (
	RecordsTable  = "irma_records"
	CleaningTable = "cleaned_on_ingress"
)

// TableMetadata contains the structure information for a database table
type TableMetadata struct {
	Schema      string   // Schema name
	Table       string   // Table name
	Columns     []Column // Column definitions
	PrimaryKeys []string // List of primary key column names
}

// Column represents metadata about a database column
type Column struct {
	Name         string // Column name, matches the db tag of the stored struct
	PgType       string // PostgreSQL type
	Nullable     bool   // Whether column allows NULL values
	IsPrimaryKey bool   // Whether column is part of primary key
}

// RecordTableMetadata describes the table dataset records are written to.
// Rows are keyed by load, partition and source row so repeated loads of the
// same files do not collide.
func RecordTableMetadata(schema string) *TableMetadata {
	return &TableMetadata{
		Schema: schema,
		Table:  RecordsTable,
		Columns: []Column{
			{Name: "load_id", PgType: "UUID", IsPrimaryKey: true},
			{Name: "partition", PgType: "VARCHAR(16)", IsPrimaryKey: true},
			{Name: "source_row", PgType: "INTEGER", IsPrimaryKey: true},
			{Name: "position", PgType: "INTEGER"},
			{Name: "image_id", PgType: "VARCHAR(100)"},
			{Name: "irma_code", PgType: "VARCHAR(50)"},
			{Name: "path", PgType: "TEXT"},
			{Name: "technical_code", PgType: "VARCHAR(4)"},
			{Name: "imaging_modality", PgType: "VARCHAR(100)"},
			{Name: "directional_code", PgType: "VARCHAR(3)"},
			{Name: "imaging_orientation", PgType: "VARCHAR(100)"},
			{Name: "anatomical_code", PgType: "VARCHAR(3)"},
			{Name: "body_region", PgType: "VARCHAR(100)"},
			{Name: "central_or_extremity", PgType: "VARCHAR(16)"},
			{Name: "binary_label", PgType: "SMALLINT"},
		},
		PrimaryKeys: []string{"load_id", "partition", "source_row"},
	}
}

// CleaningTableMetadata describes the cleaning audit table
func CleaningTableMetadata(schema string) *TableMetadata {
	return &TableMetadata{
		Schema: schema,
		Table:  CleaningTable,
		Columns: []Column{
			{Name: "load_id", PgType: "UUID"},
			{Name: "partition", PgType: "VARCHAR(16)"},
			{Name: "source_row", PgType: "INTEGER"},
			{Name: "column_name", PgType: "TEXT"},
			{Name: "original_value", PgType: "TEXT", Nullable: true},
			{Name: "new_value", PgType: "TEXT"},
			{Name: "row_identifier", PgType: "TEXT"},
			{Name: "cleaning_operation", PgType: "TEXT"},
			{Name: "cleaning_reason", PgType: "TEXT"},
			{Name: "cleaned_at", PgType: "TIMESTAMP WITH TIME ZONE"},
		},
	}
}

// ColumnNames returns the column names in definition order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
