// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single value normalization applied to a label row
type CleaningOperation struct {
	Partition         string    `db:"partition"`          // Source partition name
	SourceRow         int       `db:"source_row"`         // Zero-based row index in the partition
	ColumnName        string    `db:"column_name"`        // Column that was cleaned
	OriginalValue     string    `db:"original_value"`     // Value as read from the source
	NewValue          string    `db:"new_value"`          // Value after cleaning
	RowIdentifier     string    `db:"row_identifier"`     // image_id of the row
	CleaningOperation string    `db:"cleaning_operation"` // Type of cleaning performed (e.g., "separator_strip")
	CleaningReason    string    `db:"cleaning_reason"`    // Reason for cleaning (e.g., "irma_code_separators")
	CleanedAt         time.Time `db:"cleaned_at"`
}
