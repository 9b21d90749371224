// pkg/transfer/rows.go
package transfer

import (
	"github.com/google/uuid"

	"github.com/David-Botos/irma-ingress/pkg/model"
)

// PostgreSQL accepts at most this many bind parameters per statement
const maxBindParams = 65535

type recordRow struct {
	LoadID   uuid.UUID `db:"load_id"`
	Position int       `db:"position"` // Index in the merged dataset
	model.Record
}

type cleaningRow struct {
	LoadID uuid.UUID `db:"load_id"`
	model.CleaningOperation
}

func recordRows(loadID uuid.UUID, ds *model.Dataset) []recordRow {
	rows := make([]recordRow, len(ds.Records))
	for i, r := range ds.Records {
		rows[i] = recordRow{LoadID: loadID, Position: i, Record: r}
	}
	return rows
}

func cleaningRows(loadID uuid.UUID, ds *model.Dataset) []cleaningRow {
	rows := make([]cleaningRow, len(ds.CleaningOperations))
	for i, op := range ds.CleaningOperations {
		rows[i] = cleaningRow{LoadID: loadID, CleaningOperation: op}
	}
	return rows
}

// batchRows caps the requested batch size so one multi-row insert stays
// within the bind parameter limit
func batchRows(requested, columns int) int {
	if columns <= 0 {
		return requested
	}
	limit := maxBindParams / columns
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

func batches[T any](rows []T, size int) [][]T {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(rows)
	}

	out := make([][]T, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
