// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/model"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

// ErrMissingField is returned when a required label column is absent or empty
var ErrMissingField = errors.New("missing required field")

// FieldError names the field that failed cleaning
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// RowCleaner normalizes raw label rows before decoding
type RowCleaner struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewRowCleaner creates a new RowCleaner
func NewRowCleaner(logger *zap.Logger) *RowCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RowCleaner{
		logger: logger,
		now:    time.Now,
	}
}

// CleanRows cleans every row of a partition, stopping at the first bad row.
// The returned index identifies the failing row.
func (c *RowCleaner) CleanRows(
	partition string,
	rows []source.Row,
) ([]model.LabelRow, []model.CleaningOperation, int, error) {
	cleaned := make([]model.LabelRow, 0, len(rows))
	var allOperations []model.CleaningOperation

	for i, row := range rows {
		labelRow, operations, err := c.CleanRow(partition, i, row)
		if err != nil {
			return nil, nil, i, err
		}
		cleaned = append(cleaned, labelRow)
		allOperations = append(allOperations, operations...)
	}

	if len(allOperations) > 0 {
		c.logger.Debug("Cleaned label rows",
			zap.String("partition", partition),
			zap.Int("rows", len(rows)),
			zap.Int("operations", len(allOperations)))
	}

	return cleaned, allOperations, -1, nil
}

// CleanRow validates a single row and returns its cleaned form together with
// a record of every value that was changed
func (c *RowCleaner) CleanRow(
	partition string,
	index int,
	row source.Row,
) (model.LabelRow, []model.CleaningOperation, error) {
	rawID, err := requireField(row, source.ColumnImageID)
	if err != nil {
		return model.LabelRow{}, nil, err
	}
	rawCode, err := requireField(row, source.ColumnIRMACode)
	if err != nil {
		return model.LabelRow{}, nil, err
	}

	if rawID == "" {
		return model.LabelRow{}, nil, &FieldError{Field: source.ColumnImageID, Err: ErrMissingField}
	}

	code, op := stripCodeSeparators(rawCode)
	if code == "" {
		return model.LabelRow{}, nil, &FieldError{Field: source.ColumnIRMACode, Err: ErrMissingField}
	}

	var operations []model.CleaningOperation
	if op != nil {
		operations = append(operations, c.stamp(*op, partition, index, rawID, c.now()))
	}

	return model.LabelRow{ImageID: rawID, IRMACode: code}, operations, nil
}

func (c *RowCleaner) stamp(
	op model.CleaningOperation,
	partition string,
	index int,
	imageID string,
	cleanedAt time.Time,
) model.CleaningOperation {
	op.Partition = partition
	op.SourceRow = index
	op.RowIdentifier = imageID
	op.CleanedAt = cleanedAt
	return op
}

func requireField(row source.Row, field string) (string, error) {
	value, ok := row.Get(field)
	if !ok {
		return "", &FieldError{Field: field, Err: ErrMissingField}
	}
	return value, nil
}
