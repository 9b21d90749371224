// pkg/transfer/job.go
package transfer

import (
	"time"

	"github.com/google/uuid"
)

// TransferResult represents the outcome of writing one dataset load
type TransferResult struct {
	LoadID             uuid.UUID
	Schema             string
	Success            bool
	RecordsWritten     int64
	CleaningOperations int64
	Batches            int
	VerifiedCount      int64
	Warnings           []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewTransferResult initializes a result for a new load
func NewTransferResult(loadID uuid.UUID, schema string) *TransferResult {
	return &TransferResult{
		LoadID:    loadID,
		Schema:    schema,
		StartTime: time.Now(),
		Warnings:  make([]string, 0),
	}
}

// Complete marks the transfer as complete and calculates duration
func (r *TransferResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddWarning adds a warning to the result
func (r *TransferResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}
