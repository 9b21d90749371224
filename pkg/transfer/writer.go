// pkg/transfer/writer.go
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/connector"
	"github.com/David-Botos/irma-ingress/pkg/converter"
	"github.com/David-Botos/irma-ingress/pkg/model"
)

const defaultBatchSize = 1000

// NamedExecer runs a named statement. *sqlx.Tx satisfies it.
type NamedExecer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// DatasetWriter persists a loaded dataset to PostgreSQL. Each Write is one
// load, identified by a fresh UUID, and commits all of its rows or none.
type DatasetWriter struct {
	postgres  connector.DatabaseConnector
	db        *sqlx.DB
	converter *converter.RecordConverter
	verifier  *Verifier
	metrics   *TransferMetrics
	schema    string
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDatasetWriter creates a writer for the given schema
func NewDatasetWriter(postgres connector.DatabaseConnector, schema string, logger *zap.Logger) *DatasetWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("dataset-writer")

	db := sqlx.NewDb(postgres.DB(), connector.PostgresDriver)
	return &DatasetWriter{
		postgres:  postgres,
		db:        db,
		converter: converter.NewRecordConverter(logger),
		verifier:  NewVerifier(db, logger),
		schema:    schema,
		batchSize: defaultBatchSize,
		timeout:   time.Minute,
		logger:    logger,
	}
}

// WithBatchSize sets the number of rows per insert statement
func (w *DatasetWriter) WithBatchSize(batchSize int) *DatasetWriter {
	w.batchSize = batchSize
	return w
}

// WithMetrics attaches transfer metrics
func (w *DatasetWriter) WithMetrics(metrics *TransferMetrics) *DatasetWriter {
	w.metrics = metrics
	return w
}

// WithTimeout sets the timeout for DDL statements
func (w *DatasetWriter) WithTimeout(timeout time.Duration) *DatasetWriter {
	w.timeout = timeout
	return w
}

// Write stores every record and cleaning operation of ds under a new load id
// and verifies the stored record count
func (w *DatasetWriter) Write(ctx context.Context, ds *model.Dataset) (*TransferResult, error) {
	if ds == nil {
		return nil, errors.New("dataset cannot be nil")
	}

	result := NewTransferResult(uuid.New(), w.schema)
	records := model.RecordTableMetadata(w.schema)
	cleaning := model.CleaningTableMetadata(w.schema)

	w.logger.Info("Writing dataset",
		zap.String("load_id", result.LoadID.String()),
		zap.String("schema", w.schema),
		zap.Int("records", ds.Len()),
		zap.Int("cleaning_operations", len(ds.CleaningOperations)))

	if err := w.prepareTables(ctx, records, cleaning); err != nil {
		w.metrics.observeFailure("prepare")
		result.Complete(false)
		return result, err
	}

	if err := w.insert(ctx, result, records, cleaning, ds); err != nil {
		w.metrics.observeFailure("insert")
		w.logger.Error("Dataset write rolled back",
			zap.String("load_id", result.LoadID.String()),
			zap.Bool("retryable", IsRetryableError(err)),
			zap.Error(err))
		result.Complete(false)
		return result, err
	}

	count, err := w.verifier.VerifyRowCount(ctx, records, result.LoadID, int64(ds.Len()))
	result.VerifiedCount = count
	if err != nil {
		w.metrics.observeFailure("verify")
		result.Complete(false)
		return result, WrapError(err, "verification failed")
	}

	result.Complete(true)
	w.metrics.observeSuccess(result.EndTime)
	w.logger.Info("Dataset written",
		zap.String("load_id", result.LoadID.String()),
		zap.Int64("records", result.RecordsWritten),
		zap.Int64("cleaning_operations", result.CleaningOperations),
		zap.Int("batches", result.Batches),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (w *DatasetWriter) prepareTables(ctx context.Context, records, cleaning *model.TableMetadata) error {
	if err := w.converter.CheckBindings(records, recordRow{}); err != nil {
		return err
	}
	if err := w.converter.CheckBindings(cleaning, cleaningRow{}); err != nil {
		return err
	}

	for _, metadata := range []*model.TableMetadata{records, cleaning} {
		exists, err := w.tableExists(ctx, metadata)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := w.createTable(ctx, metadata); err != nil {
			return err
		}
	}
	return nil
}

func (w *DatasetWriter) tableExists(ctx context.Context, metadata *model.TableMetadata) (bool, error) {
	var exists bool
	err := w.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		metadata.Schema, metadata.Table)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", metadata.Table, err)
	}
	return exists, nil
}

// createTable creates the target table in PostgreSQL if it doesn't exist
func (w *DatasetWriter) createTable(ctx context.Context, metadata *model.TableMetadata) error {
	query, err := w.converter.CreateTableStatement(metadata)
	if err != nil {
		return err
	}

	if _, err := w.postgres.ExecWithTimeout(ctx, query, w.timeout); err != nil {
		return fmt.Errorf("failed to create target table: %w", err)
	}

	w.logger.Info("Created target table",
		zap.String("schema", metadata.Schema),
		zap.String("table", metadata.Table))
	return nil
}

func (w *DatasetWriter) insert(
	ctx context.Context,
	result *TransferResult,
	records, cleaning *model.TableMetadata,
	ds *model.Dataset,
) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				w.logger.Warn("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	n, batchCount, err := insertBatches(ctx, tx, w.converter.InsertStatement(records),
		recordRows(result.LoadID, ds), batchRows(w.batchSize, len(records.Columns)),
		w.batchObserver(records.Table))
	if err != nil {
		return WrapError(err, "failed to insert records")
	}
	result.RecordsWritten = n
	result.Batches += batchCount

	n, batchCount, err = insertBatches(ctx, tx, w.converter.InsertStatement(cleaning),
		cleaningRows(result.LoadID, ds), batchRows(w.batchSize, len(cleaning.Columns)),
		w.batchObserver(cleaning.Table))
	if err != nil {
		return WrapError(err, "failed to insert cleaning operations")
	}
	result.CleaningOperations = n
	result.Batches += batchCount

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (w *DatasetWriter) batchObserver(table string) func(int64, time.Duration) {
	return func(rows int64, d time.Duration) {
		w.metrics.observeBatch(table, rows, d)
		w.logger.Debug("Inserted batch",
			zap.String("table", table),
			zap.Int64("rows", rows),
			zap.Duration("duration", d))
	}
}

// insertBatches runs query once per batch, binding the batch as a slice so
// sqlx expands it into a multi-row insert
func insertBatches[T any](
	ctx context.Context,
	exec NamedExecer,
	query string,
	rows []T,
	size int,
	observe func(int64, time.Duration),
) (int64, int, error) {
	var inserted int64
	chunks := batches(rows, size)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return inserted, i, err
		}

		start := time.Now()
		res, err := exec.NamedExecContext(ctx, query, chunk)
		if err != nil {
			return inserted, i, fmt.Errorf("batch %d: %w", i, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			affected = int64(len(chunk))
		}
		inserted += affected
		if observe != nil {
			observe(affected, time.Since(start))
		}
	}
	return inserted, len(chunks), nil
}
