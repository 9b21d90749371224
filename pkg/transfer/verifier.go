// pkg/transfer/verifier.go
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/converter"
	"github.com/David-Botos/irma-ingress/pkg/model"
)

// Getter runs a query expected to return a single row. *sqlx.DB and *sqlx.Tx
// satisfy it.
type Getter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Verifier checks that a load was stored completely
type Verifier struct {
	db      Getter
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(db Getter, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		db:      db,
		logger:  logger,
		timeout: time.Minute * 5,
	}
}

// WithTimeout sets a custom timeout for verification operations
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// CountQuery returns the statement counting the rows of one load
func CountQuery(metadata *model.TableMetadata) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE load_id = $1", converter.QualifiedName(metadata))
}

// VerifyRowCount counts the rows stored for loadID and compares them with
// expected. A difference is reported as ErrRowCountMismatch.
func (v *Verifier) VerifyRowCount(
	ctx context.Context,
	metadata *model.TableMetadata,
	loadID uuid.UUID,
	expected int64,
) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var count int64
	if err := v.db.GetContext(ctx, &count, CountQuery(metadata), loadID); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", metadata.Table, err)
	}

	if count != expected {
		v.logger.Warn("Row count mismatch",
			zap.String("table", metadata.Table),
			zap.String("load_id", loadID.String()),
			zap.Int64("expected", expected),
			zap.Int64("stored", count),
			zap.Int64("difference", expected-count))
		return count, fmt.Errorf("%w: %s has %d rows for load %s, expected %d",
			ErrRowCountMismatch, metadata.Table, count, loadID, expected)
	}

	v.logger.Info("Row count verification successful",
		zap.String("table", metadata.Table),
		zap.String("load_id", loadID.String()),
		zap.Int64("count", count))

	return count, nil
}
