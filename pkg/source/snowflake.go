package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/connector"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)

// SnowflakeSource reads label rows from a warehouse table with IMAGE_ID and
// IRMA_CODE columns
type SnowflakeSource struct {
	conn    connector.DatabaseConnector
	table   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSnowflakeSource creates a source for a fully qualified table name
func NewSnowflakeSource(conn connector.DatabaseConnector, table string, timeout time.Duration, logger *zap.Logger) (*SnowflakeSource, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connector cannot be nil")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnowflakeSource{
		conn:    conn,
		table:   table,
		timeout: timeout,
		logger:  logger.Named("snowflake-source"),
	}, nil
}

// Name returns the table name
func (s *SnowflakeSource) Name() string {
	return s.table
}

// Query returns the statement used to read the table
func (s *SnowflakeSource) Query() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s",
		strings.ToUpper(ColumnImageID), strings.ToUpper(ColumnIRMACode), s.table)
}

// Rows reads the whole table. NULL values are reported as missing fields.
func (s *SnowflakeSource) Rows(ctx context.Context) ([]Row, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.conn.DB().QueryContext(queryCtx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to query label table %s: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}
	for i := range columns {
		columns[i] = normalizeHeader(columns[i])
	}

	var out []Row
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(out), s.table, err)
		}

		row := make(Row, len(columns))
		for i, v := range values {
			if v.Valid {
				row[columns[i]] = v.String
			}
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", s.table, err)
	}

	s.logger.Debug("Read label table",
		zap.String("table", s.table),
		zap.Int("rows", len(out)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}
