package source

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConnector struct{}

func (stubConnector) DB() *sql.DB                    { return nil }
func (stubConnector) Validate(context.Context) error { return nil }
func (stubConnector) Close() error                   { return nil }
func (stubConnector) ExecWithTimeout(context.Context, string, time.Duration, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func TestNewSnowflakeSource(t *testing.T) {
	tests := []struct {
		table   string
		wantErr bool
	}{
		{table: "IRMA_TRAIN_CODES"},
		{table: "IMAGECLEF.LABELS.IRMA_TRAIN_CODES"},
		{table: "labels.irma$test"},
		{table: "a.b.c.d", wantErr: true},
		{table: "codes; DROP TABLE codes", wantErr: true},
		{table: "", wantErr: true},
		{table: "1codes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			src, err := NewSnowflakeSource(stubConnector{}, tt.table, 0, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, src.Name())
			assert.Equal(t, 5*time.Minute, src.timeout)
		})
	}

	_, err := NewSnowflakeSource(nil, "CODES", time.Second, nil)
	assert.Error(t, err)
}

func TestSnowflakeSourceQuery(t *testing.T) {
	src, err := NewSnowflakeSource(stubConnector{}, "LABELS.TRAIN_CODES", time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT IMAGE_ID, IRMA_CODE FROM LABELS.TRAIN_CODES", src.Query())
}
