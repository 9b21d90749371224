// pkg/converter/converter.go
package converter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/model"
)

// RecordConverter turns table metadata into PostgreSQL statements and checks
// that row structs bind every column
type RecordConverter struct {
	logger *zap.Logger
	mapper *reflectx.Mapper
}

// NewRecordConverter creates a converter that resolves `db` struct tags the
// same way sqlx does
func NewRecordConverter(logger *zap.Logger) *RecordConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordConverter{
		logger: logger,
		mapper: reflectx.NewMapperFunc("db", strings.ToLower),
	}
}

// QualifiedName returns the quoted schema.table name
func QualifiedName(metadata *model.TableMetadata) string {
	if metadata.Schema == "" {
		return pq.QuoteIdentifier(metadata.Table)
	}
	return pq.QuoteIdentifier(metadata.Schema) + "." + pq.QuoteIdentifier(metadata.Table)
}

// GenerateColumnDefinitions creates PostgreSQL column definitions
func (c *RecordConverter) GenerateColumnDefinitions(metadata *model.TableMetadata) ([]string, error) {
	if len(metadata.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", metadata.Table)
	}

	definitions := make([]string, 0, len(metadata.Columns))
	for _, col := range metadata.Columns {
		if col.PgType == "" {
			return nil, fmt.Errorf("column %s.%s has no type", metadata.Table, col.Name)
		}

		nullability := "NULL"
		if col.IsPrimaryKey || !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			pq.QuoteIdentifier(col.Name), col.PgType, nullability))
	}

	return definitions, nil
}

// CreateTableStatement builds an idempotent CREATE TABLE statement
func (c *RecordConverter) CreateTableStatement(metadata *model.TableMetadata) (string, error) {
	definitions, err := c.GenerateColumnDefinitions(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to generate column definitions: %w", err)
	}

	if len(metadata.PrimaryKeys) > 0 {
		keys := make([]string, len(metadata.PrimaryKeys))
		for i, pk := range metadata.PrimaryKeys {
			if metadata.GetColumnByName(pk) == nil {
				return "", fmt.Errorf("primary key %s is not a column of %s", pk, metadata.Table)
			}
			keys[i] = pq.QuoteIdentifier(pk)
		}
		definitions = append(definitions, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		QualifiedName(metadata), strings.Join(definitions, ", ")), nil
}

// InsertStatement builds a named INSERT for sqlx. Binding a slice of structs
// to it expands into a multi-row insert.
func (c *RecordConverter) InsertStatement(metadata *model.TableMetadata) string {
	columns := make([]string, len(metadata.Columns))
	params := make([]string, len(metadata.Columns))
	for i, col := range metadata.Columns {
		columns[i] = pq.QuoteIdentifier(col.Name)
		params[i] = ":" + col.Name
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QualifiedName(metadata), strings.Join(columns, ", "), strings.Join(params, ", "))
}

// CheckBindings verifies that every column of metadata resolves to a field of
// row, including fields of embedded structs
func (c *RecordConverter) CheckBindings(metadata *model.TableMetadata, row interface{}) error {
	rt := reflect.TypeOf(row)
	if rt == nil {
		return fmt.Errorf("row type is nil")
	}
	t := reflectx.Deref(rt)
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("row type %T is not a struct", row)
	}

	fields := c.mapper.TypeMap(t)
	var missing []string
	for _, col := range metadata.Columns {
		if fields.GetByPath(col.Name) == nil {
			missing = append(missing, col.Name)
		}
	}

	if len(missing) > 0 {
		c.logger.Warn("Row type does not bind all columns",
			zap.String("table", metadata.Table),
			zap.String("type", t.String()),
			zap.Strings("missing", missing))
		return fmt.Errorf("%s does not bind columns of %s: %s", t, metadata.Table, strings.Join(missing, ", "))
	}

	return nil
}
