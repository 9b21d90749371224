package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/David-Botos/irma-ingress/pkg/model"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

// ExportCSV writes the dataset with its stable column names followed by the
// partition column, using the same delimiter as the label files
func ExportCSV(w io.Writer, ds *model.Dataset) error {
	writer := csv.NewWriter(w)
	writer.Comma = source.DefaultDelimiter

	header := append(append([]string{}, model.RecordFields...), model.FieldPartition)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range ds.Records {
		if err := writer.Write(append(r.Values(), r.Partition)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSVFile writes the dataset to path, creating parent directories
func ExportCSVFile(path string, ds *model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := ExportCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
