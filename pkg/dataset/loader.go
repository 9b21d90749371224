// Package dataset builds the merged IRMA dataset from its label partitions
// and loads the referenced images.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/cleaner"
	"github.com/David-Botos/irma-ingress/pkg/irma"
	"github.com/David-Botos/irma-ingress/pkg/model"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

// Partition names
const (
	PartitionTrain = "train"
	PartitionTest  = "test"
)

// Partition is one label table together with the directory holding its images
type Partition struct {
	Name      string
	Source    source.RowSource
	ImageRoot string
}

// ImagePath returns "{imageRoot}/{imageID}.png"
func ImagePath(imageRoot, imageID string) string {
	return fmt.Sprintf("%s/%s.png", imageRoot, imageID)
}

// Loader reads, cleans and decodes label partitions into a Dataset
type Loader struct {
	cleaner *cleaner.RowCleaner
	metrics *LoadMetrics
	logger  *zap.Logger
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(logger *zap.Logger, metrics *LoadMetrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cleaner: cleaner.NewRowCleaner(logger.Named("cleaner")),
		metrics: metrics,
		logger:  logger,
	}
}

// Load builds the dataset from the train partition followed by the test
// partition. Any malformed row fails the whole load.
func (l *Loader) Load(ctx context.Context, train, test Partition) (*model.Dataset, error) {
	return l.LoadPartitions(ctx, train, test)
}

// LoadPartitions concatenates any number of partitions in the given order
func (l *Loader) LoadPartitions(ctx context.Context, partitions ...Partition) (*model.Dataset, error) {
	start := time.Now()
	ds := &model.Dataset{}

	for _, p := range partitions {
		records, ops, err := l.loadPartition(ctx, p)
		if err != nil {
			l.metrics.observeFailure(p.Name)
			return nil, err
		}

		ds.Append(model.PartitionInfo{
			Name:      p.Name,
			Source:    p.Source.Name(),
			ImageRoot: p.ImageRoot,
		}, records, ops)

		l.logger.Info("Loaded partition",
			zap.String("partition", p.Name),
			zap.String("source", p.Source.Name()),
			zap.Int("records", len(records)),
			zap.Int("cleaningOperations", len(ops)))
	}

	l.metrics.observeLoad(ds, time.Since(start))
	l.logger.Info("Loaded dataset",
		zap.Int("records", ds.Len()),
		zap.Int("partitions", len(ds.Partitions)),
		zap.Duration("duration", time.Since(start)))

	return ds, nil
}

func (l *Loader) loadPartition(ctx context.Context, p Partition) ([]model.Record, []model.CleaningOperation, error) {
	if p.Source == nil {
		return nil, nil, fmt.Errorf("partition %s has no label source", p.Name)
	}

	rows, err := p.Source.Rows(ctx)
	if err != nil {
		var rowErr *source.RowError
		if errors.As(err, &rowErr) {
			return nil, nil, &MalformedRecordError{Partition: p.Name, Row: rowErr.Row, Err: err}
		}
		return nil, nil, fmt.Errorf("failed to read %s labels from %s: %w", p.Name, p.Source.Name(), err)
	}

	labelRows, ops, index, err := l.cleaner.CleanRows(p.Name, rows)
	if err != nil {
		field := ""
		var fieldErr *cleaner.FieldError
		if errors.As(err, &fieldErr) {
			field = fieldErr.Field
		}
		return nil, nil, &MalformedRecordError{Partition: p.Name, Row: index, Field: field, Err: err}
	}

	records := make([]model.Record, 0, len(labelRows))
	for i, row := range labelRows {
		record, err := decodeRow(row, p, i)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	return records, ops, nil
}

func decodeRow(row model.LabelRow, p Partition, index int) (model.Record, error) {
	c, err := irma.Decode(row.IRMACode)
	if err != nil {
		return model.Record{}, &MalformedRecordError{
			Partition: p.Name,
			Row:       index,
			Field:     source.ColumnIRMACode,
			Err:       err,
		}
	}
	return model.NewRecord(row, ImagePath(p.ImageRoot, row.ImageID), p.Name, index, c), nil
}
