package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/irma-ingress/pkg/cleaner"
	"github.com/David-Botos/irma-ingress/pkg/irma"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

func staticPartition(name, root string, rows ...source.Row) Partition {
	return Partition{Name: name, Source: source.NewStaticSource(name, rows), ImageRoot: root}
}

func TestLoadEndToEnd(t *testing.T) {
	train := staticPartition(PartitionTrain, "/data/train",
		source.Row{"image_id": "A", "irma_code": "1000-000-400"})
	test := staticPartition(PartitionTest, "/data/test",
		source.Row{"image_id": "B", "irma_code": "2000220900"})

	ds, err := NewLoader(nil, nil).Load(context.Background(), train, test)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	a := ds.At(0)
	assert.Equal(t, "A", a.ImageID)
	assert.Equal(t, "1000000400", a.IRMACode)
	assert.Equal(t, "/data/train/A.png", a.Path)
	assert.Equal(t, "x-ray", a.ImagingModality)
	assert.Equal(t, "unspecified upper extremity", a.BodyRegion)
	assert.Equal(t, irma.Extremity, a.CentralOrExtremity)
	assert.Equal(t, 0, a.BinaryLabel)
	assert.Equal(t, PartitionTrain, a.Partition)

	b := ds.At(1)
	assert.Equal(t, "B", b.ImageID)
	assert.Equal(t, "/data/test/B.png", b.Path)
	assert.Equal(t, "sonography", b.ImagingModality)
	assert.Equal(t, "lateral, left-right", b.ImagingOrientation)
	assert.Equal(t, "unspecified lower extremity", b.BodyRegion)
	assert.Equal(t, 0, b.BinaryLabel)
	assert.Equal(t, PartitionTest, b.Partition)

	require.Len(t, ds.CleaningOperations, 1)
	assert.Equal(t, "A", ds.CleaningOperations[0].RowIdentifier)
}

func TestLoadConcatenationOrder(t *testing.T) {
	for _, sizes := range [][2]int{{0, 0}, {0, 3}, {4, 0}, {5, 7}} {
		m, n := sizes[0], sizes[1]
		t.Run(fmt.Sprintf("%d+%d", m, n), func(t *testing.T) {
			var trainRows, testRows []source.Row
			for i := 0; i < m; i++ {
				trainRows = append(trainRows, source.Row{"image_id": fmt.Sprintf("train-%d", i), "irma_code": "1121120500700"})
			}
			for i := 0; i < n; i++ {
				testRows = append(testRows, source.Row{"image_id": fmt.Sprintf("test-%d", i), "irma_code": "1121-110-463-700"})
			}

			ds, err := NewLoader(nil, nil).Load(context.Background(),
				staticPartition(PartitionTrain, "tr", trainRows...),
				staticPartition(PartitionTest, "te", testRows...))
			require.NoError(t, err)
			require.Equal(t, m+n, ds.Len())

			for i := 0; i < m; i++ {
				assert.Equal(t, fmt.Sprintf("train-%d", i), ds.At(i).ImageID)
				assert.Equal(t, i, ds.At(i).SourceRow)
			}
			for i := 0; i < n; i++ {
				assert.Equal(t, fmt.Sprintf("test-%d", i), ds.At(m+i).ImageID)
				assert.Equal(t, "shoulder", ds.At(m+i).BodyRegion)
			}
			assert.Len(t, ds.Partition(PartitionTrain), m)
			assert.Len(t, ds.Partition(PartitionTest), n)
		})
	}
}

func TestLoadMalformedRecord(t *testing.T) {
	good := source.Row{"image_id": "ok", "irma_code": "1000000400"}

	tests := []struct {
		name      string
		train     []source.Row
		test      []source.Row
		partition string
		row       int
		field     string
		cause     error
	}{
		{
			name:      "missing code in test",
			train:     []source.Row{good},
			test:      []source.Row{good, {"image_id": "x"}},
			partition: PartitionTest, row: 1, field: "irma_code", cause: cleaner.ErrMissingField,
		},
		{
			name:      "missing image id in train",
			train:     []source.Row{{"irma_code": "1000000400"}},
			partition: PartitionTrain, row: 0, field: "image_id", cause: cleaner.ErrMissingField,
		},
		{
			name:      "short code",
			train:     []source.Row{good, good, {"image_id": "x", "irma_code": "1000-000-40"}},
			partition: PartitionTrain, row: 2, field: "irma_code", cause: irma.ErrInvalidCodeLength,
		},
		{
			name:      "unknown body region",
			train:     []source.Row{good},
			test:      []source.Row{{"image_id": "x", "irma_code": "1000000000"}},
			partition: PartitionTest, row: 0, field: "irma_code", cause: irma.ErrUnknownSubcode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := NewLoader(nil, nil).Load(context.Background(),
				staticPartition(PartitionTrain, "tr", tt.train...),
				staticPartition(PartitionTest, "te", tt.test...))
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.ErrorIs(t, err, tt.cause)

			var malformed *MalformedRecordError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.partition, malformed.Partition)
			assert.Equal(t, tt.row, malformed.Row)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestLoadUnparsableCSVRow(t *testing.T) {
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(trainPath,
		[]byte("image_id;irma_code\n1;1121-110-500-700\n"), 0o644))
	require.NoError(t, os.WriteFile(testPath,
		[]byte("image_id;irma_code\nA;1121-110-500-700\nB\"x;1121-110-500-700\n"), 0o644))

	metrics, err := NewLoadMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	ds, err := NewLoader(nil, metrics).Load(context.Background(),
		Partition{Name: PartitionTrain, Source: source.NewCSVSource(trainPath, 0), ImageRoot: "tr"},
		Partition{Name: PartitionTest, Source: source.NewCSVSource(testPath, 0), ImageRoot: "te"})
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.ErrorIs(t, err, csv.ErrBareQuote)

	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, PartitionTest, malformed.Partition)
	assert.Equal(t, 1, malformed.Row)
	assert.Empty(t, malformed.Field)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loadFailures.WithLabelValues(PartitionTest)))
}

func TestLoadKeepsPaddedValues(t *testing.T) {
	ds, err := NewLoader(nil, nil).Load(context.Background(),
		staticPartition(PartitionTrain, "tr",
			source.Row{"image_id": " 7", "irma_code": "1121-110-500-000 "}),
		staticPartition(PartitionTest, "te"))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	record := ds.At(0)
	assert.Equal(t, " 7", record.ImageID)
	assert.Equal(t, "1121110500000 ", record.IRMACode)
	assert.Equal(t, "tr/ 7.png", record.Path)
	assert.Equal(t, "abdomen", record.BodyRegion)
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) Rows(context.Context) ([]source.Row, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadSourceError(t *testing.T) {
	_, err := NewLoader(nil, nil).Load(context.Background(),
		Partition{Name: PartitionTrain, Source: failingSource{}},
		staticPartition(PartitionTest, "te"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.NotErrorIs(t, err, ErrMalformedRecord)

	_, err = NewLoader(nil, nil).Load(context.Background(), Partition{Name: PartitionTrain}, Partition{Name: PartitionTest})
	require.Error(t, err)
}

func TestLoadFromLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ImageCLEFmed2009_train_codes.02.csv"),
		[]byte("image_id;irma_code\n1880;1121-120-800-700\n1881;1121-127-700-500\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ImageCLEFmed2009_test_codes.03.csv"),
		[]byte("image_id;irma_code\n2001;1121-220-941-700\n"), 0o644))

	layout := DefaultLayout(dir)
	train, test := layout.Partitions()

	reg := prometheus.NewRegistry()
	metrics, err := NewLoadMetrics(reg)
	require.NoError(t, err)

	ds, err := NewLoader(nil, metrics).Load(context.Background(), train, test)
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	trainRoot, testRoot := layout.ImageRoots()
	assert.Equal(t, trainRoot+"/1880.png", ds.At(0).Path)
	assert.Equal(t, "pelvis", ds.At(0).BodyRegion)
	assert.Equal(t, "abdomen", ds.At(1).BodyRegion)
	assert.Equal(t, testRoot+"/2001.png", ds.At(2).Path)
	assert.Equal(t, "knee", ds.At(2).BodyRegion)
	assert.Equal(t, irma.OrientationLateralLeftRight, ds.At(2).ImagingOrientation)
	assert.Len(t, ds.CleaningOperations, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.recordsLoaded.WithLabelValues(PartitionTrain)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recordsLoaded.WithLabelValues(PartitionTest)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.labels.WithLabelValues("0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.labels.WithLabelValues("1")))
}

func TestLoadFailureMetric(t *testing.T) {
	metrics, err := NewLoadMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	_, err = NewLoader(nil, metrics).Load(context.Background(),
		staticPartition(PartitionTrain, "tr", source.Row{"image_id": "x", "irma_code": "1"}),
		staticPartition(PartitionTest, "te"))
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loadFailures.WithLabelValues(PartitionTrain)))
}

func TestImagePath(t *testing.T) {
	assert.Equal(t, "root/dir/1234.png", ImagePath("root/dir", "1234"))
}
