package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/irma-ingress/pkg/irma"
)

func testRecord(t *testing.T, id, code, partition string, row int) Record {
	t.Helper()
	c, err := irma.Decode(code)
	require.NoError(t, err)
	return NewRecord(LabelRow{ImageID: id, IRMACode: code}, "/img/"+id+".png", partition, row, c)
}

func TestRecordFields(t *testing.T) {
	r := testRecord(t, "1880", "1121120800700", "train", 0)

	v, ok := r.Field(FieldBodyRegion)
	require.True(t, ok)
	assert.Equal(t, "pelvis", v)

	v, ok = r.Field(FieldBinaryLabel)
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = r.Field("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{
		"1880",
		"1121120800700",
		"/img/1880.png",
		"1121",
		"x-ray",
		"120",
		"anteroposterior",
		"800",
		"pelvis",
		"central",
		"1",
	}, r.Values())
}

func TestDatasetAppendKeepsOrder(t *testing.T) {
	ds := &Dataset{}
	ds.Append(PartitionInfo{Name: "train"}, []Record{
		testRecord(t, "a", "1000000400", "train", 0),
		testRecord(t, "b", "1000000500", "train", 1),
	}, nil)
	ds.Append(PartitionInfo{Name: "test"}, []Record{
		testRecord(t, "c", "2000220900", "test", 0),
	}, []CleaningOperation{{Partition: "test"}})

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "a", ds.At(0).ImageID)
	assert.Equal(t, "b", ds.At(1).ImageID)
	assert.Equal(t, "c", ds.At(2).ImageID)
	assert.Len(t, ds.CleaningOperations, 1)

	require.Len(t, ds.Partitions, 2)
	assert.Equal(t, 0, ds.Partitions[0].Offset)
	assert.Equal(t, 2, ds.Partitions[0].Count)
	assert.Equal(t, 2, ds.Partitions[1].Offset)
	assert.Equal(t, 1, ds.Partitions[1].Count)

	test := ds.Partition("test")
	require.Len(t, test, 1)
	assert.Equal(t, "c", test[0].ImageID)
	assert.Nil(t, ds.Partition("validation"))

	var empty *Dataset
	assert.Equal(t, 0, empty.Len())
}

func TestTableMetadata(t *testing.T) {
	md := RecordTableMetadata("irma")
	assert.Equal(t, RecordsTable, md.Table)
	assert.Equal(t, []string{"load_id", "partition", "source_row"}, md.PrimaryKeys)

	col := md.GetColumnByName(" Body_Region ")
	require.NotNil(t, col)
	assert.Equal(t, "body_region", col.Name)
	assert.Nil(t, md.GetColumnByName("missing"))

	names := md.ColumnNames()
	assert.Equal(t, "load_id", names[0])
	assert.Equal(t, "binary_label", names[len(names)-1])
}
