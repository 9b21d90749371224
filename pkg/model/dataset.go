// pkg/model/dataset.go
package model

// Dataset is the merged view of the train and test partitions. Records hold
// every train record followed by every test record, each in source order.
type Dataset struct {
	Records            []Record
	CleaningOperations []CleaningOperation
	Partitions         []PartitionInfo
}

// PartitionInfo describes where a partition's records sit inside Records
type PartitionInfo struct {
	Name      string
	Source    string // Label source name (file path or table)
	ImageRoot string
	Offset    int // Index of the partition's first record
	Count     int
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// At returns the record at index i
func (d *Dataset) At(i int) Record {
	return d.Records[i]
}

// Partition returns the records of the named partition, or nil if the
// partition is not part of the dataset
func (d *Dataset) Partition(name string) []Record {
	for _, p := range d.Partitions {
		if p.Name == name {
			return d.Records[p.Offset : p.Offset+p.Count]
		}
	}
	return nil
}

// Append adds a partition's records to the end of the dataset
func (d *Dataset) Append(info PartitionInfo, records []Record, ops []CleaningOperation) {
	info.Offset = len(d.Records)
	info.Count = len(records)
	d.Partitions = append(d.Partitions, info)
	d.Records = append(d.Records, records...)
	d.CleaningOperations = append(d.CleaningOperations, ops...)
}
