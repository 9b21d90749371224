// pkg/model/record.go
package model

import (
	"strconv"

	"github.com/David-Botos/irma-ingress/pkg/irma"
)

// Stable field names of a dataset record
const (
	FieldImageID            = "image_id"
	FieldIRMACode           = "irma_code"
	FieldPath               = "Path"
	FieldTechnicalCode      = "Technical Code"
	FieldImagingModality    = "Imaging Modality"
	FieldDirectionalCode    = "Directional Code"
	FieldImagingOrientation = "Imaging Orientation"
	FieldAnatomicalCode     = "Anatomical Code"
	FieldBodyRegion         = "Body Region"
	FieldCentralOrExtremity = "Central or Extremity"
	FieldBinaryLabel        = "Binary Label"
	FieldPartition          = "Partition"
)

// RecordFields lists the output fields in export order
var RecordFields = []string{
	FieldImageID,
	FieldIRMACode,
	FieldPath,
	FieldTechnicalCode,
	FieldImagingModality,
	FieldDirectionalCode,
	FieldImagingOrientation,
	FieldAnatomicalCode,
	FieldBodyRegion,
	FieldCentralOrExtremity,
	FieldBinaryLabel,
}

// LabelRow is a cleaned label source row
type LabelRow struct {
	ImageID  string
	IRMACode string // Separator-free code
}

// Record is one decoded dataset entry. Records are values; nothing mutates
// them after the loader builds them.
type Record struct {
	ImageID            string `db:"image_id"`
	IRMACode           string `db:"irma_code"`
	Path               string `db:"path"`
	TechnicalCode      string `db:"technical_code"`
	ImagingModality    string `db:"imaging_modality"`
	DirectionalCode    string `db:"directional_code"`
	ImagingOrientation string `db:"imaging_orientation"`
	AnatomicalCode     string `db:"anatomical_code"`
	BodyRegion         string `db:"body_region"`
	CentralOrExtremity string `db:"central_or_extremity"`
	BinaryLabel        int    `db:"binary_label"`
	Partition          string `db:"partition"` // Source partition ("train" or "test")
	SourceRow          int    `db:"source_row"` // Zero-based row index within the partition
}

// NewRecord builds a record from a cleaned row and its decoded classification
func NewRecord(row LabelRow, path, partition string, sourceRow int, c irma.Classification) Record {
	return Record{
		ImageID:            row.ImageID,
		IRMACode:           row.IRMACode,
		Path:               path,
		TechnicalCode:      c.TechnicalCode,
		ImagingModality:    c.ImagingModality,
		DirectionalCode:    c.DirectionalCode,
		ImagingOrientation: c.ImagingOrientation,
		AnatomicalCode:     c.AnatomicalCode,
		BodyRegion:         c.BodyRegion,
		CentralOrExtremity: c.CentralOrExtremity,
		BinaryLabel:        c.BinaryLabel,
		Partition:          partition,
		SourceRow:          sourceRow,
	}
}

// Field returns a record value by its stable field name
func (r Record) Field(name string) (string, bool) {
	switch name {
	case FieldImageID:
		return r.ImageID, true
	case FieldIRMACode:
		return r.IRMACode, true
	case FieldPath:
		return r.Path, true
	case FieldTechnicalCode:
		return r.TechnicalCode, true
	case FieldImagingModality:
		return r.ImagingModality, true
	case FieldDirectionalCode:
		return r.DirectionalCode, true
	case FieldImagingOrientation:
		return r.ImagingOrientation, true
	case FieldAnatomicalCode:
		return r.AnatomicalCode, true
	case FieldBodyRegion:
		return r.BodyRegion, true
	case FieldCentralOrExtremity:
		return r.CentralOrExtremity, true
	case FieldBinaryLabel:
		return strconv.Itoa(r.BinaryLabel), true
	case FieldPartition:
		return r.Partition, true
	}
	return "", false
}

// Values returns the record's values in RecordFields order
func (r Record) Values() []string {
	values := make([]string, len(RecordFields))
	for i, name := range RecordFields {
		values[i], _ = r.Field(name)
	}
	return values
}
