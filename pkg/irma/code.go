// Package irma decodes IRMA classification codes into the categorical labels
// used for training: imaging modality, orientation, body region and the
// central/extremity grouping.
//
// An IRMA code is read as fixed-width axes once separators are removed:
//
//	TTTT DDD AAA [BBB]
//	 |    |   |    biological axis, ignored here
//	 |    |   anatomical
//	 |    directional
//	 technical
package irma

import "strings"

// Axis offsets within a separator-free code
const (
	technicalStart   = 0
	technicalEnd     = 4
	directionalStart = 4
	directionalEnd   = 7
	anatomicalStart  = 7
	anatomicalEnd    = 10

	// MinCodeLength is the shortest code that carries all three decoded axes
	MinCodeLength = anatomicalEnd

	// Separator is the axis separator used in published label files
	Separator = "-"
)

// StripSeparators removes axis separators, e.g. "1121-127-700-500" -> "1121127700500"
func StripSeparators(raw string) string {
	return strings.ReplaceAll(raw, Separator, "")
}

// TechnicalCode returns the first four characters of a code
func TechnicalCode(code string) (string, error) {
	return axis("technical_code", code, technicalStart, technicalEnd)
}

// DirectionalCode returns the three characters at offset 4
func DirectionalCode(code string) (string, error) {
	return axis("directional_code", code, directionalStart, directionalEnd)
}

// AnatomicalCode returns the three characters at offset 7
func AnatomicalCode(code string) (string, error) {
	return axis("anatomical_code", code, anatomicalStart, anatomicalEnd)
}

func axis(op, code string, start, end int) (string, error) {
	if len(code) < end {
		return "", codeError(op, code, ErrInvalidCodeLength)
	}
	return code[start:end], nil
}

// Classification holds every label derived from a single code
type Classification struct {
	Code               string
	TechnicalCode      string
	ImagingModality    string
	DirectionalCode    string
	ImagingOrientation string
	AnatomicalCode     string
	BodyRegion         string
	CentralOrExtremity string
	BinaryLabel        int
}

// Decode applies every axis decoder to a separator-free code.
// Codes shorter than MinCodeLength fail with ErrInvalidCodeLength and
// unmapped anatomical codes with ErrUnknownSubcode.
func Decode(code string) (Classification, error) {
	if len(code) < MinCodeLength {
		return Classification{}, codeError("decode", code, ErrInvalidCodeLength)
	}

	c := Classification{Code: code}
	var err error

	if c.TechnicalCode, err = TechnicalCode(code); err != nil {
		return Classification{}, err
	}
	c.ImagingModality = ImagingModality(c.TechnicalCode)

	if c.DirectionalCode, err = DirectionalCode(code); err != nil {
		return Classification{}, err
	}
	c.ImagingOrientation = ImagingOrientation(c.DirectionalCode)

	if c.AnatomicalCode, err = AnatomicalCode(code); err != nil {
		return Classification{}, err
	}
	if c.BodyRegion, err = BodyRegion(c.AnatomicalCode); err != nil {
		return Classification{}, err
	}
	c.CentralOrExtremity = CentralOrExtremity(c.AnatomicalCode)
	c.BinaryLabel = BinaryLabel(c.CentralOrExtremity)

	return c, nil
}
