package irma

// Central/extremity grouping and its binary label
const (
	Extremity = "extremity"
	Central   = "central"

	LabelExtremity = 0
	LabelCentral   = 1
)

// Orientation names
const (
	OrientationUnspecified      = "unspecified"
	OrientationPosteroanterior  = "posteroanterior"
	OrientationAnteroposterior  = "anteroposterior"
	OrientationLateralRightLeft = "lateral, right-left"
	OrientationLateralLeftRight = "lateral, left-right"
)

var modalities = map[byte]string{
	'0': "unspecified",
	'1': "x-ray",
	'2': "sonography",
	'3': "magnetic resonance measurements",
	'4': "nuclear medicine",
	'5': "optical imaging",
	'6': "biophysical procedure",
	'7': "others",
	'8': "secondary digitalization",
}

var regions = map[byte]string{
	'1': "whole body",
	'2': "cranium",
	'3': "spine",
	'4': "upper extremity/arm",
	'5': "chest",
	'6': "breast",
	'7': "abdomen",
	'8': "pelvis",
	'9': "lower extremity",
}

var upperExtremity = map[byte]string{
	'0': "unspecified upper extremity",
	'1': "hand",
	'2': "radio carpal joint",
	'3': "forearm",
	'4': "elbow",
	'5': "upper arm",
	'6': "shoulder",
}

var lowerExtremity = map[byte]string{
	'0': "unspecified lower extremity",
	'1': "foot",
	'2': "ankle joint",
	'3': "lower leg",
	'4': "knee",
	'5': "upper leg",
	'6': "hip",
}

// ImagingModality maps the first technical character to a modality name.
// Unknown characters return the technical code unchanged.
func ImagingModality(technicalCode string) string {
	if technicalCode == "" {
		return technicalCode
	}
	if name, ok := modalities[technicalCode[0]]; ok {
		return name
	}
	return technicalCode
}

// ImagingOrientation maps the first two directional characters to an
// orientation. Unrecognized combinations return the directional code unchanged.
func ImagingOrientation(directionalCode string) string {
	if directionalCode == "" {
		return directionalCode
	}

	first := directionalCode[0]
	if first == '0' {
		return OrientationUnspecified
	}
	if len(directionalCode) < 2 {
		return directionalCode
	}

	second := directionalCode[1]
	switch {
	case first == '1' && second == '1':
		return OrientationPosteroanterior
	case first == '1' && second == '2':
		return OrientationAnteroposterior
	case first == '2' && second == '1':
		return OrientationLateralRightLeft
	case first == '2' && second == '2':
		return OrientationLateralLeftRight
	}
	return directionalCode
}

// CentralOrExtremity groups anatomical codes starting with 4 (arm) or 9 (leg)
// as extremities; everything else is central.
func CentralOrExtremity(anatomicalCode string) string {
	if anatomicalCode != "" && (anatomicalCode[0] == '4' || anatomicalCode[0] == '9') {
		return Extremity
	}
	return Central
}

// BodyRegion names the examined region. Extremity codes are resolved to the
// sub-region given by the second character.
func BodyRegion(anatomicalCode string) (string, error) {
	if anatomicalCode == "" {
		return "", codeError("body_region", anatomicalCode, ErrUnknownSubcode)
	}

	table, key := regions, anatomicalCode[0]
	switch anatomicalCode[0] {
	case '4':
		table = upperExtremity
	case '9':
		table = lowerExtremity
	}

	// Extremities are keyed by the sub-region character
	if key == '4' || key == '9' {
		if len(anatomicalCode) < 2 {
			return "", codeError("body_region", anatomicalCode, ErrUnknownSubcode)
		}
		key = anatomicalCode[1]
	}

	name, ok := table[key]
	if !ok {
		return "", codeError("body_region", anatomicalCode, ErrUnknownSubcode)
	}
	return name, nil
}

// BinaryLabel returns 0 for extremities and 1 for everything else
func BinaryLabel(centralOrExtremity string) int {
	if centralOrExtremity == Extremity {
		return LabelExtremity
	}
	return LabelCentral
}
