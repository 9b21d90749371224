package irma

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSeparators(t *testing.T) {
	assert.Equal(t, "1121127700500", StripSeparators("1121-127-700-500"))
	assert.Equal(t, "1000400000", StripSeparators("1000400000"))
	assert.Equal(t, "", StripSeparators("---"))
}

func TestAxisExtraction(t *testing.T) {
	code := "1121127700500"

	technical, err := TechnicalCode(code)
	require.NoError(t, err)
	assert.Equal(t, "1121", technical)

	directional, err := DirectionalCode(code)
	require.NoError(t, err)
	assert.Equal(t, "127", directional)

	anatomical, err := AnatomicalCode(code)
	require.NoError(t, err)
	assert.Equal(t, "700", anatomical)

	// Same input, same output
	again, err := AnatomicalCode(code)
	require.NoError(t, err)
	assert.Equal(t, anatomical, again)
}

func TestAxisExtractionShortCode(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) (string, error)
		code string
	}{
		{"technical empty", TechnicalCode, ""},
		{"technical three chars", TechnicalCode, "112"},
		{"directional six chars", DirectionalCode, "112112"},
		{"anatomical nine chars", AnatomicalCode, "112112770"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(tt.code)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCodeLength)

			var codeErr *CodeError
			require.True(t, errors.As(err, &codeErr))
			assert.Equal(t, tt.code, codeErr.Code)
		})
	}

	technical, err := TechnicalCode("1121")
	require.NoError(t, err)
	assert.Equal(t, "1121", technical)
}

func TestDecode(t *testing.T) {
	c, err := Decode("1000000400")
	require.NoError(t, err)
	assert.Equal(t, Classification{
		Code:               "1000000400",
		TechnicalCode:      "1000",
		ImagingModality:    "x-ray",
		DirectionalCode:    "000",
		ImagingOrientation: OrientationUnspecified,
		AnatomicalCode:     "400",
		BodyRegion:         "unspecified upper extremity",
		CentralOrExtremity: Extremity,
		BinaryLabel:        LabelExtremity,
	}, c)

	c, err = Decode("2000220900")
	require.NoError(t, err)
	assert.Equal(t, "sonography", c.ImagingModality)
	assert.Equal(t, "220", c.DirectionalCode)
	assert.Equal(t, OrientationLateralLeftRight, c.ImagingOrientation)
	assert.Equal(t, "900", c.AnatomicalCode)
	assert.Equal(t, "unspecified lower extremity", c.BodyRegion)
	assert.Equal(t, Extremity, c.CentralOrExtremity)
	assert.Equal(t, LabelExtremity, c.BinaryLabel)
}

func TestDecodeTrailingAxisIgnored(t *testing.T) {
	c, err := Decode("1121110500700")
	require.NoError(t, err)
	assert.Equal(t, "x-ray", c.ImagingModality)
	assert.Equal(t, OrientationPosteroanterior, c.ImagingOrientation)
	assert.Equal(t, "chest", c.BodyRegion)
	assert.Equal(t, Central, c.CentralOrExtremity)
	assert.Equal(t, LabelCentral, c.BinaryLabel)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("112112070")
	assert.ErrorIs(t, err, ErrInvalidCodeLength)

	_, err = Decode("1121120000")
	assert.ErrorIs(t, err, ErrUnknownSubcode)

	_, err = Decode("1121120470")
	assert.ErrorIs(t, err, ErrUnknownSubcode)
}
