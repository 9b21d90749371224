// pkg/cleaner/operations.go
package cleaner

import (
	"github.com/David-Botos/irma-ingress/pkg/irma"
	"github.com/David-Botos/irma-ingress/pkg/model"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

// Cleaning operation names recorded in the audit trail
const (
	OperationSeparatorStrip = "separator_strip"

	ReasonCodeSeparators = "irma_code_separators"
)

// stripCodeSeparators removes the axis separators from an IRMA code,
// e.g. "1121-127-700-500" -> "1121127700500". Any other character,
// whitespace included, is kept as read.
func stripCodeSeparators(value string) (string, *model.CleaningOperation) {
	stripped := irma.StripSeparators(value)
	if stripped == value {
		return value, nil
	}

	return stripped, &model.CleaningOperation{
		ColumnName:        source.ColumnIRMACode,
		OriginalValue:     value,
		NewValue:          stripped,
		CleaningOperation: OperationSeparatorStrip,
		CleaningReason:    ReasonCodeSeparators,
	}
}
