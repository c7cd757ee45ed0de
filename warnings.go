package wordml

import (
	"strings"

	"github.com/tsawler/wordml/docx"
)

// Warning is a non-fatal problem found during conversion.
type Warning = docx.Warning

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	return strings.Join(docx.Strings(warnings), "\n")
}
