// Package formula is the external formula collaborator of §6: it parses an
// expression string into an opaque object that can be evaluated against a
// sheet and that declares the positions it depends on.
package formula

import (
	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/value"
)

// ParsedFormula is what Parse hands back on success. Pure with respect to
// the sheet: Evaluate only reads.
type ParsedFormula interface {
	Evaluate(reader value.SheetReader) value.Value
	ReferencedCells() []position.Position
	Expression() string
}
