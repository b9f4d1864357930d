package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/value"
)

// ErrParse wraps any error the expression compiler raises; Sheet.SetCell
// bubbles it unchanged.
var ErrParse = errors.New("formula parse error")

// vmPool recycles VM runners across Evaluate calls instead of allocating one
// per call.
var vmPool = sync.Pool{
	New: func() any { return new(vm.VM) },
}

var compilerOptions = append([]expr.Option{
	expr.Env(map[string]any{}),
	expr.AllowUndefinedVariables(),
	expr.Optimize(false),
	expr.DisableAllBuiltins(),
}, builtinFunctions...)

type parsedFormula struct {
	program    *vm.Program
	refs       []position.Position
	invalidRef bool
	text       string
}

// Parse compiles expression (without the leading '=') into a ParsedFormula.
func Parse(expression string) (ParsedFormula, error) {
	visitor := newReferencedPositionVisitor()

	options := append(append([]expr.Option{}, compilerOptions...), expr.Patch(visitor))

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	return &parsedFormula{
		program:    program,
		refs:       visitor.refs,
		invalidRef: visitor.invalidRef,
		text:       canonicalizeWhitespace(expression),
	}, nil
}

func (pf *parsedFormula) ReferencedCells() []position.Position {
	return pf.refs
}

func (pf *parsedFormula) Expression() string {
	return pf.text
}

// Evaluate never mutates the graph: it only reads cell values through
// reader.
func (pf *parsedFormula) Evaluate(reader value.SheetReader) value.Value {
	if pf.invalidRef {
		return value.ErrorValue(value.RefError)
	}

	vars := make(map[string]any, len(pf.refs))
	for _, pos := range pf.refs {
		cellValue := reader.GetCellValue(pos)
		if cellValue.Kind() == value.Error {
			return cellValue
		}

		switch cellValue.Kind() {
		case value.Number:
			vars[pos.String()] = cellValue.Number()
		case value.Text:
			// Text that reads as a finite number takes part in arithmetic as
			// that number; any other text stays a string operand.
			if n, perr := strconv.ParseFloat(cellValue.String(), 64); perr == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				vars[pos.String()] = n
			} else {
				vars[pos.String()] = cellValue.String()
			}
		default:
			vars[pos.String()] = nil
		}
	}

	vmInstance := vmPool.Get().(*vm.VM)
	out, err := vmInstance.Run(pf.program, vars)
	vmPool.Put(vmInstance)

	if err != nil {
		return value.ErrorValue(classifyRuntimeError(err))
	}

	return toValue(out)
}

func toValue(out any) value.Value {
	switch v := out.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return value.ErrorValue(value.ArithmeticError)
		}
		return value.NumberValue(v)
	case int:
		return value.NumberValue(float64(v))
	case int64:
		return value.NumberValue(float64(v))
	case string:
		return value.TextValue(v)
	case nil:
		return value.ErrorValue(value.ValueError)
	default:
		return value.ErrorValue(value.ValueError)
	}
}

func classifyRuntimeError(err error) value.ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "division by zero") || strings.Contains(msg, "divide by zero"):
		return value.DivByZeroError
	case strings.Contains(msg, "overflow") || strings.Contains(msg, "nan") || strings.Contains(msg, "infinity"):
		return value.ArithmeticError
	default:
		return value.ValueError
	}
}

func canonicalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
