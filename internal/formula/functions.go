package formula

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm/runtime"
)

// nonEmptyArgs drops nil entries before a reducer sees them. A nil argument
// comes from an Empty cell reference, and a spreadsheet aggregation is
// expected to ignore blanks rather than let them poison the reduction (the
// underlying runtime helpers have no notion of "blank" to skip on their
// own).
func nonEmptyArgs(args []any) []any {
	out := args[:0:0]
	for _, arg := range args {
		if arg != nil {
			out = append(out, arg)
		}
	}
	return out
}

// safeReduce recovers from the panics runtime.Less/More/Add/Divide raise on
// incompatible operand types (e.g. a text cell fed into a numeric
// reduction) and reports them as an ordinary error instead of taking the
// whole evaluation down with them.
func safeReduce(fn func(args []any) (any, error), args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("incompatible operand: %v", r)
		}
	}()
	return fn(args)
}

func calculateMax(args ...any) (any, error) {
	return safeReduce(func(args []any) (any, error) {
		var maxValue any
		for _, arg := range nonEmptyArgs(args) {
			if maxValue == nil || runtime.Less(maxValue, arg) {
				maxValue = arg
			}
		}
		return maxValue, nil
	}, args)
}

func calculateMin(args ...any) (any, error) {
	return safeReduce(func(args []any) (any, error) {
		var minValue any
		for _, arg := range nonEmptyArgs(args) {
			if minValue == nil || runtime.More(minValue, arg) {
				minValue = arg
			}
		}
		return minValue, nil
	}, args)
}

func calculateSum(args ...any) (any, error) {
	return safeReduce(func(args []any) (any, error) {
		values := nonEmptyArgs(args)
		if len(values) == 0 {
			return 0.0, nil
		}
		sum := values[0]
		for i := 1; i < len(values); i++ {
			sum = runtime.Add(sum, values[i])
		}
		return sum, nil
	}, args)
}

func calculateAvg(args ...any) (any, error) {
	return safeReduce(func(args []any) (any, error) {
		values := nonEmptyArgs(args)
		if len(values) == 0 {
			return 0.0, nil
		}
		sum, err := calculateSum(values...)
		if err != nil {
			return nil, err
		}
		return runtime.Divide(sum, len(values)), nil
	}, args)
}

var builtinFunctions = []expr.Option{
	expr.Function("max", calculateMax),
	expr.Function("min", calculateMin),
	expr.Function("sum", calculateSum),
	expr.Function("avg", calculateAvg),
}
