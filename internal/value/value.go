// Package value implements the Value sum type cells and formulas evaluate to.
package value

import (
	"strconv"

	"github.com/gosheetlab/sheetcore/internal/position"
)

type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Error
)

type ErrorKind int

const (
	RefError ErrorKind = iota
	ValueError
	DivByZeroError
	ArithmeticError
)

func (e ErrorKind) String() string {
	switch e {
	case RefError:
		return "#REF!"
	case ValueError:
		return "#VALUE!"
	case DivByZeroError:
		return "#DIV/0!"
	case ArithmeticError:
		return "#ARITHM!"
	default:
		return "#ERROR!"
	}
}

// Value is a closed sum type: empty, text, a finite number, or a formula error.
type Value struct {
	kind    Kind
	text    string
	number  float64
	errKind ErrorKind
}

func EmptyValue() Value {
	return Value{kind: Empty}
}

func TextValue(s string) Value {
	return Value{kind: Text, text: s}
}

func NumberValue(n float64) Value {
	return Value{kind: Number, number: n}
}

func ErrorValue(k ErrorKind) Value {
	return Value{kind: Error, errKind: k}
}

func (v Value) Kind() Kind           { return v.kind }
func (v Value) Number() float64      { return v.number }
func (v Value) ErrorKind() ErrorKind { return v.errKind }

// String renders the value the way the sink prints it: text verbatim,
// numbers with the sink's default numeric formatting, errors as their tag.
func (v Value) String() string {
	switch v.kind {
	case Empty:
		return ""
	case Text:
		return v.text
	case Number:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case Error:
		return v.errKind.String()
	default:
		return ""
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Text:
		return v.text == other.text
	case Number:
		return v.number == other.number
	case Error:
		return v.errKind == other.errKind
	default:
		return true
	}
}

// SheetReader is the read-only view a formula collaborator evaluates against.
type SheetReader interface {
	GetCellValue(pos position.Position) Value
}
