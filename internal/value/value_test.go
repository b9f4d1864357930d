package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_String(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", EmptyValue().String())
	})

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, "hello", TextValue("hello").String())
	})

	t.Run("number", func(t *testing.T) {
		assert.Equal(t, "5", NumberValue(5).String())
		assert.Equal(t, "13.5", NumberValue(13.5).String())
	})

	t.Run("error", func(t *testing.T) {
		assert.Equal(t, "#REF!", ErrorValue(RefError).String())
		assert.Equal(t, "#VALUE!", ErrorValue(ValueError).String())
		assert.Equal(t, "#DIV/0!", ErrorValue(DivByZeroError).String())
		assert.Equal(t, "#ARITHM!", ErrorValue(ArithmeticError).String())
	})
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, NumberValue(3).Equal(NumberValue(3)))
	assert.False(t, NumberValue(3).Equal(NumberValue(4)))
	assert.True(t, EmptyValue().Equal(EmptyValue()))
	assert.False(t, TextValue("a").Equal(NumberValue(0)))
	assert.True(t, ErrorValue(DivByZeroError).Equal(ErrorValue(DivByZeroError)))
	assert.False(t, ErrorValue(DivByZeroError).Equal(ErrorValue(ValueError)))
}
