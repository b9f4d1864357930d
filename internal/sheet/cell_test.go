package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/value"
)

func TestCell_TextRoundTrip(t *testing.T) {
	for _, s := range []string{"hello", "42abc", "x"} {
		t.Run(s, func(t *testing.T) {
			sht := New()
			p := pos(t, "A1")
			require.NoError(t, sht.SetCell(p, s))

			c, _ := sht.GetCell(p)
			assert.Equal(t, s, c.GetText())
			assert.Equal(t, value.TextValue(s), c.GetValue())
		})
	}
}

func TestCell_EqualsSignAloneIsText(t *testing.T) {
	sht := New()
	p := pos(t, "A1")
	require.NoError(t, sht.SetCell(p, "="))

	c, _ := sht.GetCell(p)
	assert.Equal(t, TextContent, c.Kind())
	assert.Equal(t, value.TextValue("="), c.GetValue())
}

func TestCell_FormulaParseErrorLeavesCellUnchanged(t *testing.T) {
	sht := New()
	p := pos(t, "A1")
	require.NoError(t, sht.SetCell(p, "hello"))

	err := sht.SetCell(p, "=1+")
	assert.Error(t, err)

	c, _ := sht.GetCell(p)
	assert.Equal(t, "hello", c.GetText())
}

func TestCell_IsReferenced(t *testing.T) {
	sht := New()
	require.NoError(t, sht.SetCell(pos(t, "A1"), "1"))

	a1, _ := sht.GetCell(pos(t, "A1"))
	assert.False(t, a1.IsReferenced())

	require.NoError(t, sht.SetCell(pos(t, "B1"), "=A1"))
	assert.True(t, a1.IsReferenced())

	require.NoError(t, sht.ClearCell(pos(t, "B1")))
	assert.False(t, a1.IsReferenced())
}

func TestCell_ClearingReferencedInputIsRetained(t *testing.T) {
	sht := New()
	require.NoError(t, sht.SetCell(pos(t, "A1"), "1"))
	require.NoError(t, sht.SetCell(pos(t, "B1"), "=A1"))

	require.NoError(t, sht.ClearCell(pos(t, "A1")))

	a1, err := sht.GetCell(pos(t, "A1"))
	require.NoError(t, err)
	require.NotNil(t, a1)
	assert.True(t, a1.IsEmpty())
	assert.Equal(t, value.EmptyValue(), a1.GetValue())

	b1, _ := sht.GetCell(pos(t, "B1"))
	assert.Equal(t, value.EmptyValue(), b1.GetValue())
}

func TestCell_GetReferencedCells(t *testing.T) {
	sht := New()
	require.NoError(t, sht.SetCell(pos(t, "C1"), "=A1+B1"))

	c1, _ := sht.GetCell(pos(t, "C1"))
	a1 := pos(t, "A1")
	b1 := pos(t, "B1")
	assert.Equal(t, []position.Position{a1, b1}, c1.GetReferencedCells())
}

func TestCell_SelfReferenceIsCircular(t *testing.T) {
	sht := New()
	err := sht.SetCell(pos(t, "A1"), "=A1")
	assert.ErrorIs(t, err, ErrCircularDependency)

	c, _ := sht.GetCell(pos(t, "A1"))
	// the candidate never committed, so the auto-vivified placeholder this
	// Set attempt would have wired up was never created either.
	assert.True(t, c == nil || c.IsEmpty())
}

func TestCell_RejectedSetReleasesUnrelatedVivifiedNeighbor(t *testing.T) {
	sht := New()
	require.NoError(t, sht.SetCell(pos(t, "A1"), "=B1"))

	err := sht.SetCell(pos(t, "B1"), "=C1+A1")
	assert.ErrorIs(t, err, ErrCircularDependency)

	// C1 was vivified while resolving B1's candidate references, but the
	// cycle on A1 rejected the whole Set. C1 was never part of the cycle
	// and never ends up referenced, so it must not linger in the table.
	c1, err := sht.GetCell(pos(t, "C1"))
	require.NoError(t, err)
	assert.Nil(t, c1)
}
