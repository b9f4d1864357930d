package sheet

import (
	"fmt"
	"io"

	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/value"
)

// Sheet owns every Cell. refs_in/refs_out are non-owning identities into
// this table; a cell is destroyed only once nothing still names it
// (ClearCell's retention rule).
type Sheet struct {
	cells map[position.Position]*Cell

	rowOccupancy map[int]int
	colOccupancy map[int]int
}

func New() *Sheet {
	return &Sheet{
		cells:        make(map[position.Position]*Cell),
		rowOccupancy: make(map[int]int),
		colOccupancy: make(map[int]int),
	}
}

// SetCell validates pos, materializes a Cell there if needed, and delegates
// to Cell.Set. Formula parse failures and circular dependencies propagate
// unchanged, leaving the Sheet unmodified.
func (s *Sheet) SetCell(pos position.Position, text string) error {
	if !pos.IsValid() {
		return fmt.Errorf("%v: %w", pos, position.ErrInvalidPosition)
	}

	c := s.cells[pos]
	wasOccupied := c != nil && !c.IsEmpty()

	if c == nil {
		c = newCell(pos, s)
		s.cells[pos] = c
	}

	if err := c.Set(text); err != nil {
		if !wasOccupied && !c.IsReferenced() {
			delete(s.cells, pos)
		}
		return err
	}

	isOccupied := !c.IsEmpty()
	s.trackOccupancy(pos, wasOccupied, isOccupied)

	return nil
}

// GetCell returns the cell at pos if present, else nil.
func (s *Sheet) GetCell(pos position.Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, fmt.Errorf("%v: %w", pos, position.ErrInvalidPosition)
	}
	return s.cells[pos], nil
}

// ClearCell clears the cell at pos and drops it from the table unless it is
// still referenced by some formula.
func (s *Sheet) ClearCell(pos position.Position) error {
	if !pos.IsValid() {
		return fmt.Errorf("%v: %w", pos, position.ErrInvalidPosition)
	}

	c := s.cells[pos]
	if c == nil {
		return nil
	}

	wasOccupied := !c.IsEmpty()

	if err := c.Clear(); err != nil {
		return err
	}

	s.trackOccupancy(pos, wasOccupied, false)

	if !c.IsReferenced() {
		delete(s.cells, pos)
	}

	return nil
}

// GetPrintableSize reports the smallest rectangle anchored at (0,0)
// covering every row/column with at least one live occupancy entry.
func (s *Sheet) GetPrintableSize() position.Size {
	size := position.Size{}
	for row := range s.rowOccupancy {
		if row+1 > size.Rows {
			size.Rows = row + 1
		}
	}
	for col := range s.colOccupancy {
		if col+1 > size.Cols {
			size.Cols = col + 1
		}
	}
	return size
}

// PrintValues writes the printable rectangle's Values, tab-separated within
// a row and newline-terminated, to sink.
func (s *Sheet) PrintValues(sink io.Writer) error {
	return s.print(sink, func(c *Cell) string {
		if c == nil {
			return ""
		}
		return c.GetValue().String()
	})
}

// PrintTexts writes the printable rectangle's raw texts to sink.
func (s *Sheet) PrintTexts(sink io.Writer) error {
	return s.print(sink, func(c *Cell) string {
		if c == nil {
			return ""
		}
		return c.GetText()
	})
}

func (s *Sheet) print(sink io.Writer, render func(*Cell) string) error {
	size := s.GetPrintableSize()

	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				if _, err := io.WriteString(sink, "\t"); err != nil {
					return err
				}
			}

			c := s.cells[position.Position{Row: row, Col: col}]
			if _, err := io.WriteString(sink, render(c)); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(sink, "\n"); err != nil {
			return err
		}
	}

	return nil
}

// Each calls fn once per live cell in the table. Iteration order is
// unspecified; fn must not mutate the Sheet.
func (s *Sheet) Each(fn func(pos position.Position, c *Cell)) {
	for pos, c := range s.cells {
		fn(pos, c)
	}
}

// GetCellPtr is the internal accessor cell reference resolution uses; it
// never validates pos (callers already have).
func (s *Sheet) GetCellPtr(pos position.Position) *Cell {
	return s.cells[pos]
}

// ResolveReference implements Resolver: it auto-vivifies an Empty cell at
// pos if none exists, so a formula's forward edge always has an
// identity-stable target. created reports whether this call is the one
// that vivified it.
func (s *Sheet) ResolveReference(pos position.Position) (cell *Cell, created bool, err error) {
	if !pos.IsValid() {
		return nil, false, fmt.Errorf("%v: %w", pos, position.ErrInvalidPosition)
	}

	if c, ok := s.cells[pos]; ok {
		return c, false, nil
	}

	c := newCell(pos, s)
	s.cells[pos] = c
	return c, true, nil
}

// ReleaseIfOrphan implements Resolver: it drops the cell at pos from the
// table if it turned out to be an unreferenced Empty placeholder, the way
// ClearCell already does for a cell it clears directly.
func (s *Sheet) ReleaseIfOrphan(pos position.Position) {
	c, ok := s.cells[pos]
	if !ok {
		return
	}
	if c.IsEmpty() && !c.IsReferenced() {
		delete(s.cells, pos)
	}
}

// GetCellValue implements value.SheetReader for the formula collaborator.
func (s *Sheet) GetCellValue(pos position.Position) value.Value {
	c := s.cells[pos]
	if c == nil {
		return value.EmptyValue()
	}
	return c.GetValue()
}

func (s *Sheet) trackOccupancy(pos position.Position, was, is bool) {
	if was == is {
		return
	}

	delta := 1
	if !is {
		delta = -1
	}

	s.rowOccupancy[pos.Row] += delta
	if s.rowOccupancy[pos.Row] <= 0 {
		delete(s.rowOccupancy, pos.Row)
	}

	s.colOccupancy[pos.Col] += delta
	if s.colOccupancy[pos.Col] <= 0 {
		delete(s.colOccupancy, pos.Col)
	}
}
