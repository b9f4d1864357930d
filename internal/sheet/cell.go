// Package sheet implements the dependency-tracking cell table: Cell owns one
// content variant and participates in the refs_out/refs_in dependency
// graph; Sheet owns the table of cells and the printable-region accounting.
package sheet

import (
	"errors"
	"strings"

	"github.com/gosheetlab/sheetcore/internal/formula"
	"github.com/gosheetlab/sheetcore/internal/position"
	"github.com/gosheetlab/sheetcore/internal/value"
)

// ErrCircularDependency is returned by Cell.Set when committing the
// candidate content would introduce a cycle in the refs_out graph. The
// cell is left byte-for-byte unchanged.
var ErrCircularDependency = errors.New("circular dependency")

type Kind int

const (
	EmptyContent Kind = iota
	TextContent
	FormulaContent
)

// Resolver resolves a referenced position to its owning Cell, auto-vivifying
// an Empty placeholder if none exists yet, and reads a cell's current
// Value. Implemented by Sheet; Cell holds a non-owning back-reference to it,
// mirroring the original C++ Cell's reference to its owning Sheet.
type Resolver interface {
	// ResolveReference returns the cell at pos, auto-vivifying an Empty
	// placeholder if none exists. created reports whether this call did
	// the vivifying, so a caller that ends up rejecting its own change can
	// undo just the placeholders it introduced.
	ResolveReference(pos position.Position) (cell *Cell, created bool, err error)
	// ReleaseIfOrphan removes the cell at pos if it is Empty and no longer
	// referenced by anything. A no-op if pos has no cell, or the cell is
	// non-empty or still referenced.
	ReleaseIfOrphan(pos position.Position)
	value.SheetReader
}

// Cell is the unit of storage at a single Position.
type Cell struct {
	pos      position.Position
	resolver Resolver

	kind   Kind
	text   string
	parsed formula.ParsedFormula

	cached *value.Value

	refsOut map[*Cell]struct{}
	refsIn  map[*Cell]struct{}
}

func newCell(pos position.Position, resolver Resolver) *Cell {
	return &Cell{pos: pos, resolver: resolver}
}

func (c *Cell) Position() position.Position {
	return c.pos
}

func (c *Cell) Kind() Kind {
	return c.kind
}

// Set replaces this cell's content. On success every dependency-graph
// invariant holds; on ErrCircularDependency or a formula parse failure the
// cell is left byte-for-byte unchanged.
func (c *Cell) Set(text string) error {
	kind, storedText, parsed, err := classify(text)
	if err != nil {
		return err
	}

	var newRefsOut map[*Cell]struct{}
	if kind == FormulaContent {
		refPositions := parsed.ReferencedCells()
		newRefsOut = make(map[*Cell]struct{}, len(refPositions))

		var vivified []position.Position
		for _, pos := range refPositions {
			neighbor, created, rerr := c.resolver.ResolveReference(pos)
			if rerr != nil {
				c.releaseVivified(vivified)
				return rerr
			}
			newRefsOut[neighbor] = struct{}{}
			if created {
				vivified = append(vivified, pos)
			}
		}

		if c.wouldCreateCycle(newRefsOut) {
			c.releaseVivified(vivified)
			return ErrCircularDependency
		}
	}

	oldRefsOut := c.refsOut
	for old := range oldRefsOut {
		delete(old.refsIn, c)
	}

	c.refsOut = newRefsOut
	for neighbor := range newRefsOut {
		if neighbor.refsIn == nil {
			neighbor.refsIn = make(map[*Cell]struct{})
		}
		neighbor.refsIn[c] = struct{}{}
	}

	c.kind = kind
	c.text = storedText
	c.parsed = parsed
	c.invalidateCacheClosure()

	// A former input that is an Empty placeholder nothing references any
	// more is reclaimed.
	for old := range oldRefsOut {
		c.resolver.ReleaseIfOrphan(old.pos)
	}

	return nil
}

// releaseVivified undoes the auto-vivification of any position in
// positions that a rejected Set call placeholder-created along the way, so
// a failed Set never leaves an orphaned Empty cell behind.
func (c *Cell) releaseVivified(positions []position.Position) {
	for _, pos := range positions {
		c.resolver.ReleaseIfOrphan(pos)
	}
}

// Clear is equivalent to Set("") with respect to content.
func (c *Cell) Clear() error {
	return c.Set("")
}

// GetValue evaluates this cell's content, populating the formula cache on
// first read.
func (c *Cell) GetValue() value.Value {
	switch c.kind {
	case EmptyContent:
		return value.EmptyValue()
	case TextContent:
		return value.TextValue(strings.TrimPrefix(c.text, "'"))
	case FormulaContent:
		if c.cached == nil {
			v := c.parsed.Evaluate(c.resolver)
			c.cached = &v
		}
		return *c.cached
	default:
		return value.EmptyValue()
	}
}

// GetText returns the stored text verbatim (Text), "" (Empty), or "=" plus
// the formula collaborator's canonical rendering (Formula).
func (c *Cell) GetText() string {
	switch c.kind {
	case TextContent:
		return c.text
	case FormulaContent:
		return "=" + c.parsed.Expression()
	default:
		return ""
	}
}

// GetReferencedCells returns the positions declared by the current content,
// in the formula collaborator's stable declaration order.
func (c *Cell) GetReferencedCells() []position.Position {
	if c.kind != FormulaContent {
		return nil
	}
	return c.parsed.ReferencedCells()
}

func (c *Cell) IsReferenced() bool {
	return len(c.refsIn) > 0
}

func (c *Cell) IsEmpty() bool {
	return c.kind == EmptyContent
}

// wouldCreateCycle walks refs_in from this cell; a cycle exists iff any cell
// in referenced is discovered. Checked against the pre-existing refs_in,
// before the candidate content is committed.
func (c *Cell) wouldCreateCycle(referenced map[*Cell]struct{}) bool {
	if len(referenced) == 0 {
		return false
	}

	visited := map[*Cell]struct{}{}
	stack := []*Cell{c}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}

		if _, ok := referenced[cur]; ok {
			return true
		}

		for dep := range cur.refsIn {
			if _, ok := visited[dep]; !ok {
				stack = append(stack, dep)
			}
		}
	}

	return false
}

// invalidateCacheClosure marks this cell's cache invalid and walks refs_in,
// invalidating every Formula descendant's cache. A descendant whose cache is
// already invalid has had its own subtree invalidated already, so its
// subtree is skipped; termination otherwise relies on the acyclicity
// invariant of refs_out/refs_in.
func (c *Cell) invalidateCacheClosure() {
	c.cached = nil
	for dep := range c.refsIn {
		dep.invalidateIfNeeded()
	}
}

func (c *Cell) invalidateIfNeeded() {
	if c.kind == FormulaContent && c.cached == nil {
		return
	}
	c.cached = nil
	for dep := range c.refsIn {
		dep.invalidateIfNeeded()
	}
}

func classify(text string) (Kind, string, formula.ParsedFormula, error) {
	if text == "" {
		return EmptyContent, "", nil, nil
	}

	if len(text) >= 2 && text[0] == '=' {
		parsed, err := formula.Parse(text[1:])
		if err != nil {
			return EmptyContent, "", nil, err
		}
		return FormulaContent, "", parsed, nil
	}

	return TextContent, text, nil, nil
}
