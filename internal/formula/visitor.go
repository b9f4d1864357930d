package formula

import (
	"regexp"

	"github.com/expr-lang/expr/ast"
	"github.com/gosheetlab/sheetcore/internal/position"
)

// cellRefPattern distinguishes an identifier that is shaped like a cell
// reference (letters followed by digits, e.g. "A1", "AA12") from an
// ordinary, unsupported free variable such as "x".
var cellRefPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)

// referencedPositionVisitor walks the compiled AST (via expr.Patch) to
// recover, in syntactic declaration order, every cell this formula
// references. It also rewrites each reference node to its canonical A1
// form in place, so "a1" and "A1" resolve to the same variable during
// evaluation. Adapted from FindExternalRefsVisitor.go's pattern of
// collecting call arguments during an AST walk; here it collects
// identifier references instead of external_ref() call targets.
type referencedPositionVisitor struct {
	refs       []position.Position
	seen       map[position.Position]bool
	invalidRef bool
	skip       map[*ast.IdentifierNode]bool
}

func newReferencedPositionVisitor() *referencedPositionVisitor {
	return &referencedPositionVisitor{
		seen: map[position.Position]bool{},
		skip: map[*ast.IdentifierNode]bool{},
	}
}

func (v *referencedPositionVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.skip[callee] = true
		}

	case *ast.IdentifierNode:
		if v.skip[n] {
			return
		}
		if !cellRefPattern.MatchString(n.Value) {
			return
		}

		pos, err := position.Parse(n.Value)
		if err != nil {
			v.invalidRef = true
			return
		}

		n.Value = pos.String()

		if !v.seen[pos] {
			v.seen[pos] = true
			v.refs = append(v.refs, pos)
		}
	}
}
