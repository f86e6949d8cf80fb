package annotation

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// FindUnknownTypeVars returns the type variables referenced by an
// annotation in order of first appearance. Subscripts are searched
// element by element; slices are not type expressions and are skipped.
// Strings that do not parse are left to InferAnnotation to report.
func (e *Engine) FindUnknownTypeVars(ctx *analyzer.Context, node ast.Expression) []*ts.TypeVar {
	var found []*ts.TypeVar
	seen := set.New[*ts.TypeVar](0)

	var check func(n ast.Expression)
	check = func(n ast.Expression) {
		switch t := n.(type) {
		case *ast.Subscript:
			for _, el := range t.Index {
				if _, ok := el.(*ast.Slice); ok {
					continue
				}
				check(el)
			}
			return
		case *ast.List:
			for _, el := range t.Elts {
				check(el)
			}
			return
		case *ast.StringLit:
			if ref, err := parseForwardReference(ctx, t.Value); err == nil {
				check(ref)
			}
			return
		}
		for _, v := range ctx.InferNode(n).Values() {
			tv, ok := v.(*ts.TypeVar)
			if ok && seen.Insert(tv) {
				found = append(found, tv)
			}
		}
	}
	check(node)
	return found
}
