package annotation

import (
	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/parser"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// NoIndex selects the whole value of an annotation string.
const NoIndex = -1

// forwardReferenceNode parses text as a type expression and anchors it
// after the end of the module owning ctx, with ctx's scope node as its
// parent, so that names in it resolve against every binding of the scope.
// It returns nil when text does not parse, reporting A001 at the position
// of at.
func (e *Engine) forwardReferenceNode(ctx *analyzer.Context, text string, at ast.Node) ast.Expression {
	node, err := parseForwardReference(ctx, text)
	if err != nil {
		e.warn(diagnostics.ErrA001, at, "annotation %q is not a valid expression: %v", text, err)
		return nil
	}
	return node
}

// parseForwardReference is forwardReferenceNode without the diagnostic.
func parseForwardReference(ctx *analyzer.Context, text string) (ast.Expression, error) {
	node, err := parser.ParseExpression(text)
	if err != nil {
		return nil, err
	}
	scope := ctx.TreeNode()
	if mod := ast.EnclosingModule(scope); mod != nil {
		ast.Move(node, mod.End().Line)
	}
	node.SetParent(scope)
	return node, nil
}

// InferAnnotation returns the values node denotes. A node inferring to a
// single string is a forward reference and is parsed and inferred in
// turn. Anything other than exactly one value is reported and returned
// unchanged.
func (e *Engine) InferAnnotation(ctx *analyzer.Context, node ast.Expression) *ts.ValueSet {
	values := ctx.InferNode(node)
	if values.Len() != 1 {
		e.warn(diagnostics.ErrA003, node, "annotation should resolve to one value, got %d", values.Len())
		return values
	}
	inst, ok := values.Values()[0].(*ts.Instance)
	if !ok {
		return values
	}
	text, ok := inst.StringLiteral()
	if !ok {
		return values
	}
	ref := e.forwardReferenceNode(ctx, text, node)
	if ref == nil {
		return ts.NoValues
	}
	return ctx.InferNode(ref)
}

// InferAnnotationString parses text as an annotation and infers it. With
// index >= 0 the result is narrowed to fixed-arity tuples of more than
// index elements and the element at index is returned.
func (e *Engine) InferAnnotationString(ctx *analyzer.Context, text string, index int, at ast.Node) *ts.ValueSet {
	node := e.forwardReferenceNode(ctx, text, at)
	if node == nil {
		return ts.NoValues
	}
	values := ctx.InferNode(node)
	if index == NoIndex {
		return values
	}
	tuples := values.Filter(func(v ts.Value) bool {
		inst, ok := v.(*ts.Instance)
		return ok && inst.ArrayType == ts.ArrayTuple && inst.Len() >= index+1
	})
	if tuples.IsEmpty() {
		e.warn(diagnostics.ErrA006, at, "type comment %q has no element %d", text, index)
	}
	return tuples.SimpleGetItem(index)
}
