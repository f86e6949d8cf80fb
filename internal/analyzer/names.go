package analyzer

import (
	"strings"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/symbols"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// inferSymbol returns the values of one binding. c is the context owning
// the binding's scope.
func (c *Context) inferSymbol(sym symbols.Symbol) *ts.ValueSet {
	if !c.state.enter(sym.DefinitionNode) {
		return ts.NoValues
	}
	defer c.state.leave(sym.DefinitionNode)

	switch sym.Kind {
	case symbols.FunctionSymbol, symbols.ClassSymbol:
		return ts.NewValueSet(c.declare(sym.DefinitionNode))
	case symbols.ParameterSymbol:
		return c.inferParam(sym.DefinitionNode.(*ast.Param))
	case symbols.ImportSymbol:
		return c.inferImport(sym)
	}

	name, _ := sym.DefinitionNode.(*ast.Name)
	var values *ts.ValueSet
	switch st := sym.Statement.(type) {
	case *ast.Assign:
		if st.Annotation != nil {
			return c.state.Hinter.InferAnnotation(c, st.Annotation).ExecuteAnnotation()
		}
		if hint := c.state.Hinter.FindTypeFromCommentHint(c, st, name); !hint.IsEmpty() {
			return hint
		}
		values = c.InferNode(st.Value)
	case *ast.For:
		if hint := c.state.Hinter.FindTypeFromCommentHint(c, st, name); !hint.IsEmpty() {
			return hint
		}
		values = c.InferNode(st.Iter).MergeTypesOfIterate()
	case *ast.With:
		if hint := c.state.Hinter.FindTypeFromCommentHint(c, st, name); !hint.IsEmpty() {
			return hint
		}
		for _, it := range st.Items {
			if it.Target != nil && containsNode(it.Target, sym.DefinitionNode) {
				values = c.InferNode(it.Context)
			}
		}
	case *ast.ExceptHandler:
		return c.InferNode(st.Type).ExecuteAnnotation()
	case *ast.NamedExpr:
		return c.InferNode(st.Value)
	case *ast.AugAssign:
		return c.InferNode(st.Value)
	default:
		return ts.NoValues
	}
	path := sym.Path
	if sym.Starred && len(path) > 0 {
		path = path[:len(path)-1]
	}
	for _, i := range path {
		values = unpackIndex(values, i)
	}
	if sym.Starred {
		b := c.state.Builtins
		return b.List.Parameterize([]*ts.ValueSet{values.MergeTypesOfIterate().Classes()}, false).ExecuteAnnotation()
	}
	return values
}

func containsNode(root, node ast.Node) bool {
	found := false
	ast.Walk(root, func(n ast.Node) bool {
		if n == node {
			found = true
		}
		return !found
	})
	return found
}

// unpackIndex returns the values at position i of unpacking every member
// of values.
func unpackIndex(values *ts.ValueSet, i int) *ts.ValueSet {
	return values.Map(func(v ts.Value) *ts.ValueSet {
		inst, ok := v.(*ts.Instance)
		if !ok {
			return ts.NoValues
		}
		if inst.Len() >= 0 {
			return inst.SimpleGetItem(i)
		}
		return ts.FromSets(inst.Iterate()...)
	})
}

// inferParam returns the values of a parameter of an unexecuted function:
// the receiver of a method, else its annotated type.
func (c *Context) inferParam(p *ast.Param) *ts.ValueSet {
	fn := c.function
	if fn == nil {
		return ts.NoValues
	}
	if p.Annotation == nil && fn.class != nil && fn.Params()[0] == p && fn.kind != staticMethod {
		if fn.kind == classMethod {
			return ts.NewValueSet(fn.class)
		}
		return fn.class.ExecuteAnnotation()
	}
	return c.state.Hinter.InferParam(fn, p, false).ExecuteAnnotation()
}

func (c *Context) inferImport(sym symbols.Symbol) *ts.ValueSet {
	alias := sym.DefinitionNode.(*ast.Alias)
	b := c.state.Builtins
	switch st := sym.Statement.(type) {
	case *ast.Import:
		root := strings.SplitN(alias.Name, ".", 2)[0]
		target := root
		if alias.AsName != nil {
			target = alias.Name
		}
		switch {
		case c.state.isTypingModule(target):
			return ts.NewValueSet(b.Typing())
		case target == "builtins":
			return ts.NewValueSet(b.Module())
		}
	case *ast.ImportFrom:
		var mod *ts.Module
		switch {
		case st.Level > 0:
			return ts.NoValues
		case c.state.isTypingModule(st.Module):
			mod = b.Typing()
		case st.Module == "builtins":
			mod = b.Module()
		default:
			return ts.NoValues
		}
		if vs, ok := mod.Member(alias.Name); ok {
			return vs
		}
	}
	return ts.NoValues
}
