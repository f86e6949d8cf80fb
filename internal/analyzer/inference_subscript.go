package analyzer

import (
	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

func (c *Context) inferSubscript(e *ast.Subscript) *ts.ValueSet {
	base := c.InferNode(e.Value)
	var parts []*ts.ValueSet
	for _, v := range base.Values() {
		parts = append(parts, c.subscriptValue(v, e))
	}
	return ts.FromSets(parts...)
}

func (c *Context) subscriptValue(v ts.Value, e *ast.Subscript) *ts.ValueSet {
	b := c.state.Builtins
	switch t := v.(type) {
	case *ts.Class:
		generics, homogeneous := c.typeArguments(e.Index, t == b.Tuple)
		switch t {
		case b.Tuple:
			return ts.NewValueSet(b.Form(ts.FormTuple).Subscript(generics, homogeneous))
		case b.Type:
			return ts.NewValueSet(b.Form(ts.FormType).Subscript(generics, false))
		}
		return ts.NewValueSet(t.Parameterize(generics, false))
	case *ts.SpecialForm:
		return c.subscriptForm(t, e.Index)
	case *ts.GenericClass:
		generics, _ := c.typeArguments(e.Index, false)
		return c.specialize(t, generics)
	case *ts.TypingForm:
		generics, _ := c.typeArguments(e.Index, false)
		return c.specialize(t, generics)
	case *ts.Instance:
		return c.indexInstance(t, e.Index)
	}
	return ts.NoValues
}

// typeArguments infers subscript elements as annotations. With
// allowEllipsis a trailing `...` marks a homogeneous tuple.
func (c *Context) typeArguments(index []ast.Expression, allowEllipsis bool) ([]*ts.ValueSet, bool) {
	if allowEllipsis && len(index) == 2 {
		if k, ok := index[1].(*ast.Constant); ok && k.Value == ast.ConstEllipsis {
			return []*ts.ValueSet{c.state.Hinter.InferAnnotation(c, index[0])}, true
		}
	}
	generics := make([]*ts.ValueSet, 0, len(index))
	for _, el := range index {
		if _, ok := el.(*ast.Slice); ok {
			continue
		}
		generics = append(generics, c.typeArgument(el))
	}
	return generics, false
}

// typeArgument infers one element; a list literal such as the parameters
// of Callable[[A, B], R] keeps its element annotations.
func (c *Context) typeArgument(el ast.Expression) *ts.ValueSet {
	if list, ok := el.(*ast.List); ok {
		elements := make([]*ts.ValueSet, len(list.Elts))
		for i, x := range list.Elts {
			elements[i] = c.state.Hinter.InferAnnotation(c, x)
		}
		return ts.NewValueSet(ts.NewSequence(c.state.Builtins.List, ts.ArrayList, elements))
	}
	return c.state.Hinter.InferAnnotation(c, el)
}

func (c *Context) subscriptForm(f *ts.SpecialForm, index []ast.Expression) *ts.ValueSet {
	switch f.Name() {
	case ts.FormAny, ts.FormTypeVar:
		return ts.NoValues
	case ts.FormAnnotated:
		if len(index) == 0 {
			return ts.NoValues
		}
		generics, _ := c.typeArguments(index[:1], false)
		return ts.NewValueSet(f.Subscript(generics, false))
	}
	generics, homogeneous := c.typeArguments(index, f.Name() == ts.FormTuple)
	return ts.NewValueSet(f.Subscript(generics, homogeneous))
}

// specialize binds the free type variables of an alias such as
// `Pair = Tuple[T, T]` to generics in order of first appearance.
func (c *Context) specialize(alias ts.Definer, generics []*ts.ValueSet) *ts.ValueSet {
	g, ok := alias.(ts.Generic)
	if !ok {
		return ts.NoValues
	}
	tvs := appendTypeVars(nil, g.Generics())
	bindings := ts.NewBindings()
	for i, tv := range tvs {
		if i < len(generics) {
			bindings.Bind(tv, generics[i])
		}
	}
	return alias.DefineGenerics(bindings)
}

func (c *Context) indexInstance(inst *ts.Instance, index []ast.Expression) *ts.ValueSet {
	if len(index) != 1 {
		return ts.NoValues
	}
	if _, ok := index[0].(*ast.Slice); ok {
		return ts.NewValueSet(inst)
	}
	if inst.Name() == "dict" {
		return inst.DictValues()
	}
	var parts []*ts.ValueSet
	for _, v := range c.InferNode(index[0]).Values() {
		i, ok := v.(*ts.Instance)
		if !ok {
			continue
		}
		if n, ok := i.IntLiteral(); ok {
			parts = append(parts, inst.SimpleGetItem(n))
		} else if i.Name() == "int" {
			parts = append(parts, ts.FromSets(inst.Iterate()...))
		}
	}
	return ts.FromSets(parts...)
}
