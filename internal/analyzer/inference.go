package analyzer

import (
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/token"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// InferNode returns the values expr may evaluate to in c.
func (c *Context) InferNode(expr ast.Expression) *ts.ValueSet {
	if expr == nil {
		return ts.NoValues
	}
	b := c.state.Builtins
	switch e := expr.(type) {
	case *ast.Name:
		return c.Lookup(e.Value, e.Pos())
	case *ast.Attribute:
		return c.inferAttribute(c.InferNode(e.Value), e.Attr.Value)
	case *ast.Subscript:
		return c.inferSubscript(e)
	case *ast.Call:
		return c.inferCall(e)
	case *ast.StringLit:
		if e.IsBytes() {
			return ts.NewValueSet(ts.NewLiteral(b.Bytes, e.Value))
		}
		if hasPrefix(e.Prefix, 'f') {
			return b.Str.ExecuteAnnotation()
		}
		return ts.NewValueSet(b.StrLiteral(e.Value))
	case *ast.NumberLit:
		switch e.Kind {
		case token.FloatNumber:
			return ts.NewValueSet(ts.NewLiteral(b.Float, e.Text))
		case token.ComplexNumber:
			return ts.NewValueSet(ts.NewLiteral(b.Complex, e.Text))
		}
		return ts.NewValueSet(ts.NewLiteral(b.Int, e.Text))
	case *ast.Constant:
		switch e.Value {
		case ast.ConstNone:
			return ts.NewValueSet(b.None)
		case ast.ConstEllipsis:
			return ts.NewValueSet(ts.Ellipsis)
		}
		return ts.NewValueSet(ts.NewLiteral(b.Bool, e.Value))
	case *ast.Tuple:
		return ts.NewValueSet(ts.NewSequence(b.Tuple, ts.ArrayTuple, c.inferElements(e.Elts)))
	case *ast.List:
		return ts.NewValueSet(ts.NewSequence(b.List, ts.ArrayList, c.inferElements(e.Elts)))
	case *ast.Set:
		return ts.NewValueSet(ts.NewSequence(b.Set, ts.ArraySet, c.inferElements(e.Elts)))
	case *ast.Dict:
		var keys, values []*ts.ValueSet
		for i, k := range e.Keys {
			if k == nil {
				continue
			}
			keys = append(keys, c.InferNode(k))
			values = append(values, c.InferNode(e.Values[i]))
		}
		return ts.NewValueSet(ts.NewDict(b.Dict, keys, values))
	case *ast.Comprehension:
		return c.inferComprehension(e)
	case *ast.UnaryOp:
		if e.Op == token.NOT {
			return b.Bool.ExecuteAnnotation()
		}
		return c.InferNode(e.Operand).Filter(func(v ts.Value) bool {
			inst, ok := v.(*ts.Instance)
			return ok && isNumeric(inst.Name())
		})
	case *ast.BinaryOp:
		return c.inferBinaryOp(e)
	case *ast.BoolOp:
		var parts []*ts.ValueSet
		for _, v := range e.Values {
			parts = append(parts, c.InferNode(v))
		}
		return ts.FromSets(parts...)
	case *ast.Compare:
		return b.Bool.ExecuteAnnotation()
	case *ast.IfExp:
		return c.InferNode(e.Body).Union(c.InferNode(e.Orelse))
	case *ast.Lambda:
		return ts.NewValueSet(c.declare(e))
	case *ast.NamedExpr:
		return c.InferNode(e.Value)
	case *ast.Starred:
		return c.InferNode(e.Value)
	}
	return ts.NoValues
}

func hasPrefix(prefix string, r rune) bool {
	for _, c := range prefix {
		if c == r {
			return true
		}
	}
	return false
}

// inferElements infers display elements, spreading starred ones.
func (c *Context) inferElements(elts []ast.Expression) []*ts.ValueSet {
	var out []*ts.ValueSet
	for _, e := range elts {
		if st, ok := e.(*ast.Starred); ok {
			out = append(out, c.InferNode(st.Value).MergeTypesOfIterate())
			continue
		}
		out = append(out, c.InferNode(e))
	}
	return out
}

func (c *Context) inferComprehension(e *ast.Comprehension) *ts.ValueSet {
	b := c.state.Builtins
	ctx := c
	for _, cl := range e.Clauses {
		locals := map[string]*ts.ValueSet{}
		bindTarget(locals, cl.Target, ctx.InferNode(cl.Iter).MergeTypesOfIterate())
		ctx = ctx.child(locals)
	}
	elt := ctx.InferNode(e.Elt).Classes()
	switch e.Kind {
	case ast.SetComp:
		return b.Set.Parameterize([]*ts.ValueSet{elt}, false).ExecuteAnnotation()
	case ast.DictComp:
		key := ctx.InferNode(e.Key).Classes()
		return b.Dict.Parameterize([]*ts.ValueSet{key, elt}, false).ExecuteAnnotation()
	case ast.GeneratorExp:
		return b.Iterator.Parameterize([]*ts.ValueSet{elt}, false).ExecuteAnnotation()
	}
	return b.List.Parameterize([]*ts.ValueSet{elt}, false).ExecuteAnnotation()
}

// bindTarget assigns values to the names of a target expression.
func bindTarget(locals map[string]*ts.ValueSet, target ast.Expression, values *ts.ValueSet) {
	switch t := target.(type) {
	case *ast.Name:
		locals[t.Value] = values
	case *ast.Tuple:
		for i, e := range t.Elts {
			bindTarget(locals, e, unpackIndex(values, i))
		}
	case *ast.List:
		for i, e := range t.Elts {
			bindTarget(locals, e, unpackIndex(values, i))
		}
	}
}

func isNumeric(name string) bool {
	return name == "int" || name == "float" || name == "complex" || name == "bool"
}

var numericRank = map[string]int{"bool": 0, "int": 1, "float": 2, "complex": 3}

func (c *Context) inferBinaryOp(e *ast.BinaryOp) *ts.ValueSet {
	b := c.state.Builtins
	left, right := c.InferNode(e.Left), c.InferNode(e.Right)
	if e.Op == token.PIPE && isTypeLike(left) && isTypeLike(right) {
		return ts.NewValueSet(b.Union(left, right))
	}
	var parts []*ts.ValueSet
	for _, l := range left.Values() {
		li, ok := l.(*ts.Instance)
		if !ok {
			continue
		}
		for _, r := range right.Values() {
			ri, ok := r.(*ts.Instance)
			if !ok {
				continue
			}
			parts = append(parts, c.arithmetic(e.Op, li, ri))
		}
	}
	return ts.FromSets(parts...)
}

func (c *Context) arithmetic(op string, l, r *ts.Instance) *ts.ValueSet {
	b := c.state.Builtins
	ln, rn := l.Name(), r.Name()
	if isNumeric(ln) && isNumeric(rn) {
		if op == token.SLASH && numericRank[ln] <= 1 && numericRank[rn] <= 1 {
			return b.Float.ExecuteAnnotation()
		}
		rank := numericRank[ln]
		if numericRank[rn] > rank {
			rank = numericRank[rn]
		}
		return []*ts.Class{b.Int, b.Int, b.Float, b.Complex}[rank].ExecuteAnnotation()
	}
	switch ln {
	case "str", "bytes":
		if op == token.PLUS || op == token.PERCENT || (op == token.ASTERISK && rn == "int") {
			return l.ClassValue().Base().ExecuteAnnotation()
		}
	case "list", "tuple":
		if op == token.PLUS && ln == rn {
			merged := ts.NewValueSet(l, r).MergeTypesOfIterate().Classes()
			return l.ClassValue().Base().Parameterize([]*ts.ValueSet{merged}, ln == "tuple").ExecuteAnnotation()
		}
		if op == token.ASTERISK && rn == "int" {
			return ts.NewValueSet(l)
		}
	}
	return ts.NoValues
}

// isTypeLike reports whether every value of vs can appear in a union.
func isTypeLike(vs *ts.ValueSet) bool {
	if vs.IsEmpty() {
		return false
	}
	for _, v := range vs.Values() {
		switch t := v.(type) {
		case ts.ClassValue, *ts.TypingForm, *ts.TypeVar:
		case *ts.Instance:
			if t.Name() != "NoneType" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
