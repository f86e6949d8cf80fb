package analyzer

import (
	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// declare returns the value of a class or function declaration in c. The
// value is created once per node so identity is stable.
func (c *Context) declare(node ast.Node) ts.Value {
	if v, ok := c.state.defs[node]; ok {
		return v
	}
	switch n := node.(type) {
	case *ast.ClassDef:
		return c.declareClass(n)
	case *ast.FuncDef:
		fn := &Function{node: n, parent: c, kind: methodKind(c, n)}
		if c.class != nil {
			fn.class = c.class
		}
		c.state.defs[n] = fn
		return fn
	case *ast.Lambda:
		fn := &Function{node: n, parent: c}
		c.state.defs[n] = fn
		return fn
	}
	return nil
}

func methodKind(c *Context, def *ast.FuncDef) funcKind {
	if c.class == nil {
		return plainFunction
	}
	for _, d := range def.Decorators {
		if name, ok := d.(*ast.Name); ok {
			switch name.Value {
			case "staticmethod":
				return staticMethod
			case "classmethod":
				return classMethod
			}
		}
	}
	return instanceMethod
}

func (c *Context) declareClass(def *ast.ClassDef) *ts.Class {
	b := c.state.Builtins
	cls := ts.NewClass(def.Name.Value, "__main__")
	cls.Decl = def
	cls.Meta = b.Type
	c.state.defs[def] = cls

	var params []*ts.TypeVar
	explicit := false
	for _, arg := range def.Bases {
		if arg.Keyword != nil || arg.Star != 0 {
			continue
		}
		for _, v := range c.InferNode(arg.Value).Values() {
			switch base := v.(type) {
			case ts.ClassValue:
				if base.Base() == cls {
					continue
				}
				cls.Bases = append(cls.Bases, base)
				if g, ok := base.(*ts.GenericClass); ok && !explicit {
					params = appendTypeVars(params, g.Generics())
				}
			case *ts.TypingForm:
				if base.Name() == ts.FormGeneric || base.Name() == ts.FormProtocol {
					if !explicit {
						params = nil
					}
					explicit = true
					params = appendTypeVars(params, base.Generics())
				}
			}
		}
	}
	if len(cls.Bases) == 0 {
		cls.Bases = []ts.ClassValue{b.Object}
	}
	cls.Params = params
	return cls
}

// appendTypeVars appends the type variables of sets not already in tvs.
func appendTypeVars(tvs []*ts.TypeVar, sets []*ts.ValueSet) []*ts.TypeVar {
	for _, s := range sets {
		for _, v := range s.Values() {
			tv, ok := v.(*ts.TypeVar)
			if !ok {
				continue
			}
			dup := false
			for _, seen := range tvs {
				if seen == tv {
					dup = true
				}
			}
			if !dup {
				tvs = append(tvs, tv)
			}
		}
	}
	return tvs
}

// declareTypeVar creates the type variable of a TypeVar(...) call.
func (c *Context) declareTypeVar(call *ast.Call) *ts.ValueSet {
	if v, ok := c.state.defs[call]; ok {
		return ts.NewValueSet(v)
	}
	var tv *ts.TypeVar
	for i, arg := range call.Args {
		if arg.Star != 0 {
			continue
		}
		if i == 0 && arg.Keyword == nil {
			name, ok := stringLiteral(c.InferNode(arg.Value))
			if !ok {
				return ts.NoValues
			}
			tv = ts.NewTypeVar(name)
			tv.Decl = call
			continue
		}
		if tv == nil {
			return ts.NoValues
		}
		if arg.Keyword == nil {
			tv.Constraints = append(tv.Constraints, c.state.Hinter.InferAnnotation(c, arg.Value))
			continue
		}
		switch arg.Keyword.Value {
		case "bound":
			tv.Bound = c.state.Hinter.InferAnnotation(c, arg.Value)
		case "covariant":
			if isTrue(arg.Value) {
				tv.Variance = ts.Covariant
			}
		case "contravariant":
			if isTrue(arg.Value) {
				tv.Variance = ts.Contravariant
			}
		}
	}
	if tv == nil {
		return ts.NoValues
	}
	c.state.defs[call] = tv
	return ts.NewValueSet(tv)
}

func stringLiteral(vs *ts.ValueSet) (string, bool) {
	if vs.Len() != 1 {
		return "", false
	}
	inst, ok := vs.Values()[0].(*ts.Instance)
	if !ok {
		return "", false
	}
	return inst.StringLiteral()
}

func isTrue(e ast.Expression) bool {
	k, ok := e.(*ast.Constant)
	return ok && k.Value == ast.ConstTrue
}
