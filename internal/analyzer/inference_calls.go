package analyzer

import (
	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

func (c *Context) inferCall(call *ast.Call) *ts.ValueSet {
	if !c.state.enter(call) {
		return ts.NoValues
	}
	defer c.state.leave(call)

	callee := c.InferNode(call.Func)
	var parts []*ts.ValueSet
	for _, v := range callee.Values() {
		parts = append(parts, c.callValue(v, call))
	}
	return ts.FromSets(parts...)
}

func (c *Context) callValue(v ts.Value, call *ast.Call) *ts.ValueSet {
	hinter := c.state.Hinter
	switch fn := v.(type) {
	case *ts.SpecialForm:
		if fn.Name() == ts.FormTypeVar {
			return c.declareTypeVar(call)
		}
		return ts.NoValues
	case *Function:
		return hinter.InferReturnTypes(fn, NewTreeArguments(c, call))
	case *ts.CallableInstance:
		generics := fn.Generics()
		if len(generics) != 2 {
			return ts.NoValues
		}
		return hinter.InferReturnForCallable(NewTreeArguments(c, call), generics[0], generics[1])
	case *ts.Class:
		if fn == c.state.Builtins.Type && len(call.Args) == 1 {
			return c.InferNode(call.Args[0].Value).Classes()
		}
		return fn.ExecuteAnnotation()
	case *ts.GenericClass:
		return fn.ExecuteAnnotation()
	}
	return ts.NoValues
}

// inferAttribute looks name up on every value of values.
func (c *Context) inferAttribute(values *ts.ValueSet, name string) *ts.ValueSet {
	return values.Map(func(v ts.Value) *ts.ValueSet {
		switch t := v.(type) {
		case *ts.Module:
			if vs, ok := t.Member(name); ok {
				return vs
			}
		case ts.ClassValue:
			return c.classMember(t, name, t)
		case *ts.Instance:
			return c.classMember(t.ClassValue(), name, t)
		}
		return ts.NoValues
	})
}

// classMember resolves name along the MRO of cls. Functions found on the
// class are bound to receiver.
func (c *Context) classMember(cls ts.ClassValue, name string, receiver ts.Value) *ts.ValueSet {
	for _, anc := range cls.MRO() {
		base := anc.Base()
		var found *ts.ValueSet
		if def, ok := base.Decl.(*ast.ClassDef); ok {
			body := c.state.scopeContext(def)
			if body == nil || len(body.scope.Symbols(name)) == 0 {
				continue
			}
			syms := body.scope.Symbols(name)
			found = body.inferSymbol(syms[len(syms)-1])
		} else if vs, ok := base.Members[name]; ok {
			found = vs
		} else {
			continue
		}
		return found.Map(func(v ts.Value) *ts.ValueSet {
			fn, ok := v.(*Function)
			if !ok {
				return ts.NewValueSet(v)
			}
			switch {
			case fn.kind == classMethod:
				return ts.NewValueSet(fn.Bind(cls))
			case fn.kind == instanceMethod && receiver != cls:
				return ts.NewValueSet(fn.Bind(receiver))
			}
			return ts.NewValueSet(fn)
		})
	}
	return ts.NoValues
}
