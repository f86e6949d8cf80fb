package analyzer

import (
	"fmt"

	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

type funcKind int

const (
	plainFunction funcKind = iota
	instanceMethod
	classMethod
	staticMethod
)

// Function is a function or lambda declared in source, optionally bound to
// a receiver.
type Function struct {
	node     ast.Node // *ast.FuncDef or *ast.Lambda
	parent   *Context
	class    *ts.Class
	kind     funcKind
	receiver ts.Value
	unbound  *Function
	bound    map[ts.Value]*Function
}

func (f *Function) Name() string {
	if def, ok := f.node.(*ast.FuncDef); ok {
		return def.Name.Value
	}
	return "<lambda>"
}

func (f *Function) String() string {
	if f.class != nil {
		return "def " + f.class.Name() + "." + f.Name()
	}
	return "def " + f.Name()
}

func (f *Function) Class() ts.Value {
	return f.parent.state.Builtins.Function
}

// ExecuteAnnotation calls the function without arguments.
func (f *Function) ExecuteAnnotation() *ts.ValueSet {
	return f.parent.state.Hinter.InferReturnTypes(f, NoArguments{})
}

// TreeNode returns the declaring node.
func (f *Function) TreeNode() ast.Node { return f.node }

// FuncDef returns the declaration, nil for lambdas.
func (f *Function) FuncDef() *ast.FuncDef {
	def, _ := f.node.(*ast.FuncDef)
	return def
}

func (f *Function) Params() []*ast.Param {
	switch n := f.node.(type) {
	case *ast.FuncDef:
		return n.Params
	case *ast.Lambda:
		return n.Params
	}
	return nil
}

// State returns the analysis state the function was declared in.
func (f *Function) State() *State { return f.parent.state }

// OwnerClass returns the class declaring the method, nil for functions.
func (f *Function) OwnerClass() *ts.Class { return f.class }

// IsBoundMethod reports whether the first parameter is supplied by the
// receiver.
func (f *Function) IsBoundMethod() bool {
	return f.receiver != nil
}

// Receiver returns the bound instance or class.
func (f *Function) Receiver() ts.Value { return f.receiver }

// DefaultParamContext is the context annotations of the function resolve
// in: the scope enclosing the declaration.
func (f *Function) DefaultParamContext() *Context {
	return f.parent
}

// BodyContext returns the context of the function body.
func (f *Function) BodyContext() *Context {
	return f.parent.state.scopeContext(f.node)
}

// Bind returns the method bound to receiver. Static methods are never
// bound.
func (f *Function) Bind(receiver ts.Value) *Function {
	if f.kind == staticMethod || f.kind == plainFunction {
		return f
	}
	if f.unbound != nil {
		return f.unbound.Bind(receiver)
	}
	if bm, ok := f.bound[receiver]; ok {
		return bm
	}
	if f.bound == nil {
		f.bound = make(map[ts.Value]*Function)
	}
	bm := &Function{node: f.node, parent: f.parent, class: f.class, kind: f.kind, receiver: receiver, unbound: f}
	f.bound[receiver] = bm
	return bm
}

// ReceiverBindings maps the type parameters of a generic receiver's class
// to its generic arguments.
func (f *Function) ReceiverBindings() *ts.Bindings {
	var cls ts.Value = f.receiver
	if inst, ok := f.receiver.(*ts.Instance); ok {
		cls = inst.ClassValue()
	}
	g, ok := cls.(ts.ClassValue)
	if !ok || f.class == nil {
		return nil
	}
	for _, anc := range g.MRO() {
		if anc.Base() != f.class {
			continue
		}
		if gc, ok := anc.(*ts.GenericClass); ok {
			return gc.ParamBindings()
		}
	}
	return nil
}

// CacheKey identifies the function and its receiver within a session.
func (f *Function) CacheKey() string {
	decl := f
	if f.unbound != nil {
		decl = f.unbound
	}
	key := fmt.Sprintf("%s#%d", f.Name(), f.parent.state.ValueID(decl))
	if f.receiver != nil {
		key += fmt.Sprintf("/%d", f.parent.state.ValueID(f.receiver))
	}
	return key
}
