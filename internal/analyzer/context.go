package analyzer

import (
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/symbols"
	"github.com/funvibe/pyhint/internal/token"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// Context is a scope in which names are resolved: a module, a class body,
// a function body or a comprehension.
type Context struct {
	state    *State
	node     ast.Node
	scope    *symbols.SymbolTable
	parent   *Context
	class    *ts.Class
	function *Function
	// locals override scope lookups; comprehensions bind their targets here.
	locals map[string]*ts.ValueSet
}

func (c *Context) State() *State { return c.state }

// TreeNode returns the scope node of the context.
func (c *Context) TreeNode() ast.Node { return c.node }

func (c *Context) Parent() *Context { return c.parent }

// Scope returns the symbol table of the context.
func (c *Context) Scope() *symbols.SymbolTable { return c.scope }

// Function returns the function whose body this context is, if any.
func (c *Context) Function() *Function { return c.function }

// Class returns the class whose body this context is, if any.
func (c *Context) Class() *ts.Class { return c.class }

// Module returns the module context.
func (c *Context) Module() *Context {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// FunctionContext returns the body context of a function declared in c.
func (c *Context) FunctionContext(def *ast.FuncDef) *Context {
	return c.state.scopeContext(def)
}

// ClassContext returns the body context of a class declared in c.
func (c *Context) ClassContext(def *ast.ClassDef) *Context {
	return c.state.scopeContext(def)
}

// FunctionValue returns the value of a function declared in c.
func (c *Context) FunctionValue(def ast.Node) *Function {
	fn, _ := c.declare(def).(*Function)
	return fn
}

// ClassValue returns the value of a class declared in c.
func (c *Context) ClassValue(def *ast.ClassDef) *ts.Class {
	cls, _ := c.declare(def).(*ts.Class)
	return cls
}

// Lookup resolves name as if it appeared at pos. A zero pos sees every
// binding of the scope.
func (c *Context) Lookup(name string, pos token.Position) *ts.ValueSet {
	for ctx := c; ctx != nil && ctx.locals != nil; ctx = ctx.parent {
		if vs, ok := ctx.locals[name]; ok {
			return vs
		}
	}
	scope, syms := c.scope.Find(name, pos)
	if scope == nil {
		if vs, ok := c.state.Builtins.Lookup(name); ok {
			return vs
		}
		return ts.NoValues
	}
	owner := c.contextFor(scope)
	return owner.inferSymbol(syms[len(syms)-1])
}

// contextFor finds the context owning scope along the parent chain.
func (c *Context) contextFor(scope *symbols.SymbolTable) *Context {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.scope == scope {
			return ctx
		}
	}
	return c.state.scopeContext(scope.Node())
}

// child creates a comprehension context binding names to values.
func (c *Context) child(locals map[string]*ts.ValueSet) *Context {
	return &Context{state: c.state, node: c.node, scope: c.scope, parent: c, class: c.class, function: c.function, locals: locals}
}

// Attribute resolves name on v the way `v.name` would.
func (c *Context) Attribute(v ts.Value, name string) *ts.ValueSet {
	return c.inferAttribute(ts.NewValueSet(v), name)
}

// InferSymbol returns the values of a binding of c's scope.
func (c *Context) InferSymbol(sym symbols.Symbol) *ts.ValueSet {
	return c.inferSymbol(sym)
}
