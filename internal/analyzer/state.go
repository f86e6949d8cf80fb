// Package analyzer infers the values of Python expressions from literals,
// class and function declarations, imports of typing and annotations.
// Annotation semantics are delegated to a Hinter.
package analyzer

import (
	"fmt"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/symbols"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// DefaultMaxDepth bounds nested inference of names and calls.
const DefaultMaxDepth = 256

// Hinter answers annotation questions for the inference engine.
type Hinter interface {
	// InferAnnotation returns the values an annotation node denotes.
	InferAnnotation(ctx *Context, node ast.Expression) *ts.ValueSet
	// InferParam returns the annotated types of a parameter.
	InferParam(fn *Function, param *ast.Param, ignoreStars bool) *ts.ValueSet
	// InferReturnTypes returns the values a call of fn with args produces.
	InferReturnTypes(fn *Function, args Arguments) *ts.ValueSet
	// InferReturnForCallable returns the result of calling a Callable
	// instance with args.
	InferReturnForCallable(args Arguments, paramValues, resultValues *ts.ValueSet) *ts.ValueSet
	// FindTypeFromCommentHint returns the values a `# type:` comment on an
	// assignment, for or with statement gives name.
	FindTypeFromCommentHint(ctx *Context, stmt ast.Node, name *ast.Name) *ts.ValueSet
}

type noHints struct{}

func (noHints) InferAnnotation(ctx *Context, node ast.Expression) *ts.ValueSet {
	return ctx.InferNode(node)
}
func (noHints) InferParam(*Function, *ast.Param, bool) *ts.ValueSet { return ts.NoValues }
func (noHints) InferReturnTypes(*Function, Arguments) *ts.ValueSet  { return ts.NoValues }
func (noHints) InferReturnForCallable(Arguments, *ts.ValueSet, *ts.ValueSet) *ts.ValueSet {
	return ts.NoValues
}
func (noHints) FindTypeFromCommentHint(*Context, ast.Node, *ast.Name) *ts.ValueSet {
	return ts.NoValues
}

// State is shared by every context of one analysis session. It is not safe
// for concurrent use.
type State struct {
	Builtins      *ts.Builtins
	Sink          diagnostics.Sink
	Hinter        Hinter
	TypingModules []string
	MaxDepth      int

	defs          map[ast.Node]ts.Value
	contexts      map[ast.Node]*Context
	classContexts map[*ts.Class]*Context
	inferring     map[any]bool
	ids           map[ts.Value]int
	depth         int
}

func NewState(sink diagnostics.Sink) *State {
	if sink == nil {
		sink = diagnostics.Discard
	}
	return &State{
		Builtins:      ts.NewBuiltins(),
		Sink:          sink,
		Hinter:        noHints{},
		TypingModules: []string{"typing", "typing_extensions"},
		MaxDepth:      DefaultMaxDepth,
		defs:          make(map[ast.Node]ts.Value),
		contexts:      make(map[ast.Node]*Context),
		classContexts: make(map[*ts.Class]*Context),
		inferring:     make(map[any]bool),
		ids:           make(map[ts.Value]int),
	}
}

// ValueID returns a session-stable number for v, used to build cache keys.
func (s *State) ValueID(v ts.Value) int {
	id, ok := s.ids[v]
	if !ok {
		id = len(s.ids) + 1
		s.ids[v] = id
	}
	return id
}

// SetKey renders the identity of a value set for cache keys.
func (s *State) SetKey(vs *ts.ValueSet) string {
	key := "{"
	for i, v := range vs.Values() {
		if i > 0 {
			key += ","
		}
		key += fmt.Sprint(s.ValueID(v))
	}
	return key + "}"
}

// ModuleContext returns the context of a module, creating it on first use.
func (s *State) ModuleContext(mod *ast.Module) *Context {
	if ctx, ok := s.contexts[mod]; ok {
		return ctx
	}
	ast.LinkParents(mod)
	ctx := &Context{state: s, node: mod, scope: symbols.Build(mod, nil)}
	s.contexts[mod] = ctx
	return ctx
}

// ContextOf returns the context of the scope enclosing node.
func (s *State) ContextOf(node ast.Node) *Context {
	scope := ast.EnclosingScope(node)
	if scope == nil {
		if mod, ok := node.(*ast.Module); ok {
			return s.ModuleContext(mod)
		}
		return nil
	}
	return s.scopeContext(scope)
}

// scopeContext returns the definition context of a scope node.
func (s *State) scopeContext(node ast.Node) *Context {
	if ctx, ok := s.contexts[node]; ok {
		return ctx
	}
	if mod, ok := node.(*ast.Module); ok {
		return s.ModuleContext(mod)
	}
	parent := s.ContextOf(node)
	if parent == nil {
		return nil
	}
	ctx := &Context{state: s, node: node, parent: parent, scope: symbols.Build(node, parent.scope)}
	switch n := node.(type) {
	case *ast.ClassDef:
		if c, ok := parent.declare(n).(*ts.Class); ok {
			ctx.class = c
			s.classContexts[c] = ctx
		}
	case *ast.FuncDef, *ast.Lambda:
		if fn, ok := parent.declare(n).(*Function); ok {
			ctx.function = fn
		}
	}
	s.contexts[node] = ctx
	return ctx
}

// enter guards against runaway recursion through key.
func (s *State) enter(key any) bool {
	if s.inferring[key] || s.depth >= s.MaxDepth {
		return false
	}
	s.inferring[key] = true
	s.depth++
	return true
}

func (s *State) leave(key any) {
	delete(s.inferring, key)
	s.depth--
}

func (s *State) isTypingModule(name string) bool {
	for _, m := range s.TypingModules {
		if m == name {
			return true
		}
	}
	return false
}
