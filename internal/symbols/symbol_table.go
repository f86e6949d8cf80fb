// Package symbols records the names bound by a module, class body or
// function body.
package symbols

import (
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/token"
)

type ScopeType int

const (
	ScopeModule ScopeType = iota
	ScopeClass
	ScopeFunction
	ScopeLambda
)

func (s ScopeType) String() string {
	switch s {
	case ScopeModule:
		return "module"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	}
	return "unknown"
}

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	ClassSymbol
	ImportSymbol
)

// Symbol is one binding of a name.
type Symbol struct {
	Name string
	Kind SymbolKind
	// DefinitionNode is the Name node being bound, or the Param, FuncDef,
	// ClassDef or Alias for bindings without a target expression.
	DefinitionNode ast.Node
	// Statement is the statement that performs the binding.
	Statement ast.Node
	// Path indexes into nested tuple targets: `a, (b, c) = v` binds c at [1 1].
	Path []int
	// Starred is set for `*rest` targets.
	Starred bool
	Pos     token.Position
}

// SymbolTable holds the bindings of one scope.
type SymbolTable struct {
	node      ast.Node
	scopeType ScopeType
	store     map[string][]Symbol
	names     []string
	globals   map[string]bool
	outer     *SymbolTable
}

func newSymbolTable(node ast.Node, scopeType ScopeType, outer *SymbolTable) *SymbolTable {
	return &SymbolTable{
		node:      node,
		scopeType: scopeType,
		store:     make(map[string][]Symbol),
		globals:   make(map[string]bool),
		outer:     outer,
	}
}

func (s *SymbolTable) Node() ast.Node       { return s.node }
func (s *SymbolTable) ScopeType() ScopeType { return s.scopeType }

// Outer returns the enclosing scope, nil for a module.
func (s *SymbolTable) Outer() *SymbolTable { return s.outer }

func (s *SymbolTable) define(sym Symbol) {
	if _, ok := s.store[sym.Name]; !ok {
		s.names = append(s.names, sym.Name)
	}
	s.store[sym.Name] = append(s.store[sym.Name], sym)
}

// Names returns the bound names in order of first binding.
func (s *SymbolTable) Names() []string {
	return s.names
}

// Symbols returns every binding of name in source order.
func (s *SymbolTable) Symbols(name string) []Symbol {
	return s.store[name]
}

// IsGlobal reports whether name was declared global or nonlocal here.
func (s *SymbolTable) IsGlobal(name string) bool {
	return s.globals[name]
}

// Find returns the bindings of name visible at pos: bindings of this scope
// that start before pos, else every binding of the nearest enclosing scope
// that defines the name. Class scopes are invisible from nested scopes. A
// zero pos disables the position filter.
func (s *SymbolTable) Find(name string, pos token.Position) (*SymbolTable, []Symbol) {
	if s.globals[name] {
		root := s
		for root.outer != nil {
			root = root.outer
		}
		if root != s {
			return root.Find(name, token.Position{})
		}
	}
	if syms := s.before(name, pos); len(syms) > 0 {
		return s, syms
	}
	for outer := s.outer; outer != nil; outer = outer.outer {
		if outer.scopeType == ScopeClass {
			continue
		}
		if syms := outer.store[name]; len(syms) > 0 {
			return outer, syms
		}
	}
	return nil, nil
}

func (s *SymbolTable) before(name string, pos token.Position) []Symbol {
	syms := s.store[name]
	if pos == (token.Position{}) {
		return syms
	}
	var out []Symbol
	for _, sym := range syms {
		if sym.Pos.Before(pos) {
			out = append(out, sym)
		}
	}
	return out
}
