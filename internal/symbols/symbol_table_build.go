package symbols

import (
	"github.com/funvibe/pyhint/internal/ast"
)

// Build collects the bindings of a Module, ClassDef, FuncDef or Lambda.
// Nested compound statements are included, nested scopes are not.
func Build(node ast.Node, outer *SymbolTable) *SymbolTable {
	switch n := node.(type) {
	case *ast.Module:
		st := newSymbolTable(n, ScopeModule, outer)
		st.collect(n.Body)
		return st
	case *ast.ClassDef:
		st := newSymbolTable(n, ScopeClass, outer)
		st.collect(n.Body)
		return st
	case *ast.FuncDef:
		st := newSymbolTable(n, ScopeFunction, outer)
		st.params(n.Params)
		st.collect(n.Body)
		return st
	case *ast.Lambda:
		st := newSymbolTable(n, ScopeLambda, outer)
		st.params(n.Params)
		return st
	}
	return newSymbolTable(node, ScopeModule, outer)
}

func (s *SymbolTable) params(params []*ast.Param) {
	for _, p := range params {
		if p.Name == nil {
			continue
		}
		s.define(Symbol{
			Name:           p.Name.Value,
			Kind:           ParameterSymbol,
			DefinitionNode: p,
			Statement:      p,
			Pos:            p.Pos(),
		})
	}
}

func (s *SymbolTable) collect(body []ast.Statement) {
	for _, stmt := range body {
		s.statement(stmt)
	}
}

func (s *SymbolTable) statement(stmt ast.Statement) {
	switch st := stmt.(type) {
	case *ast.Assign:
		for _, t := range st.Targets {
			s.target(t, st, nil, false)
		}
		if st.Value != nil {
			s.walrus(st.Value, st)
		}
	case *ast.AugAssign:
		if name, ok := st.Target.(*ast.Name); ok && len(s.store[name.Value]) == 0 {
			s.target(name, st, nil, false)
		}
	case *ast.ExprStmt:
		s.walrus(st.Value, st)
	case *ast.For:
		s.target(st.Target, st, nil, false)
		s.collect(st.Body)
		s.collect(st.Orelse)
	case *ast.While:
		s.walrus(st.Test, st)
		s.collect(st.Body)
		s.collect(st.Orelse)
	case *ast.If:
		s.walrus(st.Test, st)
		s.collect(st.Body)
		s.collect(st.Orelse)
	case *ast.With:
		for _, it := range st.Items {
			if it.Target != nil {
				s.target(it.Target, st, nil, false)
			}
		}
		s.collect(st.Body)
	case *ast.Try:
		s.collect(st.Body)
		for _, h := range st.Handlers {
			if h.Name != nil {
				s.target(h.Name, h, nil, false)
			}
			s.collect(h.Body)
		}
		s.collect(st.Orelse)
		s.collect(st.Finalbody)
	case *ast.Import:
		for _, a := range st.Names {
			s.define(Symbol{Name: a.BoundName(), Kind: ImportSymbol, DefinitionNode: a, Statement: st, Pos: a.Pos()})
		}
	case *ast.ImportFrom:
		for _, a := range st.Names {
			s.define(Symbol{Name: a.BoundName(), Kind: ImportSymbol, DefinitionNode: a, Statement: st, Pos: a.Pos()})
		}
	case *ast.FuncDef:
		s.define(Symbol{Name: st.Name.Value, Kind: FunctionSymbol, DefinitionNode: st, Statement: st, Pos: st.Name.Pos()})
	case *ast.ClassDef:
		s.define(Symbol{Name: st.Name.Value, Kind: ClassSymbol, DefinitionNode: st, Statement: st, Pos: st.Name.Pos()})
	case *ast.Global:
		for _, n := range st.Names {
			s.globals[n.Value] = true
		}
	}
}

func (s *SymbolTable) target(t ast.Expression, stmt ast.Node, path []int, starred bool) {
	switch tt := t.(type) {
	case *ast.Name:
		s.define(Symbol{
			Name:           tt.Value,
			Kind:           VariableSymbol,
			DefinitionNode: tt,
			Statement:      stmt,
			Path:           path,
			Starred:        starred,
			Pos:            tt.Pos(),
		})
	case *ast.Tuple:
		s.targets(tt.Elts, stmt, path)
	case *ast.List:
		s.targets(tt.Elts, stmt, path)
	case *ast.Starred:
		s.target(tt.Value, stmt, path, true)
	}
}

func (s *SymbolTable) targets(elts []ast.Expression, stmt ast.Node, path []int) {
	for i, e := range elts {
		sub := append(append([]int(nil), path...), i)
		s.target(e, stmt, sub, false)
	}
}

// walrus binds assignment expressions found outside nested scopes.
func (s *SymbolTable) walrus(expr ast.Expression, stmt ast.Node) {
	ast.Walk(expr, func(n ast.Node) bool {
		switch e := n.(type) {
		case *ast.Lambda, *ast.Comprehension:
			return false
		case *ast.NamedExpr:
			s.define(Symbol{Name: e.Target.Value, Kind: VariableSymbol, DefinitionNode: e.Target, Statement: e, Pos: e.Target.Pos()})
		}
		return true
	})
}
