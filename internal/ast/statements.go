package ast

// Module is the root node of every tree the parser produces.
type Module struct {
	Base
	File string
	Body []Statement
}

func (m *Module) statementNode() {}
func (m *Module) Children() []Node {
	var c children
	c.addStmts(m.Body)
	return c
}

// Param is a function or lambda parameter.
type Param struct {
	Base
	Name           *Name
	Annotation     Expression
	Default        Expression
	Star           int // 1 for *args, 2 for **kwargs
	KeywordOnly    bool
	PositionalOnly bool
}

func (p *Param) expressionNode() {}
func (p *Param) Children() []Node {
	var c children
	c.addName(p.Name)
	c.add(p.Annotation, p.Default)
	return c
}

type FuncDef struct {
	Base
	Name       *Name
	Params     []*Param
	Returns    Expression
	Body       []Statement
	Decorators []Expression
	Async      bool
}

func (f *FuncDef) statementNode() {}
func (f *FuncDef) Children() []Node {
	var c children
	c.addExprs(f.Decorators)
	c.addName(f.Name)
	for _, p := range f.Params {
		c.add(p)
	}
	c.add(f.Returns)
	c.addStmts(f.Body)
	return c
}

// Param returns the parameter with the given name.
func (f *FuncDef) Param(name string) *Param {
	for _, p := range f.Params {
		if p.Name != nil && p.Name.Value == name {
			return p
		}
	}
	return nil
}

type ClassDef struct {
	Base
	Name       *Name
	Bases      []*Argument
	Body       []Statement
	Decorators []Expression
}

func (cd *ClassDef) statementNode() {}
func (cd *ClassDef) Children() []Node {
	var c children
	c.addExprs(cd.Decorators)
	c.addName(cd.Name)
	for _, b := range cd.Bases {
		c.add(b)
	}
	c.addStmts(cd.Body)
	return c
}

// Assign covers plain, chained and annotated assignments. For `x: int`
// Value is nil; an annotated assignment has exactly one target.
type Assign struct {
	Base
	Targets    []Expression
	Annotation Expression
	Value      Expression
}

func (a *Assign) statementNode() {}
func (a *Assign) Children() []Node {
	var c children
	c.addExprs(a.Targets)
	c.add(a.Annotation, a.Value)
	return c
}

type AugAssign struct {
	Base
	Target Expression
	Op     string
	Value  Expression
}

func (a *AugAssign) statementNode() {}
func (a *AugAssign) Children() []Node {
	var c children
	c.add(a.Target, a.Value)
	return c
}

type ExprStmt struct {
	Base
	Value Expression
}

func (e *ExprStmt) statementNode() {}
func (e *ExprStmt) Children() []Node {
	var c children
	c.add(e.Value)
	return c
}

type Return struct {
	Base
	Value Expression
}

func (r *Return) statementNode() {}
func (r *Return) Children() []Node {
	var c children
	c.add(r.Value)
	return c
}

// Keyword is a statement made of a single keyword: pass, break, continue.
type Keyword struct {
	Base
	Value string
}

func (k *Keyword) statementNode()   {}
func (k *Keyword) Children() []Node { return nil }

type Raise struct {
	Base
	Exc   Expression
	Cause Expression
}

func (r *Raise) statementNode() {}
func (r *Raise) Children() []Node {
	var c children
	c.add(r.Exc, r.Cause)
	return c
}

// Global is a global or nonlocal declaration.
type Global struct {
	Base
	Names    []*Name
	Nonlocal bool
}

func (g *Global) statementNode() {}
func (g *Global) Children() []Node {
	var c children
	for _, n := range g.Names {
		c.addName(n)
	}
	return c
}

type Del struct {
	Base
	Targets []Expression
}

func (d *Del) statementNode() {}
func (d *Del) Children() []Node {
	var c children
	c.addExprs(d.Targets)
	return c
}

type Assert struct {
	Base
	Test Expression
	Msg  Expression
}

func (a *Assert) statementNode() {}
func (a *Assert) Children() []Node {
	var c children
	c.add(a.Test, a.Msg)
	return c
}

// Alias is `name [as asname]` in an import.
type Alias struct {
	Base
	Name   string // dotted path
	AsName *Name
}

func (a *Alias) expressionNode() {}
func (a *Alias) Children() []Node {
	var c children
	c.addName(a.AsName)
	return c
}

// BoundName is the name an import binds in the importing scope.
func (a *Alias) BoundName() string {
	if a.AsName != nil {
		return a.AsName.Value
	}
	for i := 0; i < len(a.Name); i++ {
		if a.Name[i] == '.' {
			return a.Name[:i]
		}
	}
	return a.Name
}

type Import struct {
	Base
	Names []*Alias
}

func (im *Import) statementNode() {}
func (im *Import) Children() []Node {
	var c children
	for _, a := range im.Names {
		c.add(a)
	}
	return c
}

// ImportFrom is `from [.]module import names`. Star is set for `import *`.
type ImportFrom struct {
	Base
	Module string
	Level  int
	Names  []*Alias
	Star   bool
}

func (im *ImportFrom) statementNode() {}
func (im *ImportFrom) Children() []Node {
	var c children
	for _, a := range im.Names {
		c.add(a)
	}
	return c
}

type If struct {
	Base
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (i *If) statementNode() {}
func (i *If) Children() []Node {
	var c children
	c.add(i.Test)
	c.addStmts(i.Body)
	c.addStmts(i.Orelse)
	return c
}

type For struct {
	Base
	Target Expression
	Iter   Expression
	Body   []Statement
	Orelse []Statement
	Async  bool
}

func (f *For) statementNode() {}
func (f *For) Children() []Node {
	var c children
	c.add(f.Target, f.Iter)
	c.addStmts(f.Body)
	c.addStmts(f.Orelse)
	return c
}

type While struct {
	Base
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (w *While) statementNode() {}
func (w *While) Children() []Node {
	var c children
	c.add(w.Test)
	c.addStmts(w.Body)
	c.addStmts(w.Orelse)
	return c
}

// WithItem is `context [as target]`.
type WithItem struct {
	Base
	Context Expression
	Target  Expression
}

func (wi *WithItem) expressionNode() {}
func (wi *WithItem) Children() []Node {
	var c children
	c.add(wi.Context, wi.Target)
	return c
}

type With struct {
	Base
	Items []*WithItem
	Body  []Statement
	Async bool
}

func (w *With) statementNode() {}
func (w *With) Children() []Node {
	var c children
	for _, it := range w.Items {
		c.add(it)
	}
	c.addStmts(w.Body)
	return c
}

type ExceptHandler struct {
	Base
	Type Expression
	Name *Name
	Body []Statement
}

func (e *ExceptHandler) statementNode() {}
func (e *ExceptHandler) Children() []Node {
	var c children
	c.add(e.Type)
	c.addName(e.Name)
	c.addStmts(e.Body)
	return c
}

type Try struct {
	Base
	Body      []Statement
	Handlers  []*ExceptHandler
	Orelse    []Statement
	Finalbody []Statement
}

func (t *Try) statementNode() {}
func (t *Try) Children() []Node {
	var c children
	c.addStmts(t.Body)
	for _, h := range t.Handlers {
		c.add(h)
	}
	c.addStmts(t.Orelse)
	c.addStmts(t.Finalbody)
	return c
}
