package ast

import "github.com/funvibe/pyhint/internal/token"

// Name is an identifier reference or binding.
type Name struct {
	Base
	Value string
}

func (n *Name) expressionNode()  {}
func (n *Name) Children() []Node { return nil }

// Attribute is `value.attr`.
type Attribute struct {
	Base
	Value Expression
	Attr  *Name
}

func (a *Attribute) expressionNode() {}
func (a *Attribute) Children() []Node {
	var c children
	c.add(a.Value)
	c.addName(a.Attr)
	return c
}

// Subscript is `value[index, ...]`. Index holds the comma separated
// elements in order; a lone element without a trailing comma is the only
// entry.
type Subscript struct {
	Base
	Value Expression
	Index []Expression
}

func (s *Subscript) expressionNode() {}
func (s *Subscript) Children() []Node {
	var c children
	c.add(s.Value)
	c.addExprs(s.Index)
	return c
}

// Slice is `lower:upper:step` inside a subscript.
type Slice struct {
	Base
	Lower Expression
	Upper Expression
	Step  Expression
}

func (s *Slice) expressionNode() {}
func (s *Slice) Children() []Node {
	var c children
	c.add(s.Lower, s.Upper, s.Step)
	return c
}

// StringLit is one or more adjacent string literals.
type StringLit struct {
	Base
	Value  string
	Prefix string
}

func (s *StringLit) expressionNode()  {}
func (s *StringLit) Children() []Node { return nil }

func (s *StringLit) IsBytes() bool {
	return token.StringLiteral{Prefix: s.Prefix}.IsBytes()
}

type NumberLit struct {
	Base
	Kind token.NumberKind
	Text string
}

func (n *NumberLit) expressionNode()  {}
func (n *NumberLit) Children() []Node { return nil }

// Constant is None, True, False or the Ellipsis literal.
type Constant struct {
	Base
	Value string
}

func (c *Constant) expressionNode()  {}
func (c *Constant) Children() []Node { return nil }

const (
	ConstNone     = "None"
	ConstTrue     = "True"
	ConstFalse    = "False"
	ConstEllipsis = "..."
)

type Tuple struct {
	Base
	Elts          []Expression
	Parenthesized bool
}

func (t *Tuple) expressionNode() {}
func (t *Tuple) Children() []Node {
	var c children
	c.addExprs(t.Elts)
	return c
}

type List struct {
	Base
	Elts []Expression
}

func (l *List) expressionNode() {}
func (l *List) Children() []Node {
	var c children
	c.addExprs(l.Elts)
	return c
}

type Set struct {
	Base
	Elts []Expression
}

func (s *Set) expressionNode() {}
func (s *Set) Children() []Node {
	var c children
	c.addExprs(s.Elts)
	return c
}

// Dict is a dict display. A nil key marks a `**mapping` entry.
type Dict struct {
	Base
	Keys   []Expression
	Values []Expression
}

func (d *Dict) expressionNode() {}
func (d *Dict) Children() []Node {
	var c children
	for i := range d.Values {
		c.add(d.Keys[i], d.Values[i])
	}
	return c
}

// Argument is one argument of a call or class header.
type Argument struct {
	Base
	Keyword *Name // set for `name=value`
	Value   Expression
	Star    int // 1 for *args, 2 for **kwargs
}

func (a *Argument) expressionNode() {}
func (a *Argument) Children() []Node {
	var c children
	c.addName(a.Keyword)
	c.add(a.Value)
	return c
}

type Call struct {
	Base
	Func Expression
	Args []*Argument
}

func (cl *Call) expressionNode() {}
func (cl *Call) Children() []Node {
	var c children
	c.add(cl.Func)
	for _, a := range cl.Args {
		c.add(a)
	}
	return c
}

type UnaryOp struct {
	Base
	Op      string
	Operand Expression
}

func (u *UnaryOp) expressionNode() {}
func (u *UnaryOp) Children() []Node {
	var c children
	c.add(u.Operand)
	return c
}

type BinaryOp struct {
	Base
	Left  Expression
	Op    string
	Right Expression
}

func (b *BinaryOp) expressionNode() {}
func (b *BinaryOp) Children() []Node {
	var c children
	c.add(b.Left, b.Right)
	return c
}

// BoolOp is a chain of `and` or `or`.
type BoolOp struct {
	Base
	Op     string
	Values []Expression
}

func (b *BoolOp) expressionNode() {}
func (b *BoolOp) Children() []Node {
	var c children
	c.addExprs(b.Values)
	return c
}

type Compare struct {
	Base
	Left        Expression
	Ops         []string
	Comparators []Expression
}

func (cm *Compare) expressionNode() {}
func (cm *Compare) Children() []Node {
	var c children
	c.add(cm.Left)
	c.addExprs(cm.Comparators)
	return c
}

// IfExp is `body if test else orelse`.
type IfExp struct {
	Base
	Test   Expression
	Body   Expression
	Orelse Expression
}

func (i *IfExp) expressionNode() {}
func (i *IfExp) Children() []Node {
	var c children
	c.add(i.Body, i.Test, i.Orelse)
	return c
}

type Lambda struct {
	Base
	Params []*Param
	Body   Expression
}

func (l *Lambda) expressionNode() {}
func (l *Lambda) Children() []Node {
	var c children
	for _, p := range l.Params {
		c.add(p)
	}
	c.add(l.Body)
	return c
}

// Starred is `*value` in a display or assignment target.
type Starred struct {
	Base
	Value Expression
}

func (s *Starred) expressionNode() {}
func (s *Starred) Children() []Node {
	var c children
	c.add(s.Value)
	return c
}

// NamedExpr is `target := value`.
type NamedExpr struct {
	Base
	Target *Name
	Value  Expression
}

func (n *NamedExpr) expressionNode() {}
func (n *NamedExpr) Children() []Node {
	var c children
	c.addName(n.Target)
	c.add(n.Value)
	return c
}

type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	DictComp
	GeneratorExp
)

// CompClause is one `for target in iter if cond` clause.
type CompClause struct {
	Base
	Target Expression
	Iter   Expression
	Ifs    []Expression
	Async  bool
}

func (cc *CompClause) expressionNode() {}
func (cc *CompClause) Children() []Node {
	var c children
	c.add(cc.Target, cc.Iter)
	c.addExprs(cc.Ifs)
	return c
}

// Comprehension covers list, set and dict comprehensions and generator
// expressions. Key is only set for dict comprehensions.
type Comprehension struct {
	Base
	Kind    ComprehensionKind
	Key     Expression
	Elt     Expression
	Clauses []*CompClause
}

func (cp *Comprehension) expressionNode() {}
func (cp *Comprehension) Children() []Node {
	var c children
	c.add(cp.Key, cp.Elt)
	for _, cl := range cp.Clauses {
		c.add(cl)
	}
	return c
}

type Await struct {
	Base
	Value Expression
}

func (a *Await) expressionNode() {}
func (a *Await) Children() []Node {
	var c children
	c.add(a.Value)
	return c
}

type Yield struct {
	Base
	Value Expression
	From  bool
}

func (y *Yield) expressionNode() {}
func (y *Yield) Children() []Node {
	var c children
	c.add(y.Value)
	return c
}
