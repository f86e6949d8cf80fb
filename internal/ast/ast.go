package ast

import (
	"github.com/funvibe/pyhint/internal/token"
)

// Node is the base interface for all syntax tree nodes.
type Node interface {
	GetToken() token.Token
	Pos() token.Position
	End() token.Position
	Parent() Node
	SetParent(p Node)
	Children() []Node
	base() *Base
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	// Comment returns the comment trailing the statement's header line.
	Comment() (token.Token, bool)
}

// Base carries the position and linkage shared by every node.
type Base struct {
	Token   token.Token    // first token of the node
	Stop    token.Position // position just past the node
	parent  Node
	comment *token.Token
}

func (b *Base) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

func (b *Base) Pos() token.Position { return b.Token.Pos() }
func (b *Base) End() token.Position { return b.Stop }
func (b *Base) Parent() Node        { return b.parent }
func (b *Base) SetParent(p Node)    { b.parent = p }
func (b *Base) base() *Base         { return b }

func (b *Base) SetEnd(pos token.Position) { b.Stop = pos }

func (b *Base) SetComment(tok token.Token) {
	c := tok
	b.comment = &c
}

func (b *Base) Comment() (token.Token, bool) {
	if b.comment == nil {
		return token.Token{}, false
	}
	return *b.comment, true
}

type children []Node

func (c *children) add(ns ...Node) {
	for _, n := range ns {
		if n != nil {
			*c = append(*c, n)
		}
	}
}

func (c *children) addName(n *Name) {
	if n != nil {
		*c = append(*c, n)
	}
}

func (c *children) addExprs(es []Expression) {
	for _, e := range es {
		c.add(e)
	}
}

func (c *children) addStmts(ss []Statement) {
	for _, s := range ss {
		c.add(s)
	}
}
