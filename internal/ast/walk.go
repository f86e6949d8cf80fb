package ast

import "github.com/funvibe/pyhint/internal/token"

// Walk visits node and its descendants depth-first in source order. When fn
// returns false the children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}

// LinkParents sets the parent pointer of every descendant of root.
func LinkParents(root Node) {
	Walk(root, func(n Node) bool {
		for _, child := range n.Children() {
			child.SetParent(n)
		}
		return true
	})
}

// Root follows parent links up to the top of the tree.
func Root(node Node) Node {
	for node != nil && node.Parent() != nil {
		node = node.Parent()
	}
	return node
}

// EnclosingModule returns the module containing node, or nil.
func EnclosingModule(node Node) *Module {
	m, _ := Root(node).(*Module)
	return m
}

// Move shifts every position in the subtree by lines.
func Move(node Node, lines int) {
	Walk(node, func(n Node) bool {
		b := n.base()
		b.Token.Line += lines
		b.Token.EndLine += lines
		b.Stop.Line += lines
		if b.comment != nil {
			b.comment.Line += lines
			b.comment.EndLine += lines
		}
		return true
	})
}

// StartToken returns the token a diagnostic about node should point at.
func StartToken(node Node) token.Token {
	if node == nil {
		return token.Token{}
	}
	return node.GetToken()
}

// FollowingCommentSameLine returns the text of the comment that trails the
// header line of node: the line ending in `:` for compound statements, the
// last line for simple ones.
func FollowingCommentSameLine(node Node) (string, bool) {
	stmt, ok := node.(Statement)
	if !ok {
		return "", false
	}
	tok, ok := stmt.Comment()
	if !ok {
		return "", false
	}
	return tok.Lexeme, true
}

// EnclosingStatement returns the innermost statement containing node.
func EnclosingStatement(node Node) Statement {
	for n := node; n != nil; n = n.Parent() {
		if s, ok := n.(Statement); ok {
			return s
		}
	}
	return nil
}

// Scope nodes own a namespace: modules, classes and functions.
func IsScope(node Node) bool {
	switch node.(type) {
	case *Module, *ClassDef, *FuncDef, *Lambda:
		return true
	}
	return false
}

// EnclosingScope returns the nearest scope node strictly above node.
func EnclosingScope(node Node) Node {
	if node == nil {
		return nil
	}
	for n := node.Parent(); n != nil; n = n.Parent() {
		if IsScope(n) {
			return n
		}
	}
	return nil
}

// AttachComment records tok as the header comment of node.
func AttachComment(node Node, tok token.Token) {
	if node != nil {
		node.base().SetComment(tok)
	}
}
