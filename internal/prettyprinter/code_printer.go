package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/token"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"or":  3,
	"and": 4,
	"not": 5,
	"|":   7,
	"^":   8,
	"&":   9,
	"<<":  10,
	">>":  10,
	"+":   11,
	"-":   11,
	"*":   12,
	"/":   12,
	"//":  12,
	"%":   12,
	"@":   12,
	"**":  14,
}

const (
	precLambda  = 1
	precIfExp   = 2
	precCompare = 6
	precUnary   = 13
	precAwait   = 15
	precAtom    = 16
)

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return precAtom
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"**": true,
}

type CodePrinter struct {
	buf bytes.Buffer
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

// Code renders an expression as normalized source text.
func Code(node ast.Node) string {
	p := NewCodePrinter()
	p.Print(node)
	return p.String()
}

func (p *CodePrinter) Print(node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDef:
		p.printSignature(n)
	case *ast.Param:
		p.printParam(n)
	case ast.Expression:
		p.printExpr(n, 0, false)
	default:
		p.write("<?>")
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	prec := precedenceOf(expr)
	needParens := prec < parentPrec
	if b, ok := expr.(*ast.BinaryOp); ok && prec == parentPrec {
		// For same precedence, check associativity
		if isRight != rightAssoc[b.Op] {
			needParens = true
		}
	}
	if needParens {
		p.write("(")
	}
	p.printBare(expr, prec)
	if needParens {
		p.write(")")
	}
}

func precedenceOf(expr ast.Expression) int {
	switch e := expr.(type) {
	case *ast.Lambda:
		return precLambda
	case *ast.IfExp:
		return precIfExp
	case *ast.BoolOp:
		return getPrecedence(e.Op)
	case *ast.UnaryOp:
		if e.Op == "not" {
			return getPrecedence("not")
		}
		return precUnary
	case *ast.Compare:
		return precCompare
	case *ast.BinaryOp:
		return getPrecedence(e.Op)
	case *ast.Await:
		return precAwait
	case *ast.Tuple:
		if !e.Parenthesized {
			return 0
		}
	case *ast.NamedExpr, *ast.Yield, *ast.Starred:
		return 0
	}
	return precAtom
}

func (p *CodePrinter) printBare(expr ast.Expression, prec int) {
	switch e := expr.(type) {
	case *ast.Name:
		p.write(e.Value)
	case *ast.Constant:
		p.write(e.Value)
	case *ast.NumberLit:
		p.write(e.Text)
	case *ast.StringLit:
		p.write(e.Prefix)
		p.write(strconv.Quote(e.Value))
	case *ast.Attribute:
		p.printExpr(e.Value, precAtom, false)
		p.write(".")
		p.write(e.Attr.Value)
	case *ast.Subscript:
		p.printExpr(e.Value, precAtom, false)
		p.write("[")
		p.printList(e.Index)
		p.write("]")
	case *ast.Slice:
		if e.Lower != nil {
			p.printExpr(e.Lower, 0, false)
		}
		p.write(":")
		if e.Upper != nil {
			p.printExpr(e.Upper, 0, false)
		}
		if e.Step != nil {
			p.write(":")
			p.printExpr(e.Step, 0, false)
		}
	case *ast.Call:
		p.printExpr(e.Func, precAtom, false)
		p.write("(")
		for i, a := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printArgument(a)
		}
		p.write(")")
	case *ast.Tuple:
		if e.Parenthesized {
			p.write("(")
		}
		p.printList(e.Elts)
		if len(e.Elts) == 1 {
			p.write(",")
		}
		if e.Parenthesized {
			p.write(")")
		}
	case *ast.List:
		p.write("[")
		p.printList(e.Elts)
		p.write("]")
	case *ast.Set:
		p.write("{")
		p.printList(e.Elts)
		p.write("}")
	case *ast.Dict:
		p.write("{")
		for i := range e.Values {
			if i > 0 {
				p.write(", ")
			}
			if e.Keys[i] == nil {
				p.write("**")
			} else {
				p.printExpr(e.Keys[i], 0, false)
				p.write(": ")
			}
			p.printExpr(e.Values[i], 0, false)
		}
		p.write("}")
	case *ast.UnaryOp:
		p.write(e.Op)
		if e.Op == "not" {
			p.write(" ")
		}
		p.printExpr(e.Operand, prec, false)
	case *ast.BinaryOp:
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Op + " ")
		p.printExpr(e.Right, prec, true)
	case *ast.BoolOp:
		for i, v := range e.Values {
			if i > 0 {
				p.write(" " + e.Op + " ")
			}
			p.printExpr(v, prec+1, false)
		}
	case *ast.Compare:
		p.printExpr(e.Left, prec+1, false)
		for i, op := range e.Ops {
			p.write(" " + op + " ")
			p.printExpr(e.Comparators[i], prec+1, false)
		}
	case *ast.IfExp:
		p.printExpr(e.Body, prec+1, false)
		p.write(" if ")
		p.printExpr(e.Test, prec+1, false)
		p.write(" else ")
		p.printExpr(e.Orelse, prec, false)
	case *ast.Lambda:
		p.write("lambda")
		for i, param := range e.Params {
			if i == 0 {
				p.write(" ")
			} else {
				p.write(", ")
			}
			p.printParam(param)
		}
		p.write(": ")
		p.printExpr(e.Body, 0, false)
	case *ast.Starred:
		p.write("*")
		p.printExpr(e.Value, precAtom, false)
	case *ast.NamedExpr:
		p.write(e.Target.Value + " := ")
		p.printExpr(e.Value, 0, false)
	case *ast.Await:
		p.write("await ")
		p.printExpr(e.Value, precAtom, false)
	case *ast.Yield:
		p.write("yield")
		if e.From {
			p.write(" from")
		}
		if e.Value != nil {
			p.write(" ")
			p.printExpr(e.Value, 0, false)
		}
	case *ast.Comprehension:
		p.printComprehension(e)
	case *ast.Argument:
		p.printArgument(e)
	default:
		p.write("<?>")
	}
}

func (p *CodePrinter) printList(elts []ast.Expression) {
	for i, el := range elts {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(el, 0, false)
	}
}

func (p *CodePrinter) printArgument(a *ast.Argument) {
	p.write(strings.Repeat("*", a.Star))
	if a.Keyword != nil {
		p.write(a.Keyword.Value + "=")
	}
	p.printExpr(a.Value, 0, false)
}

func (p *CodePrinter) printComprehension(c *ast.Comprehension) {
	open, closing := "[", "]"
	switch c.Kind {
	case ast.SetComp, ast.DictComp:
		open, closing = "{", "}"
	case ast.GeneratorExp:
		open, closing = "(", ")"
	}
	p.write(open)
	if c.Key != nil {
		p.printExpr(c.Key, 0, false)
		p.write(": ")
	}
	p.printExpr(c.Elt, 0, false)
	for _, cl := range c.Clauses {
		if cl.Async {
			p.write(" async")
		}
		p.write(" for ")
		p.printExpr(cl.Target, 0, false)
		p.write(" in ")
		p.printExpr(cl.Iter, precIfExp+1, false)
		for _, cond := range cl.Ifs {
			p.write(" if ")
			p.printExpr(cond, precIfExp+1, false)
		}
	}
	p.write(closing)
}

func (p *CodePrinter) printParam(param *ast.Param) {
	p.write(strings.Repeat("*", param.Star))
	if param.Name != nil {
		p.write(param.Name.Value)
	}
	if param.Annotation != nil {
		p.write(": ")
		p.printExpr(param.Annotation, 0, false)
	}
	if param.Default != nil {
		if param.Annotation != nil {
			p.write(" = ")
		} else {
			p.write("=")
		}
		p.printExpr(param.Default, 0, false)
	}
}

// printSignature prints the header of a function definition.
func (p *CodePrinter) printSignature(f *ast.FuncDef) {
	if f.Async {
		p.write("async ")
	}
	p.write("def " + f.Name.Value + "(")
	for i, param := range f.Params {
		if i > 0 {
			p.write(", ")
		}
		p.printParam(param)
	}
	p.write(")")
	if f.Returns != nil {
		p.write(" -> ")
		p.printExpr(f.Returns, 0, false)
	}
}

// QuoteToken renders a token for messages: its lexeme, or its type for
// layout tokens.
func QuoteToken(tok token.Token) string {
	if tok.Lexeme == "" || tok.Lexeme == "\n" {
		return string(tok.Type)
	}
	return strconv.Quote(tok.Lexeme)
}
