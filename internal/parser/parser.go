package parser

import (
	"fmt"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/lexer"
	"github.com/funvibe/pyhint/internal/prettyprinter"
	"github.com/funvibe/pyhint/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 500

const (
	_ int = iota
	LOWEST
	NAMED      // :=
	TERNARY    // x if c else y
	OR         // or
	AND        // and
	NOT        // not x
	COMPARISON // == != < > <= >= in not in is is not
	BOR        // |
	BXOR       // ^
	BAND       // &
	SHIFT      // << >>
	SUM        // + -
	PRODUCT    // * / // % @
	PREFIX     // -x +x ~x
	POWER      // **
	AWAIT      // await x
	CALL       // f(x) a[i] a.b
)

var precedences = map[token.TokenType]int{
	token.WALRUS:    NAMED,
	token.IF:        TERNARY,
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        COMPARISON,
	token.NOT_EQ:    COMPARISON,
	token.LT:        COMPARISON,
	token.GT:        COMPARISON,
	token.LTE:       COMPARISON,
	token.GTE:       COMPARISON,
	token.IN:        COMPARISON,
	token.IS:        COMPARISON,
	token.PIPE:      BOR,
	token.CARET:     BXOR,
	token.AMPERSAND: BAND,
	token.LSHIFT:    SHIFT,
	token.RSHIFT:    SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.FLOOR_DIV: PRODUCT,
	token.PERCENT:   PRODUCT,
	token.AT:        PRODUCT,
	token.POWER:     POWER,
	token.LPAREN:    CALL,
	token.LBRACKET:  CALL,
	token.DOT:       CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// SyntaxError is returned by ParseExpression.
type SyntaxError struct {
	Token   token.Token
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
}

type Parser struct {
	lexer  *lexer.Lexer
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token
	prevToken token.Token

	errors []*diagnostics.DiagnosticError
	file   string

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth int
	// noIn stops comparison parsing at `in`, for `for` targets.
	noIn bool
}

func New(src, file string) *Parser {
	l := lexer.New(src)
	p := &Parser{lexer: l, file: file}
	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NAME, p.parseName)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.NONE, p.parseConstant)
	p.registerPrefix(token.TRUE, p.parseConstant)
	p.registerPrefix(token.FALSE, p.parseConstant)
	p.registerPrefix(token.ELLIPSIS, p.parseConstant)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.TILDE, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parseNotExpression)
	p.registerPrefix(token.AWAIT, p.parseAwaitExpression)
	p.registerPrefix(token.LAMBDA, p.parseLambdaExpression)
	p.registerPrefix(token.YIELD, p.parseYieldExpression)
	p.registerPrefix(token.ASTERISK, p.parseStarredExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseBraceLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, op := range []token.TokenType{
		token.PIPE, token.CARET, token.AMPERSAND, token.LSHIFT, token.RSHIFT,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.FLOOR_DIV,
		token.PERCENT, token.AT,
	} {
		p.registerInfix(op, p.parseInfixExpression)
	}
	p.registerInfix(token.POWER, p.parseRightAssocInfixExpression)
	p.registerInfix(token.AND, p.parseBoolExpression)
	p.registerInfix(token.OR, p.parseBoolExpression)
	for _, op := range []token.TokenType{
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE,
		token.IN, token.NOT, token.IS,
	} {
		p.registerInfix(op, p.parseComparison)
	}
	p.registerInfix(token.IF, p.parseTernaryExpression)
	p.registerInfix(token.WALRUS, p.parseNamedExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseSubscriptExpression)
	p.registerInfix(token.DOT, p.parseAttributeExpression)

	p.pos = -2
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

// Lexer exposes the lexer that produced the token stream.
func (p *Parser) Lexer() *lexer.Lexer {
	return p.lexer
}

func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

func (p *Parser) tokenAt(i int) token.Token {
	if i < 0 {
		return token.Token{}
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.prevToken = p.curToken
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

// peekAhead returns the token n positions after curToken.
func (p *Parser) peekAhead(n int) token.Token {
	return p.tokenAt(p.pos + n)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if p.noIn && p.peekTokenIs(token.IN) {
		return LOWEST
	}
	if p.peekTokenIs(token.NOT) {
		// only `not in` continues an expression
		if p.peekAhead(2).Type == token.IN && !p.noIn {
			return COMPARISON
		}
		return LOWEST
	}
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) addError(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	err := diagnostics.NewError(code, tok, fmt.Sprintf(format, args...))
	err.File = p.file
	p.errors = append(p.errors, err)
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(diagnostics.ErrP001, p.peekToken, "expected %s, got %s", t, prettyprinter.QuoteToken(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.illegalError(tok)
		return
	}
	p.addError(diagnostics.ErrP001, tok, "invalid syntax: unexpected %s", prettyprinter.QuoteToken(tok))
}

func (p *Parser) illegalError(tok token.Token) {
	msg, _ := tok.Literal.(string)
	if msg == "" {
		msg = "invalid token"
	}
	code := diagnostics.ErrP001
	if tok.Lexeme == "" {
		code = diagnostics.ErrP002
	}
	p.addError(code, tok, "%s", msg)
}

// finish records the end position of node as the end of the previous token.
func (p *Parser) finish(node ast.Node) {
	if node == nil {
		return
	}
	if b, ok := node.(interface{ SetEnd(token.Position) }); ok {
		b.SetEnd(p.curToken.End())
	}
}

// ParseModule parses a whole source file. Statements that fail to parse are
// skipped up to the end of their line.
func ParseModule(src, file string) (*ast.Module, []*diagnostics.DiagnosticError) {
	p := New(src, file)
	m := p.ParseModule()
	return m, p.Errors()
}

// ParseExpression parses src as a standalone expression list, without error
// recovery.
func ParseExpression(src string) (ast.Expression, error) {
	p := New(src, "")
	for p.curTokenIs(token.INDENT) || p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	start := p.curToken
	if p.curTokenIs(token.EOF) {
		return nil, &SyntaxError{Token: start, Message: "empty expression"}
	}
	expr := p.parseExpressionList(true)
	if len(p.errors) > 0 {
		return nil, &SyntaxError{Token: p.errors[0].Token, Message: p.errors[0].Message}
	}
	p.nextToken()
	for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.DEDENT) {
		p.nextToken()
	}
	if !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.ILLEGAL) {
			msg, _ := p.curToken.Literal.(string)
			return nil, &SyntaxError{Token: p.curToken, Message: msg}
		}
		return nil, &SyntaxError{Token: p.curToken, Message: "invalid syntax: unexpected " + prettyprinter.QuoteToken(p.curToken)}
	}
	ast.LinkParents(expr)
	return expr, nil
}
