package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/pyhint/internal/token"
)

// tabSize is the column multiple a tab advances indentation to.
const tabSize = 8

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	parenDepth  int
	indents     []int
	atLineStart bool
	pending     []token.Token
	lastType    token.TokenType
	finished    bool

	comments     map[int]token.Token
	commentOrder []token.Token
}

func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		column:      0,
		indents:     []int{0},
		atLineStart: true,
		comments:    make(map[int]token.Token),
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// CommentAt returns the comment that appears on the given line, if any.
func (l *Lexer) CommentAt(line int) (token.Token, bool) {
	tok, ok := l.comments[line]
	return tok, ok
}

// Comments returns all comments in source order.
func (l *Lexer) Comments() []token.Token {
	out := make([]token.Token, len(l.commentOrder))
	copy(out, l.commentOrder)
	return out
}

// Tokenize runs the lexer to completion.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	l.lastType = tok.Type
	return tok
}

func (l *Lexer) nextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	if l.finished {
		return l.marker(token.EOF, "")
	}

	for {
		if l.atLineStart && l.parenDepth == 0 {
			width, blank := l.measureIndent()
			if blank {
				if l.atEOF() {
					return l.finish()
				}
				l.skipLine()
				continue
			}
			l.atLineStart = false
			if tok, ok := l.layout(width); ok {
				return tok
			}
		}

		l.skipWhitespace()

		switch {
		case l.ch == '\\' && (l.peekChar() == '\n' || l.peekChar() == '\r'):
			l.readChar()
			if l.ch == '\r' && l.peekChar() == '\n' {
				l.readChar()
			}
			l.readChar()
			continue
		case l.ch == '#':
			l.readComment()
			continue
		case l.ch == '\r' || l.ch == '\n':
			if l.parenDepth > 0 {
				l.readNewline()
				continue
			}
			tok := l.marker(token.NEWLINE, "\n")
			l.readNewline()
			tok.EndLine, tok.EndColumn, tok.EndOffset = l.line, l.column, l.position
			l.atLineStart = true
			return tok
		case l.atEOF():
			return l.finish()
		}

		return l.scanToken()
	}
}

// measureIndent computes the indentation width of the current line without
// consuming it unless the line is blank or comment-only.
func (l *Lexer) measureIndent() (int, bool) {
	width := 0
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\f' {
		switch l.ch {
		case ' ':
			width++
		case '\t':
			width = (width/tabSize + 1) * tabSize
		case '\f':
			width = 0
		}
		l.readChar()
	}
	if l.ch == '#' {
		l.readComment()
	}
	return width, l.ch == '\n' || l.ch == '\r' || l.atEOF()
}

func (l *Lexer) skipLine() {
	for !l.atEOF() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
	l.readNewline()
}

func (l *Lexer) readNewline() {
	if l.ch == '\r' && l.peekChar() == '\n' {
		l.readChar()
	}
	if l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// layout compares the current indentation against the stack and emits
// INDENT or DEDENT tokens.
func (l *Lexer) layout(width int) (token.Token, bool) {
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		return l.marker(token.INDENT, ""), true
	case width < top:
		var dedents []token.Token
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			dedents = append(dedents, l.marker(token.DEDENT, ""))
		}
		if l.indents[len(l.indents)-1] != width {
			bad := l.marker(token.ILLEGAL, "")
			bad.Literal = "unindent does not match any outer indentation level"
			dedents = append(dedents, bad)
		}
		l.pending = append(l.pending, dedents[1:]...)
		return dedents[0], true
	}
	return token.Token{}, false
}

// finish emits the trailing NEWLINE, the closing DEDENTs and EOF.
func (l *Lexer) finish() token.Token {
	l.finished = true
	var out []token.Token
	switch l.lastType {
	case "", token.NEWLINE, token.INDENT, token.DEDENT:
	default:
		out = append(out, l.marker(token.NEWLINE, ""))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		out = append(out, l.marker(token.DEDENT, ""))
	}
	out = append(out, l.marker(token.EOF, ""))
	l.pending = append(l.pending, out[1:]...)
	return out[0]
}

func (l *Lexer) marker(t token.TokenType, lexeme string) token.Token {
	return token.Token{
		Type:      t,
		Lexeme:    lexeme,
		Literal:   lexeme,
		Line:      l.line,
		Column:    l.column,
		Offset:    l.position,
		EndLine:   l.line,
		EndColumn: l.column,
		EndOffset: l.position,
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\f' {
		l.readChar()
	}
}

func (l *Lexer) readComment() {
	start := l.marker(token.ILLEGAL, "")
	for !l.atEOF() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
	text := l.input[start.Offset:l.position]
	tok := start
	tok.Lexeme = text
	tok.Literal = text
	tok.EndLine, tok.EndColumn, tok.EndOffset = l.line, l.column, l.position
	l.comments[tok.Line] = tok
	l.commentOrder = append(l.commentOrder, tok)
}

func (l *Lexer) scanToken() token.Token {
	start := l.marker(token.ILLEGAL, "")

	var tok token.Token
	switch {
	case isIdentStart(l.ch):
		ident := l.readIdentifier()
		if isStringPrefix(ident) && (l.ch == '\'' || l.ch == '"') {
			tok = l.readString(start, strings.ToLower(ident))
		} else {
			tok = start
			tok.Type = token.LookupIdent(ident)
			tok.Lexeme = ident
			tok.Literal = ident
		}
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok = l.readNumber(start)
	case l.ch == '\'' || l.ch == '"':
		tok = l.readString(start, "")
	default:
		tok = l.readOperator(start)
	}

	tok.EndLine, tok.EndColumn, tok.EndOffset = l.line, l.column, l.position
	if tok.Lexeme == "" {
		tok.Lexeme = l.input[start.Offset:l.position]
	}
	return tok
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber(start token.Token) token.Token {
	kind := token.IntNumber
	if l.ch == '0' && strings.ContainsRune("xXoObB", l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else {
		l.readDigits()
		if l.ch == '.' {
			kind = token.FloatNumber
			l.readChar()
			l.readDigits()
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || next == '+' || next == '-' {
				kind = token.FloatNumber
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				l.readDigits()
			}
		}
		if l.ch == 'j' || l.ch == 'J' {
			kind = token.ComplexNumber
			l.readChar()
		}
	}
	text := l.input[start.Offset:l.position]
	tok := start
	tok.Type = token.NUMBER
	tok.Lexeme = text
	tok.Literal = token.NumberLiteral{Kind: kind, Text: text}
	if isIdentStart(l.ch) {
		tok.Type = token.ILLEGAL
		tok.Literal = "invalid decimal literal"
	}
	return tok
}

func (l *Lexer) readDigits() {
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
}

func (l *Lexer) readString(start token.Token, prefix string) token.Token {
	quote := l.ch
	raw := strings.ContainsRune(prefix, 'r')
	triple := false
	l.readChar()
	if l.ch == quote && l.peekChar() == quote {
		l.readChar()
		l.readChar()
		triple = true
	} else if l.ch == quote {
		l.readChar()
		tok := start
		tok.Type = token.STRING
		tok.Literal = token.StringLiteral{Value: "", Prefix: prefix}
		return tok
	}

	var out strings.Builder
	for {
		if l.atEOF() || (!triple && (l.ch == '\n' || l.ch == '\r')) {
			tok := start
			tok.Type = token.ILLEGAL
			tok.Literal = "unterminated string literal"
			return tok
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				continue
			}
			if raw {
				out.WriteRune('\\')
				out.WriteRune(l.ch)
				l.readChar()
				continue
			}
			l.readEscape(&out)
			continue
		}
		if l.ch == quote {
			if !triple {
				l.readChar()
				break
			}
			if l.peekChar() == quote && strings.HasPrefix(l.input[l.position:], strings.Repeat(string(quote), 3)) {
				l.readChar()
				l.readChar()
				l.readChar()
				break
			}
		}
		out.WriteRune(l.ch)
		l.readChar()
	}

	tok := start
	tok.Type = token.STRING
	tok.Literal = token.StringLiteral{Value: out.String(), Prefix: prefix}
	return tok
}

// readEscape decodes the escape sequence after a backslash; l.ch is the
// character following the backslash.
func (l *Lexer) readEscape(out *strings.Builder) {
	switch l.ch {
	case 'n':
		out.WriteByte('\n')
	case 't':
		out.WriteByte('\t')
	case 'r':
		out.WriteByte('\r')
	case '0':
		out.WriteByte(0)
	case 'a':
		out.WriteByte('\a')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case 'v':
		out.WriteByte('\v')
	case '\\', '\'', '"':
		out.WriteRune(l.ch)
	case '\n':
		// line continuation inside a string
	case '\r':
		if l.peekChar() == '\n' {
			l.readChar()
		}
	case 'x':
		if hex := l.input[l.readPosition:min(l.readPosition+2, len(l.input))]; len(hex) == 2 {
			if v, err := strconv.ParseUint(hex, 16, 8); err == nil {
				out.WriteRune(rune(v))
				l.readChar()
				l.readChar()
				break
			}
		}
		out.WriteString("\\x")
	default:
		out.WriteRune('\\')
		out.WriteRune(l.ch)
	}
	l.readChar()
}

var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"+", "-", "*", "/", "%", "@", "|", "&", "^", "~", "<", ">", "=",
	".", ",", ":", ";", "(", ")", "[", "]", "{", "}", "!",
}

var operatorTypes = map[string]token.TokenType{
	"**": token.POWER, "//": token.FLOOR_DIV, "<<": token.LSHIFT, ">>": token.RSHIFT,
	"<=": token.LTE, ">=": token.GTE, "==": token.EQ, "!=": token.NOT_EQ,
	"->": token.ARROW, ":=": token.WALRUS, "...": token.ELLIPSIS,
	"+": token.PLUS, "-": token.MINUS, "*": token.ASTERISK, "/": token.SLASH,
	"%": token.PERCENT, "@": token.AT, "|": token.PIPE, "&": token.AMPERSAND,
	"^": token.CARET, "~": token.TILDE, "<": token.LT, ">": token.GT,
	"=": token.ASSIGN, ".": token.DOT, ",": token.COMMA, ":": token.COLON,
	";": token.SEMICOLON, "(": token.LPAREN, ")": token.RPAREN,
	"[": token.LBRACKET, "]": token.RBRACKET, "{": token.LBRACE, "}": token.RBRACE,
	"!": token.EXCLAMATION,
}

func (l *Lexer) readOperator(start token.Token) token.Token {
	rest := l.input[l.position:]
	for _, op := range operators {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		for range op {
			l.readChar()
		}
		tok := start
		tok.Lexeme = op
		tok.Literal = op
		if t, ok := operatorTypes[op]; ok {
			tok.Type = t
		} else {
			tok.Type = token.AUG_ASSIGN
		}
		switch op {
		case "(", "[", "{":
			l.parenDepth++
		case ")", "]", "}":
			if l.parenDepth > 0 {
				l.parenDepth--
			}
		}
		return tok
	}

	ch := l.ch
	l.readChar()
	tok := start
	tok.Type = token.ILLEGAL
	tok.Lexeme = string(ch)
	tok.Literal = "invalid character " + strconv.QuoteRune(ch)
	return tok
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isStringPrefix(ident string) bool {
	switch strings.ToLower(ident) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
