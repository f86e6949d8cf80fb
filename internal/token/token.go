package token

import "fmt"

type TokenType string

type Token struct {
	Type      TokenType
	Lexeme    string      // Source text of the token
	Literal   interface{} // Decoded value: string for names/strings/operators, NumberLiteral for numbers
	Line      int
	Column    int
	Offset    int // Byte offset of the first character
	EndLine   int
	EndColumn int
	EndOffset int // Byte offset just past the last character
}

// Position is a point in a source file. Lines and columns are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

func (t Token) End() Position {
	return Position{Line: t.EndLine, Column: t.EndColumn, Offset: t.EndOffset}
}

// NumberKind distinguishes numeric literal flavours.
type NumberKind int

const (
	IntNumber NumberKind = iota
	FloatNumber
	ComplexNumber
)

type NumberLiteral struct {
	Kind NumberKind
	Text string
}

// StringLiteral is the decoded payload of a STRING token.
type StringLiteral struct {
	Value  string
	Prefix string // lower-cased prefix letters, e.g. "rb"
}

func (s StringLiteral) IsBytes() bool {
	for _, c := range s.Prefix {
		if c == 'b' {
			return true
		}
	}
	return false
}

func (s StringLiteral) IsFormat() bool {
	for _, c := range s.Prefix {
		if c == 'f' {
			return true
		}
	}
	return false
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	NEWLINE = "NEWLINE"
	INDENT  = "INDENT"
	DEDENT  = "DEDENT"

	NAME   = "NAME"
	NUMBER = "NUMBER"
	STRING = "STRING"

	// Operators
	ASSIGN      = "="
	WALRUS      = ":="
	PLUS        = "+"
	MINUS       = "-"
	ASTERISK    = "*"
	POWER       = "**"
	SLASH       = "/"
	FLOOR_DIV   = "//"
	PERCENT     = "%"
	AT          = "@"
	PIPE        = "|"
	AMPERSAND   = "&"
	CARET       = "^"
	TILDE       = "~"
	LSHIFT      = "<<"
	RSHIFT      = ">>"
	LT          = "<"
	GT          = ">"
	LTE         = "<="
	GTE         = ">="
	EQ          = "=="
	NOT_EQ      = "!="
	ARROW       = "->"
	AUG_ASSIGN  = "AUG_ASSIGN" // +=, -=, ... (Lexeme carries the operator)
	DOT         = "."
	ELLIPSIS    = "..."
	COMMA       = ","
	COLON       = ":"
	SEMICOLON   = ";"
	LPAREN      = "("
	RPAREN      = ")"
	LBRACKET    = "["
	RBRACKET    = "]"
	LBRACE      = "{"
	RBRACE      = "}"
	BACKSLASH   = "\\"
	EXCLAMATION = "!"

	// Keywords
	FALSE    = "False"
	NONE     = "None"
	TRUE     = "True"
	AND      = "and"
	AS       = "as"
	ASSERT   = "assert"
	ASYNC    = "async"
	AWAIT    = "await"
	BREAK    = "break"
	CLASS    = "class"
	CONTINUE = "continue"
	DEF      = "def"
	DEL      = "del"
	ELIF     = "elif"
	ELSE     = "else"
	EXCEPT   = "except"
	FINALLY  = "finally"
	FOR      = "for"
	FROM     = "from"
	GLOBAL   = "global"
	IF       = "if"
	IMPORT   = "import"
	IN       = "in"
	IS       = "is"
	LAMBDA   = "lambda"
	NONLOCAL = "nonlocal"
	NOT      = "not"
	OR       = "or"
	PASS     = "pass"
	RAISE    = "raise"
	RETURN   = "return"
	TRY      = "try"
	WHILE    = "while"
	WITH     = "with"
	YIELD    = "yield"
)

var keywords = map[string]TokenType{
	"False":    FALSE,
	"None":     NONE,
	"True":     TRUE,
	"and":      AND,
	"as":       AS,
	"assert":   ASSERT,
	"async":    ASYNC,
	"await":    AWAIT,
	"break":    BREAK,
	"class":    CLASS,
	"continue": CONTINUE,
	"def":      DEF,
	"del":      DEL,
	"elif":     ELIF,
	"else":     ELSE,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"for":      FOR,
	"from":     FROM,
	"global":   GLOBAL,
	"if":       IF,
	"import":   IMPORT,
	"in":       IN,
	"is":       IS,
	"lambda":   LAMBDA,
	"nonlocal": NONLOCAL,
	"not":      NOT,
	"or":       OR,
	"pass":     PASS,
	"raise":    RAISE,
	"return":   RETURN,
	"try":      TRY,
	"while":    WHILE,
	"with":     WITH,
	"yield":    YIELD,
}

// LookupIdent returns the keyword token type for ident, or NAME.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

// IsKeyword reports whether t is a reserved word.
func IsKeyword(t TokenType) bool {
	_, ok := keywords[string(t)]
	return ok
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}
