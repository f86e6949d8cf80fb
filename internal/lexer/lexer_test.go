package lexer

import (
	"testing"

	"github.com/funvibe/pyhint/internal/token"
)

func types(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestNextToken(t *testing.T) {
	input := `def f(x: int, *args) -> List[str]:
    return x ** 2 // 3
`
	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.DEF, "def"},
		{token.NAME, "f"},
		{token.LPAREN, "("},
		{token.NAME, "x"},
		{token.COLON, ":"},
		{token.NAME, "int"},
		{token.COMMA, ","},
		{token.ASTERISK, "*"},
		{token.NAME, "args"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.NAME, "List"},
		{token.LBRACKET, "["},
		{token.NAME, "str"},
		{token.RBRACKET, "]"},
		{token.COLON, ":"},
		{token.NEWLINE, "\n"},
		{token.INDENT, ""},
		{token.RETURN, "return"},
		{token.NAME, "x"},
		{token.POWER, "**"},
		{token.NUMBER, "2"},
		{token.FLOOR_DIV, "//"},
		{token.NUMBER, "3"},
		{token.NEWLINE, "\n"},
		{token.DEDENT, ""},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("a = 1\n  \nbcd")
	want := []struct {
		typ          token.TokenType
		line, column int
	}{
		{token.NAME, 1, 1},
		{token.ASSIGN, 1, 3},
		{token.NUMBER, 1, 5},
		{token.NEWLINE, 1, 6},
		{token.NAME, 3, 1},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Line != w.line || tok.Column != w.column {
			t.Errorf("token %d = %s@%d:%d, want %s@%d:%d", i, tok.Type, tok.Line, tok.Column, w.typ, w.line, w.column)
		}
	}
}

func TestImplicitLineJoining(t *testing.T) {
	toks := Tokenize("x = (1,\n     2)\ny = 3 + \\\n  4\n")
	got := types(toks)
	want := []token.TokenType{
		token.NAME, token.ASSIGN, token.LPAREN, token.NUMBER, token.COMMA, token.NUMBER, token.RPAREN, token.NEWLINE,
		token.NAME, token.ASSIGN, token.NUMBER, token.PLUS, token.NUMBER, token.NEWLINE,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestNestedDedent(t *testing.T) {
	src := "class A:\n    def f(self):\n        pass\nx = 1"
	got := types(Tokenize(src))
	dedents := 0
	for i, typ := range got {
		if typ == token.DEDENT {
			dedents++
			if got[i+1] != token.DEDENT && got[i+1] != token.NAME {
				t.Errorf("unexpected token after DEDENT: %s", got[i+1])
			}
		}
	}
	if dedents != 2 {
		t.Errorf("dedents = %d, want 2 (%v)", dedents, got)
	}
	if got[len(got)-2] != token.NEWLINE {
		t.Errorf("missing implicit NEWLINE before EOF: %v", got)
	}
}

func TestBadDedent(t *testing.T) {
	src := "if x:\n        a\n    b\n"
	for _, tok := range Tokenize(src) {
		if tok.Type == token.ILLEGAL {
			return
		}
	}
	t.Errorf("expected ILLEGAL token for inconsistent dedent")
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input  string
		value  string
		prefix string
	}{
		{`"abc"`, "abc", ""},
		{`'a\tb'`, "a\tb", ""},
		{`r"a\tb"`, `a\tb`, "r"},
		{`Rb'x'`, "x", "rb"},
		{`"""multi
line"""`, "multi\nline", ""},
		{`'it\'s'`, "it's", ""},
		{`"\x41"`, "A", ""},
		{`""`, "", ""},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.STRING {
			t.Errorf("%s: type = %s, want STRING", tt.input, tok.Type)
			continue
		}
		lit := tok.Literal.(token.StringLiteral)
		if lit.Value != tt.value || lit.Prefix != tt.prefix {
			t.Errorf("%s: literal = %q/%q, want %q/%q", tt.input, lit.Value, lit.Prefix, tt.value, tt.prefix)
		}
		if tok.Lexeme != tt.input {
			t.Errorf("%s: lexeme = %q", tt.input, tok.Lexeme)
		}
	}

	if tok := New(`"open`).NextToken(); tok.Type != token.ILLEGAL {
		t.Errorf("unterminated string: type = %s, want ILLEGAL", tok.Type)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.NumberKind
	}{
		{"42", token.IntNumber},
		{"1_000", token.IntNumber},
		{"0xFF", token.IntNumber},
		{"3.14", token.FloatNumber},
		{".5", token.FloatNumber},
		{"1e10", token.FloatNumber},
		{"2j", token.ComplexNumber},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		lit, ok := tok.Literal.(token.NumberLiteral)
		if tok.Type != token.NUMBER || !ok {
			t.Errorf("%s: type = %s, want NUMBER", tt.input, tok.Type)
			continue
		}
		if lit.Kind != tt.kind || lit.Text != tt.input {
			t.Errorf("%s: literal = %+v, want kind %d", tt.input, lit, tt.kind)
		}
	}
}

func TestComments(t *testing.T) {
	src := "# header\nx = [] # type: List[int]\n\ndef f(a):  # type: (int) -> str\n    pass\n"
	l := New(src)
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
		if tok.Type == token.ILLEGAL {
			t.Fatalf("unexpected ILLEGAL %q", tok.Lexeme)
		}
	}
	c, ok := l.CommentAt(2)
	if !ok || c.Lexeme != "# type: List[int]" {
		t.Errorf("CommentAt(2) = %q, %v", c.Lexeme, ok)
	}
	c, ok = l.CommentAt(4)
	if !ok || c.Lexeme != "# type: (int) -> str" || c.Column != 12 {
		t.Errorf("CommentAt(4) = %q@%d, %v", c.Lexeme, c.Column, ok)
	}
	if got := len(l.Comments()); got != 3 {
		t.Errorf("len(Comments()) = %d, want 3", got)
	}
	if _, ok := l.CommentAt(3); ok {
		t.Errorf("CommentAt(3) found a comment on a blank line")
	}
}

func TestOperators(t *testing.T) {
	got := types(Tokenize("a += b ... c := d != e"))
	want := []token.TokenType{token.NAME, token.AUG_ASSIGN, token.NAME, token.ELLIPSIS, token.NAME, token.WALRUS, token.NAME, token.NOT_EQ, token.NAME, token.NEWLINE, token.EOF}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
