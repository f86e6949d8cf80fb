package checker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/pyhint/internal/config"
	"github.com/funvibe/pyhint/internal/diagnostics"
)

const src = `from typing import TypeVar, Generic, List
T = TypeVar('T')
class Box(Generic[T]):
    def get(self) -> T:
        pass
    @classmethod
    def make(cls, item: T) -> "Box[T]":
        pass
    @staticmethod
    def version() -> int:
        pass
def first(xs: List[T]) -> T:
    pass
def add(a, b):  # type: (int, str) -> float
    pass
def stars(*args: int, **kwargs: str) -> None:
    pass
n = first([1, 2])
b = Box.make('s')
s = b.get()
x, *rest = [1, 2, 3]
`

func TestCheckSignatures(t *testing.T) {
	ctx := Run(nil, src, "mod.py")
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	want := []string{
		"Box.get(self: Box) -> ",
		"Box.make(cls: type[Box], item: ) -> Box[T]",
		"Box.version() -> int",
		"first(xs: list[T]) -> ",
		"add(a: int, b: str) -> float",
		"stars(*args: tuple[int, ...], **kwargs: dict[str, str]) -> None",
	}
	if len(ctx.Signatures) != len(want) {
		var got []string
		for _, s := range ctx.Signatures {
			got = append(got, s.String())
		}
		t.Fatalf("signatures = %q, want %d entries", got, len(want))
	}
	for i, w := range want {
		if got := ctx.Signatures[i].String(); got != w {
			t.Errorf("signature %d = %q, want %q", i, got, w)
		}
	}
	if ctx.Signatures[4].Line != 14 {
		t.Errorf("add declared on line %d, want 14", ctx.Signatures[4].Line)
	}
}

func TestCheckBindings(t *testing.T) {
	ctx := Run(config.Default(), src, "mod.py")
	want := []string{
		"2 T = T",
		"18 n = int",
		"19 b = Box[str]",
		"20 s = str",
		"21 x = int",
		"21 rest = list[int]",
	}
	var got []string
	for _, b := range ctx.Bindings {
		got = append(got, fmt.Sprintf("%d %s", b.Line, b))
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("bindings:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if ctx.SessionID == "" {
		t.Error("session id not recorded")
	}
}

func TestCheckReportsAnnotationWarnings(t *testing.T) {
	src := `from typing import List
def broken() -> "List[":
    pass
def short(a, b):  # type: (int) -> int
    pass
`
	ctx := Run(nil, src, "warn.py")
	codes := map[diagnostics.ErrorCode]bool{}
	for _, d := range ctx.Errors {
		codes[d.Code] = true
		if d.File != "warn.py" {
			t.Errorf("diagnostic %v has file %q, want warn.py", d, d.File)
		}
		if d.Severity != diagnostics.SeverityWarning {
			t.Errorf("diagnostic %v should be a warning", d)
		}
	}
	for _, code := range []diagnostics.ErrorCode{diagnostics.ErrA001, diagnostics.ErrA004} {
		if !codes[code] {
			t.Errorf("missing %s in %v", code, ctx.Errors)
		}
	}
}

func TestCheckSessionsAreIsolated(t *testing.T) {
	a := Run(nil, src, "a.py")
	b := Run(nil, src, "b.py")
	if a.SessionID == b.SessionID {
		t.Errorf("two runs share session %s", a.SessionID)
	}
}

func TestInferExpression(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"first(['a'])", "str", false},
		{"Box.make(1).get()", "int", false},
		{"add(1, 'x')", "float", false},
		{"Box", "type[Box]", false},
		{"first(", "", true},
	}
	for _, tt := range tests {
		values, _, err := InferExpression(nil, src, "mod.py", tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("InferExpression(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got := strings.Join(Render(values), ", "); got != tt.want {
			t.Errorf("InferExpression(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}

	if _, _, err := InferExpression(nil, "def (:\n", "bad.py", "1"); err == nil {
		t.Error("InferExpression over a module with syntax errors should fail")
	}
}

func TestMaxUnifyDepthIsApplied(t *testing.T) {
	cfg := config.Default()
	cfg.MaxUnifyDepth = 1
	src := `from typing import TypeVar, List
T = TypeVar('T')
def deep(xs: List[List[T]]) -> T:
    pass
v = deep([[1]])
`
	ctx := Run(cfg, src, "deep.py")
	found := false
	for _, d := range ctx.Errors {
		if d.Code == diagnostics.ErrA005 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s with max_unify_depth 1, got %v", diagnostics.ErrA005, ctx.Errors)
	}
	for _, b := range ctx.Bindings {
		if b.Name == "v" && len(b.Types) != 0 {
			t.Errorf("v = %v, want no types", b.Types)
		}
	}
}
