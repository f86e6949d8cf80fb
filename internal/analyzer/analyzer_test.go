package analyzer_test

import (
	"strings"
	"testing"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/parser"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// inferIn parses src and infers expr as if it followed the module body.
func inferIn(t *testing.T, src, expr string) (*analyzer.Context, *ts.ValueSet) {
	t.Helper()
	mod, errs := parser.ParseModule(src, "test.py")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	state := analyzer.NewState(nil)
	ctx := state.ModuleContext(mod)
	node, err := parser.ParseExpression(expr)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", expr, err)
	}
	node.SetParent(mod)
	ast.Move(node, strings.Count(src, "\n")+1)
	return ctx, ctx.InferNode(node)
}

func typeNames(vs *ts.ValueSet) string {
	return strings.Join(vs.Strings(), ", ")
}

func TestInferLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1", "int"},
		{"1.5", "float"},
		{"2j", "complex"},
		{"'s'", "str"},
		{"b's'", "bytes"},
		{"None", "None"},
		{"True", "bool"},
		{"(1, 's')", "tuple[int, str]"},
		{"[1, 2.0]", "list[int | float]"},
		{"{'a': 1}", "dict[str, int]"},
		{"{1}", "set[int]"},
		{"[x for x in [1, 2]]", "list[int]"},
		{"{k: v for k, v in [('a', 1)]}", "dict[str, int]"},
		{"1 + 2.0", "float"},
		{"1 / 2", "float"},
		{"'a' + 'b'", "str"},
		{"not 1", "bool"},
		{"1 < 2", "bool"},
		{"1 if x else 's'", "int, str"},
		{"(1, 's')[1]", "str"},
		{"[1][0]", "int"},
	}
	for _, tt := range tests {
		_, got := inferIn(t, "", tt.expr)
		if typeNames(got) != tt.want {
			t.Errorf("infer(%q) = %q, want %q", tt.expr, typeNames(got), tt.want)
		}
	}
}

func TestInferTyping(t *testing.T) {
	src := `import typing
from typing import List, Dict, Tuple, Callable, Optional, Union, Type, TypeVar, Generic
T = TypeVar('T')
B = TypeVar('B', bound=int)
S = TypeVar('S', str, bytes)
class Box(Generic[T]):
    pass
class IntBox(Box[int]):
    pass
Pair = Tuple[T, T]
`
	tests := []struct {
		expr string
		want string
	}{
		{"List[int]", "list[int]"},
		{"typing.List[int]", "list[int]"},
		{"Dict[str, List[int]]", "dict[str, list[int]]"},
		{"list[int]", "list[int]"},
		{"Tuple[int, str]", "Tuple[int, str]"},
		{"Tuple[int, ...]", "Tuple[int, ...]"},
		{"tuple[int, ...]", "Tuple[int, ...]"},
		{"Optional[int]", "Optional[int]"},
		{"Union[int, str]", "Union[int, str]"},
		{"int | None", "Union[int, None]"},
		{"Type[int]", "Type[int]"},
		{"Callable[[int], str]", "Callable[[int], str]"},
		{"T", "T"},
		{"Box[int]", "Box[int]"},
		{"Box", "Box"},
		{"Pair[int]", "Tuple[int, int]"},
		{"Box()", "Box"},
		{"List[int]()", "list[int]"},
	}
	for _, tt := range tests {
		_, got := inferIn(t, src, tt.expr)
		if typeNames(got) != tt.want {
			t.Errorf("infer(%q) = %q, want %q", tt.expr, typeNames(got), tt.want)
		}
	}

	ctx, got := inferIn(t, src, "B")
	tv, ok := got.Values()[0].(*ts.TypeVar)
	if !ok || typeNames(tv.Bound) != "int" {
		t.Fatalf("B = %v, want a TypeVar bound to int", got)
	}
	if again := ctx.Lookup("B", ctx.TreeNode().End()); again.Values()[0] != tv {
		t.Errorf("TypeVar identity should be stable across lookups")
	}
	_, got = inferIn(t, src, "S")
	if s := got.Values()[0].(*ts.TypeVar); len(s.Constraints) != 2 {
		t.Errorf("S constraints = %d, want 2", len(s.Constraints))
	}
}

func TestGenericClassDeclaration(t *testing.T) {
	src := `from typing import TypeVar, Generic, List
K = TypeVar('K')
V = TypeVar('V')
class Pair(Generic[K, V]):
    pass
class Named(List[V]):
    pass
`
	_, got := inferIn(t, src, "Pair")
	pair := got.Values()[0].(*ts.Class)
	if len(pair.Params) != 2 || pair.Params[0].Name() != "K" {
		t.Errorf("Pair params = %v, want [K V]", pair.Params)
	}
	_, got = inferIn(t, src, "Named")
	named := got.Values()[0].(*ts.Class)
	if len(named.Params) != 1 || named.Params[0].Name() != "V" {
		t.Errorf("Named params = %v, want [V]", named.Params)
	}
	var mro []string
	for _, c := range named.MRO() {
		mro = append(mro, c.TypeName())
	}
	if want := "Named, list[V], Sequence[V], Iterable[V], object"; strings.Join(mro, ", ") != want {
		t.Errorf("MRO = %q, want %q", strings.Join(mro, ", "), want)
	}
}

func TestAssignmentsAndUnpacking(t *testing.T) {
	src := `a, (b, c) = 1, ('s', 2.0)
first, *rest = [1, 2, 3]
for i, name in [(1, 'x')]:
    pass
x = 1
x = 's'
y: float = 1
`
	tests := []struct {
		expr string
		want string
	}{
		{"a", "int"},
		{"b", "str"},
		{"c", "float"},
		{"first", "int"},
		{"rest", "list[int]"},
		{"i", "int"},
		{"name", "str"},
		{"x", "str"},
		{"y", "float"},
	}
	for _, tt := range tests {
		_, got := inferIn(t, src, tt.expr)
		if typeNames(got) != tt.want {
			t.Errorf("infer(%q) = %q, want %q", tt.expr, typeNames(got), tt.want)
		}
	}
}

func TestAttributesAndMethods(t *testing.T) {
	src := `class Base:
    label = 'base'
    def method(self):
        pass
    @staticmethod
    def helper():
        pass
class Child(Base):
    count = 1
obj = Child()
`
	tests := []struct {
		expr string
		want string
	}{
		{"Child.count", "int"},
		{"Child.label", "str"},
		{"obj.label", "str"},
		{"obj.method", "def Base.method"},
		{"Child.helper", "def Base.helper"},
		{"obj.missing", ""},
	}
	for _, tt := range tests {
		_, got := inferIn(t, src, tt.expr)
		if typeNames(got) != tt.want {
			t.Errorf("infer(%q) = %q, want %q", tt.expr, typeNames(got), tt.want)
		}
	}
	_, got := inferIn(t, src, "obj.method")
	fn := got.Values()[0].(*analyzer.Function)
	if !fn.IsBoundMethod() {
		t.Errorf("obj.method should be bound")
	}
	_, got = inferIn(t, src, "Child.method")
	if got.Values()[0].(*analyzer.Function).IsBoundMethod() {
		t.Errorf("Child.method should not be bound")
	}
}

func TestExecutedParams(t *testing.T) {
	src := `def f(a, b=1.0, *args, key='k', **kw):
    pass
f(1, 's', 2, key=None, extra=3)
`
	mod, _ := parser.ParseModule(src, "test.py")
	state := analyzer.NewState(nil)
	ctx := state.ModuleContext(mod)
	fn := ctx.FunctionValue(mod.Body[0])
	call := mod.Body[1].(*ast.ExprStmt).Value.(*ast.Call)

	var got []string
	for _, p := range analyzer.ExecutedParams(fn, analyzer.NewTreeArguments(ctx, call)) {
		got = append(got, p.String())
	}
	want := "a=int b=str args=tuple[int] key=None kw=dict[str, int]"
	if strings.Join(got, " ") != want {
		t.Errorf("ExecutedParams = %q, want %q", strings.Join(got, " "), want)
	}

	got = nil
	for _, p := range analyzer.ExecutedParams(fn, analyzer.NewValuesArguments(state, ts.NewValueSet(state.Builtins.Int.Instance()))) {
		got = append(got, p.String())
	}
	want = "a=int b=float args=tuple key=str kw=dict"
	if strings.Join(got, " ") != want {
		t.Errorf("ExecutedParams defaults = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestCacheKeys(t *testing.T) {
	src := `def f(a):
    pass
f(1)
f(1)
`
	mod, _ := parser.ParseModule(src, "test.py")
	state := analyzer.NewState(nil)
	ctx := state.ModuleContext(mod)
	one := analyzer.NewTreeArguments(ctx, mod.Body[1].(*ast.ExprStmt).Value.(*ast.Call))
	two := analyzer.NewTreeArguments(ctx, mod.Body[2].(*ast.ExprStmt).Value.(*ast.Call))
	if one.CacheKey() == two.CacheKey() {
		t.Errorf("distinct literal instances should not share a key")
	}
	i := ts.NewValueSet(state.Builtins.Int.Instance())
	x := analyzer.NewValuesArguments(state, i)
	y := analyzer.NewValuesArguments(state, i)
	if x.CacheKey() != y.CacheKey() {
		t.Errorf("equal values should share a key: %q vs %q", x.CacheKey(), y.CacheKey())
	}
	if (analyzer.NoArguments{}).CacheKey() == x.CacheKey() {
		t.Errorf("argument shape should be part of the key")
	}
}
