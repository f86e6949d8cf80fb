package annotation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/cache"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/parser"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

type fixture struct {
	t     *testing.T
	mod   *ast.Module
	ctx   *analyzer.Context
	eng   *Engine
	diags *diagnostics.Collector
	lines int
}

func newFixture(t *testing.T, src string, opts Options) *fixture {
	t.Helper()
	mod, errs := parser.ParseModule(src, "test.py")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	diags := &diagnostics.Collector{}
	state := analyzer.NewState(diags)
	eng := New(state, opts)
	return &fixture{
		t:     t,
		mod:   mod,
		ctx:   state.ModuleContext(mod),
		eng:   eng,
		diags: diags,
		lines: strings.Count(src, "\n") + 1,
	}
}

// expr parses src as an expression placed after the module body.
func (f *fixture) expr(src string) ast.Expression {
	f.t.Helper()
	node, err := parser.ParseExpression(src)
	if err != nil {
		f.t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	node.SetParent(f.mod)
	ast.Move(node, f.lines)
	return node
}

func (f *fixture) infer(src string) *ts.ValueSet {
	f.t.Helper()
	return f.ctx.InferNode(f.expr(src))
}

func (f *fixture) function(src string) *analyzer.Function {
	f.t.Helper()
	for _, v := range f.infer(src).Values() {
		if fn, ok := v.(*analyzer.Function); ok {
			return fn
		}
	}
	f.t.Fatalf("%s is not a function", src)
	return nil
}

func names(vs *ts.ValueSet) string {
	return strings.Join(vs.Strings(), ", ")
}

const genericSrc = `from typing import TypeVar, Generic, List, Dict, Tuple, Type, Iterable, Callable
T = TypeVar('T')
U = TypeVar('U')
B = TypeVar('B', bound=int)
def first(xs: List[T]) -> T:
    pass
def ident(x: T) -> T:
    pass
def make(cls: Type[T]) -> T:
    pass
def swap(p: Tuple[T, U]) -> Tuple[U, T]:
    pass
def homog(p: Tuple[T, ...]) -> T:
    pass
def each(xs: Iterable[T]) -> T:
    pass
def star(*args: T) -> T:
    pass
def kw(**kwargs: T) -> T:
    pass
def call(f: Callable[[], T]) -> T:
    pass
def values(d: Dict[str, T]) -> List[T]:
    pass
def forward(x: "T") -> "List[T]":
    pass
def bounded() -> B:
    pass
def one() -> int:
    pass
class Box(Generic[T]):
    def get(self) -> T:
        pass
    def put(self, item: U) -> Dict[T, U]:
        pass
def box() -> Box[str]:
    pass
apply: Callable[[T], List[T]]
`

func TestInferReturnTypesWithTypeVars(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"first([1, 2])", "int"},
		{"ident(1)", "int"},
		{"ident('s')", "str"},
		{"ident()", ""},
		{"make(int)", "int"},
		{"swap((1, 's'))", "tuple[str, int]"},
		{"homog((1, 2))", "int"},
		{"each([1.5])", "float"},
		{"star(1, 2)", "int"},
		{"kw(a=1)", "int"},
		{"call(one)", "int"},
		{"values({'a': 1})", "list[int]"},
		{"forward(1)", "list[int]"},
		{"bounded()", "int"},
		{"box().get()", "str"},
		{"box().put(1)", "dict[str, int]"},
		{"apply(1)", "list[int]"},
	}
	f := newFixture(t, genericSrc, Options{})
	for _, tt := range tests {
		if got := names(f.infer(tt.expr)); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestInferTypeVars(t *testing.T) {
	f := newFixture(t, genericSrc, Options{})
	tests := []struct {
		annotation string
		actual     string
		isClass    bool
		want       string
	}{
		{"T", "1", false, "{T: int}"},
		{"T", "int", true, "{T: int}"},
		{"List[T]", "[1]", false, "{T: int}"},
		{"List[T]", "[]", false, "{}"},
		{"Type[T]", "str", false, "{T: str}"},
		{"Tuple[T, U]", "(1, 's')", false, "{T: int, U: str}"},
		{"Tuple[T, ...]", "(1, 2.0)", false, "{T: int | float}"},
		{"Iterable[T]", "{1}", false, "{T: int}"},
		{"Dict[T, U]", "{'a': 1.5}", false, "{T: str, U: float}"},
		{"Callable[[], T]", "one", false, "{T: int}"},
		{"int", "1", false, "{}"},
		{"List[T]", "1", false, "{}"},
		{"List[T]", "[1]", true, "{T: int}"},
		{"Box[T]", "Box[int]", false, "{T: int}"},
	}
	for _, tt := range tests {
		ann := f.infer(tt.annotation)
		if ann.Len() != 1 {
			t.Fatalf("%s: annotation resolves to %d values", tt.annotation, ann.Len())
		}
		got := f.eng.InferTypeVars(ann.Values()[0], f.infer(tt.actual), tt.isClass)
		if got.String() != tt.want {
			t.Errorf("InferTypeVars(%s, %s) = %s, want %s", tt.annotation, tt.actual, got, tt.want)
		}
	}
}

func TestInferTypeVarsMergeIsCommutative(t *testing.T) {
	f := newFixture(t, genericSrc, Options{})
	tv := f.infer("T").Values()[0]
	a := f.eng.InferTypeVars(tv, f.infer("1"), false)
	b := f.eng.InferTypeVars(tv, f.infer("'s'"), false)
	ab, ba := ts.MergeBindings(a, b), ts.MergeBindings(b, a)
	if !ab.Equal(ba) {
		t.Errorf("merge is not commutative: %s vs %s", ab, ba)
	}
	if got := ab.Lookup(tv.(*ts.TypeVar)).TypeString(); got != "int | str" {
		t.Errorf("T = %s, want int | str", got)
	}
}

func TestInferTypeVarsDepthLimit(t *testing.T) {
	f := newFixture(t, genericSrc, Options{MaxDepth: 1})
	ann := f.infer("List[List[T]]").Values()[0]
	got := f.eng.InferTypeVars(ann, f.infer("[[1]]"), false)
	if got.Len() != 0 {
		t.Errorf("bindings = %s, want none", got)
	}
	if !f.diags.Has(diagnostics.ErrA005) {
		t.Errorf("missing %s diagnostic", diagnostics.ErrA005)
	}
}

func TestFindUnknownTypeVars(t *testing.T) {
	f := newFixture(t, genericSrc, Options{})
	tests := []struct {
		annotation string
		want       []string
	}{
		{"int", nil},
		{"T", []string{"T"}},
		{"Dict[T, List[U]]", []string{"T", "U"}},
		{"Tuple[U, T, U]", []string{"U", "T"}},
		{"Callable[[T], U]", []string{"T", "U"}},
		{"'List[T]'", []string{"T"}},
		{"List['U']", []string{"U"}},
		{"B", []string{"B"}},
	}
	for _, tt := range tests {
		var got []string
		for _, tv := range f.eng.FindUnknownTypeVars(f.ctx, f.expr(tt.annotation)) {
			got = append(got, tv.Name())
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FindUnknownTypeVars(%s) = %v, want %v", tt.annotation, got, tt.want)
		}
	}
}

func TestFindUnknownTypeVarsIgnoresMaxDepth(t *testing.T) {
	f := newFixture(t, genericSrc, Options{MaxDepth: 1})
	found := f.eng.FindUnknownTypeVars(f.ctx, f.expr("Dict[str, List[List[T]]]"))
	if len(found) != 1 || found[0].Name() != "T" {
		t.Errorf("FindUnknownTypeVars = %v, want [T]", found)
	}
	if f.diags.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", f.diags.Diagnostics())
	}
}

func TestUnparsableForwardReferenceReportedOnce(t *testing.T) {
	f := newFixture(t, "def broken() -> \"List[\":\n    pass\n", Options{})
	if got := f.infer("broken()"); !got.IsEmpty() {
		t.Errorf("broken() = %s, want nothing", got)
	}
	count := 0
	for _, d := range f.diags.Diagnostics() {
		if d.Code == diagnostics.ErrA001 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("%s reported %d times, want once: %v", diagnostics.ErrA001, count, f.diags.Diagnostics())
	}
}

func TestInferAnnotation(t *testing.T) {
	src := `from typing import List
def f() -> "Foo":
    pass
def g() -> "List[Foo]":
    pass
def broken() -> "List[":
    pass
class Foo:
    pass
`
	f := newFixture(t, src, Options{})
	tests := []struct {
		expr string
		want string
	}{
		{"f()", "Foo"},
		{"g()", "list[Foo]"},
		{"broken()", ""},
	}
	for _, tt := range tests {
		if got := names(f.infer(tt.expr)); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}
	if !f.diags.Has(diagnostics.ErrA001) {
		t.Errorf("missing %s diagnostic", diagnostics.ErrA001)
	}

	got := f.eng.InferAnnotation(f.ctx, f.expr("'Foo'"))
	if got.TypeString() != "Foo" {
		t.Errorf("InferAnnotation('Foo') = %s, want Foo", got.TypeString())
	}
	got = f.eng.InferAnnotation(f.ctx, f.expr("List[int]"))
	if got.TypeString() != "list[int]" {
		t.Errorf("InferAnnotation(List[int]) = %s, want list[int]", got.TypeString())
	}
}

func TestInferAnnotationAmbiguous(t *testing.T) {
	f := newFixture(t, "c = 1\n", Options{})
	got := f.eng.InferAnnotation(f.ctx, f.expr("int if c else str"))
	if got.Len() != 2 {
		t.Errorf("InferAnnotation = %s, want both alternatives", got)
	}
	if !f.diags.Has(diagnostics.ErrA003) {
		t.Errorf("missing %s diagnostic", diagnostics.ErrA003)
	}
}

func TestSplitCommentParamDeclaration(t *testing.T) {
	tests := []struct {
		text    string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{"int", []string{"int"}, false},
		{"int, str", []string{"int", "str"}, false},
		{"Dict[str, int], List[int]", []string{"Dict[str, int]", "List[int]"}, false},
		{"typing.Any, foo()", []string{"typing.Any", "foo()"}, false},
		{"1, int", []string{"int"}, false},
		{"'x'", nil, false},
		{"int, [", nil, true},
	}
	for _, tt := range tests {
		got, err := SplitCommentParamDeclaration(tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitCommentParamDeclaration(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCommentParamDeclaration(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

const commentSrc = `from typing import List
def add(a, b):  # type: (int, List[str]) -> float
    pass
def short(a, b):  # type: (int) -> str
    pass
def bad(a):  # type: (int, [) -> int
    pass
class C:
    def m(self, x):  # type: (int) -> str
        pass
def stars(*args: int, **kwargs: str) -> None:
    pass
`

func TestInferParamFromComment(t *testing.T) {
	f := newFixture(t, commentSrc, Options{})
	tests := []struct {
		fn    string
		index int
		want  string
	}{
		{"add", 0, "int"},
		{"add", 1, "list[str]"},
		{"short", 0, "int"},
		{"short", 1, "?"},
		{"C().m", 0, "?"},
		{"C().m", 1, "int"},
		{"C.m", 0, "int"},
		{"C.m", 1, "?"},
		{"bad", 0, "?"},
	}
	for _, tt := range tests {
		fn := f.function(tt.fn)
		got := f.eng.InferParam(fn, fn.Params()[tt.index], false)
		if got.TypeString() != tt.want {
			t.Errorf("%s param %d = %s, want %s", tt.fn, tt.index, got.TypeString(), tt.want)
		}
	}
	for _, code := range []diagnostics.ErrorCode{diagnostics.ErrA002, diagnostics.ErrA004} {
		if !f.diags.Has(code) {
			t.Errorf("missing %s diagnostic", code)
		}
	}
}

func TestCommentArityExcludesReceiver(t *testing.T) {
	tests := []struct {
		fn   string
		want bool
	}{
		{"C().m", false},
		{"add", false},
		{"C.m", true},
		{"short", true},
	}
	for _, tt := range tests {
		f := newFixture(t, commentSrc, Options{})
		fn := f.function(tt.fn)
		for _, p := range fn.Params() {
			f.eng.InferParam(fn, p, false)
		}
		if got := f.diags.Has(diagnostics.ErrA004); got != tt.want {
			t.Errorf("%s: %s reported = %t, want %t", tt.fn, diagnostics.ErrA004, got, tt.want)
		}
	}
}

func TestInferReturnFromComment(t *testing.T) {
	f := newFixture(t, commentSrc, Options{})
	tests := []struct {
		expr string
		want string
	}{
		{"add(1, ['s'])", "float"},
		{"short(1, 2)", "str"},
		{"bad(1)", "int"},
		{"C().m(1)", "str"},
	}
	for _, tt := range tests {
		if got := names(f.infer(tt.expr)); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestInferParamStars(t *testing.T) {
	f := newFixture(t, commentSrc, Options{})
	fn := f.function("stars")
	args, kwargs := fn.Params()[0], fn.Params()[1]
	tests := []struct {
		param       *ast.Param
		ignoreStars bool
		want        string
	}{
		{args, false, "tuple[int, ...]"},
		{args, true, "int"},
		{kwargs, false, "dict[str, str]"},
		{kwargs, true, "str"},
	}
	for _, tt := range tests {
		got := f.eng.InferParam(fn, tt.param, tt.ignoreStars)
		if got.TypeString() != tt.want {
			t.Errorf("InferParam(%s, %t) = %s, want %s", tt.param.Name.Value, tt.ignoreStars, got.TypeString(), tt.want)
		}
	}
	if got := f.eng.InferParamIgnoreStars(fn, args).TypeString(); got != "int" {
		t.Errorf("InferParamIgnoreStars = %s, want int", got)
	}
}

func TestCommentHints(t *testing.T) {
	src := `x = foo()  # type: int
a, b = foo()  # type: str, float
(c, d) = foo()  # type: str, float
e = 1  # type: ignore
for i in foo():  # type: bytes
    pass
with foo() as w:  # type: List[int]
    pass
with foo() as p, foo() as q:  # type: int
    pass
from typing import List
`
	f := newFixture(t, src, Options{})
	tests := []struct {
		expr string
		want string
	}{
		{"x", "int"},
		{"a", "str"},
		{"b", "float"},
		{"c", ""},
		{"e", "int"},
		{"i", "bytes"},
		{"w", "list[int]"},
		{"p", ""},
	}
	for _, tt := range tests {
		if got := names(f.infer(tt.expr)); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestReturnTypesAreMemoized(t *testing.T) {
	session := cache.NewSession()
	f := newFixture(t, genericSrc, Options{Session: session})
	fn := f.function("ident")
	args := analyzer.NewValuesArguments(f.eng.State(), f.infer("1"))

	first := f.eng.InferReturnTypes(fn, args)
	second := f.eng.InferReturnTypes(fn, args)
	if !first.Equal(second) || names(first) != "int" {
		t.Fatalf("InferReturnTypes = %s then %s, want int twice", first, second)
	}
	if f.eng.returns.Hits() == 0 {
		t.Errorf("second call was not served from the memo")
	}
	session.Renew()
	if f.eng.returns.Len() != 0 || f.eng.params.Len() != 0 {
		t.Errorf("renewing the session kept %d return and %d param entries", f.eng.returns.Len(), f.eng.params.Len())
	}
}

func TestInferReturnForCallable(t *testing.T) {
	f := newFixture(t, genericSrc, Options{})
	form := f.infer("Callable[[T, U], Dict[U, T]]").Values()[0].(ts.Generic)
	generics := form.Generics()
	args := analyzer.NewValuesArguments(f.eng.State(), f.infer("1"), f.infer("'s'"))
	got := f.eng.InferReturnForCallable(args, generics[0], generics[1])
	if names(got) != "dict[str, int]" {
		t.Errorf("InferReturnForCallable = %q, want dict[str, int]", names(got))
	}
}
