package symbols_test

import (
	"reflect"
	"testing"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/parser"
	"github.com/funvibe/pyhint/internal/symbols"
	"github.com/funvibe/pyhint/internal/token"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, errs := parser.ParseModule(src, "test.py")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return mod
}

func TestModuleBindings(t *testing.T) {
	src := `import os.path
from typing import List as L, Dict
x = 1
a, (b, *c) = f()
for i in range(3):
    if i:
        y: int = i
with open(p) as fh:
    pass
try:
    pass
except E as err:
    pass
def g(): z = 1
class C: w = 2
`
	st := symbols.Build(parse(t, src), nil)
	want := []string{"os", "L", "Dict", "x", "a", "b", "c", "i", "y", "fh", "err", "g", "C"}
	if got := st.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	c := st.Symbols("c")[0]
	if !reflect.DeepEqual(c.Path, []int{1, 1}) || !c.Starred {
		t.Errorf("c path = %v starred = %v, want [1 1] true", c.Path, c.Starred)
	}
	if k := st.Symbols("g")[0].Kind; k != symbols.FunctionSymbol {
		t.Errorf("g kind = %v, want FunctionSymbol", k)
	}
	if len(st.Symbols("z")) != 0 || len(st.Symbols("w")) != 0 {
		t.Errorf("nested scope names leaked into module scope")
	}
}

func TestFindScoping(t *testing.T) {
	src := `x = 1
class C:
    x = "s"
    def m(self, a):
        return x
x = 2.0
`
	mod := parse(t, src)
	module := symbols.Build(mod, nil)
	cls := mod.Body[1].(*ast.ClassDef)
	class := symbols.Build(cls, module)
	fn := cls.Body[1].(*ast.FuncDef)
	function := symbols.Build(fn, class)

	if _, syms := function.Find("a", token.Position{}); len(syms) != 1 || syms[0].Kind != symbols.ParameterSymbol {
		t.Errorf("parameter a not found in function scope")
	}
	// class bodies are skipped from nested functions
	scope, syms := function.Find("x", token.Position{Line: 5, Column: 16})
	if scope != module || len(syms) != 2 {
		t.Errorf("Find(x) = %v %d bindings, want module scope with 2", scope, len(syms))
	}
	// position filter inside the same scope
	_, syms = module.Find("x", token.Position{Line: 2, Column: 1})
	if len(syms) != 1 {
		t.Errorf("Find(x) before line 2 = %d bindings, want 1", len(syms))
	}
	if scope, _ := function.Find("nope", token.Position{}); scope != nil {
		t.Errorf("unknown name resolved")
	}
}

func TestGlobalDeclaration(t *testing.T) {
	src := `v = 1
def f():
    global v
    v = "s"
`
	mod := parse(t, src)
	module := symbols.Build(mod, nil)
	function := symbols.Build(mod.Body[1], module)
	if !function.IsGlobal("v") {
		t.Fatalf("v should be global in f")
	}
	if scope, _ := function.Find("v", token.Position{}); scope != module {
		t.Errorf("global v should resolve in the module scope")
	}
}
