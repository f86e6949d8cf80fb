package pipeline

import (
	"testing"

	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/token"
)

func TestRunContinuesAfterErrors(t *testing.T) {
	var order []string
	failing := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		order = append(order, "first")
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "bad"))
		return ctx
	})
	second := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		order = append(order, "second")
		ctx.Bindings = append(ctx.Bindings, Binding{Name: "x"})
		return ctx
	})

	ctx := New(failing, second).Run(NewContext("x = 1", "m.py"))
	if len(order) != 2 || order[1] != "second" {
		t.Fatalf("stages run = %v, want [first second]", order)
	}
	if !ctx.HasErrors() {
		t.Errorf("HasErrors() = false, want true")
	}
	if len(ctx.Bindings) != 1 {
		t.Errorf("Bindings = %v, want one binding", ctx.Bindings)
	}
}

func TestSignatureString(t *testing.T) {
	sig := Signature{
		Name:    "f",
		Params:  []Param{{Name: "a", Types: []string{"int", "str"}}, {Name: "*b", Types: nil}},
		Returns: []string{"None"},
	}
	if got, want := sig.String(), "f(a: int | str, *b: ) -> None"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := (Binding{Name: "x", Types: []string{"list[int]"}}).String(), "x = list[int]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
