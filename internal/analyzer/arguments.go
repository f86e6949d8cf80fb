package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/pyhint/internal/ast"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// LazyValue defers inference of an argument until it is needed.
type LazyValue interface {
	Infer() *ts.ValueSet
}

type lazyNode struct {
	ctx  *Context
	node ast.Expression
	vs   *ts.ValueSet
}

func (l *lazyNode) Infer() *ts.ValueSet {
	if l.vs == nil {
		l.vs = l.ctx.InferNode(l.node)
	}
	return l.vs
}

type knownValues struct{ vs *ts.ValueSet }

func (k knownValues) Infer() *ts.ValueSet { return k.vs }

// Known wraps an already inferred value set.
func Known(vs *ts.ValueSet) LazyValue { return knownValues{vs} }

// Arg is one unpacked call argument. Key is empty for positional
// arguments; Star is 1 for *x and 2 for **x.
type Arg struct {
	Key   string
	Star  int
	Value LazyValue
	Node  ast.Node
}

// Arguments are the actual arguments of a call.
type Arguments interface {
	Unpack() []Arg
	// CacheKey identifies the argument values and their shape.
	CacheKey() string
}

// TreeArguments are the arguments of a call expression.
type TreeArguments struct {
	ctx  *Context
	call *ast.Call
	args []Arg
}

func NewTreeArguments(ctx *Context, call *ast.Call) *TreeArguments {
	return &TreeArguments{ctx: ctx, call: call}
}

func (t *TreeArguments) Unpack() []Arg {
	if t.args != nil || t.call == nil {
		return t.args
	}
	t.args = []Arg{}
	for _, a := range t.call.Args {
		arg := Arg{Star: a.Star, Value: &lazyNode{ctx: t.ctx, node: a.Value}, Node: a}
		if a.Keyword != nil {
			arg.Key = a.Keyword.Value
		}
		t.args = append(t.args, arg)
	}
	return t.args
}

func (t *TreeArguments) CacheKey() string {
	return argsKey(t.ctx.state, t.Unpack())
}

// ValuesArguments are positional arguments with known values.
type ValuesArguments struct {
	state *State
	sets  []*ts.ValueSet
}

func NewValuesArguments(state *State, sets ...*ts.ValueSet) *ValuesArguments {
	return &ValuesArguments{state: state, sets: sets}
}

func (v *ValuesArguments) Unpack() []Arg {
	args := make([]Arg, len(v.sets))
	for i, s := range v.sets {
		args[i] = Arg{Value: Known(s)}
	}
	return args
}

func (v *ValuesArguments) CacheKey() string {
	return argsKey(v.state, v.Unpack())
}

// NoArguments is an empty argument list.
type NoArguments struct{}

func (NoArguments) Unpack() []Arg     { return nil }
func (NoArguments) CacheKey() string { return "()" }

func argsKey(state *State, args []Arg) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, a := range args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strings.Repeat("*", a.Star))
		if a.Key != "" {
			sb.WriteString(a.Key + "=")
		}
		sb.WriteString(state.SetKey(a.Value.Infer()))
	}
	sb.WriteString(")")
	return sb.String()
}

// ExecutedParam is a parameter with the values a call binds to it. Star
// parameters receive a tuple (*args) or dict (**kwargs) literal.
type ExecutedParam struct {
	Param  *ast.Param
	Values *ts.ValueSet
}

// ExecutedParams maps the arguments of a call of fn to its parameters.
// Parameters without an argument take the values of their default.
func ExecutedParams(fn *Function, args Arguments) []ExecutedParam {
	b := fn.parent.state.Builtins
	params := fn.Params()
	bound := make(map[*ast.Param]*ts.ValueSet)
	var positional []*ts.ValueSet
	var extraKeys, extraValues []*ts.ValueSet

	if fn.IsBoundMethod() {
		positional = append(positional, ts.NewValueSet(fn.receiver))
	}
	for _, a := range args.Unpack() {
		switch {
		case a.Star == 1:
			for _, v := range a.Value.Infer().Values() {
				if it, ok := v.(ts.Iterable); ok {
					positional = append(positional, it.Iterate()...)
				}
			}
		case a.Star == 2:
			for _, v := range a.Value.Infer().Values() {
				inst, ok := v.(*ts.Instance)
				if !ok {
					continue
				}
				extraKeys = append(extraKeys, b.Str.ExecuteAnnotation())
				extraValues = append(extraValues, inst.DictValues())
			}
		case a.Key != "":
			if p := paramNamed(params, a.Key); p != nil && p.Star == 0 && !p.PositionalOnly {
				bound[p] = a.Value.Infer()
				continue
			}
			extraKeys = append(extraKeys, ts.NewValueSet(b.StrLiteral(a.Key)))
			extraValues = append(extraValues, a.Value.Infer())
		default:
			positional = append(positional, a.Value.Infer())
		}
	}

	out := make([]ExecutedParam, 0, len(params))
	next := 0
	for _, p := range params {
		var vs *ts.ValueSet
		switch {
		case p.Star == 1:
			var rest []*ts.ValueSet
			if next < len(positional) {
				rest = positional[next:]
				next = len(positional)
			}
			vs = ts.NewValueSet(ts.NewSequence(b.Tuple, ts.ArrayTuple, rest))
		case p.Star == 2:
			vs = ts.NewValueSet(ts.NewDict(b.Dict, extraKeys, extraValues))
		case bound[p] != nil:
			vs = bound[p]
		case !p.KeywordOnly && next < len(positional):
			vs = positional[next]
			next++
		case p.Default != nil:
			vs = fn.parent.InferNode(p.Default)
		default:
			vs = ts.NoValues
		}
		out = append(out, ExecutedParam{Param: p, Values: vs})
	}
	return out
}

func paramNamed(params []*ast.Param, name string) *ast.Param {
	for _, p := range params {
		if p.Name != nil && p.Name.Value == name {
			return p
		}
	}
	return nil
}

func (e ExecutedParam) String() string {
	return fmt.Sprintf("%s=%s", e.Param.Name.Value, e.Values.TypeString())
}
