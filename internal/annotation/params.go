package annotation

import (
	"fmt"
	"strings"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// Signature holds the annotation nodes of a function, either written
// inline or recovered from its `# type: (...) -> ...` comment.
type Signature struct {
	Params  map[*ast.Param]ast.Expression
	Returns ast.Expression
	// Comment is set when the annotations come from a type comment.
	Comment bool
}

// Annotations collects the annotation nodes of fn. Inline annotations win
// over a type comment; the comment is only consulted when neither a
// parameter nor the return is annotated inline.
func (e *Engine) Annotations(fn *analyzer.Function) Signature {
	sig := Signature{Params: make(map[*ast.Param]ast.Expression)}
	inline := false
	for _, p := range fn.Params() {
		if p.Annotation != nil {
			sig.Params[p] = p.Annotation
			inline = true
		}
	}
	if def := fn.FuncDef(); def != nil && def.Returns != nil {
		sig.Returns = def.Returns
		inline = true
	}
	if inline {
		return sig
	}

	comment, ok := ast.FollowingCommentSameLine(commentOwner(fn))
	if !ok {
		return sig
	}
	ctx := fn.DefaultParamContext()
	at := commentOwner(fn)
	if m := returnCommentRe.FindStringSubmatch(comment); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			sig.Returns = e.forwardReferenceNode(ctx, text, at)
			sig.Comment = sig.Returns != nil
		}
	}
	if m := paramCommentRe.FindStringSubmatch(comment); m != nil {
		fragments := e.splitComment(m[1], at)
		for i, p := range fn.Params() {
			text, ok := e.commentFragment(fn, fragments, i)
			if !ok {
				continue
			}
			if node := e.forwardReferenceNode(ctx, text, p); node != nil {
				sig.Params[p] = node
				sig.Comment = true
			}
		}
	}
	return sig
}

// commentFragment picks the comment annotation of the parameter at index.
// The receiver of a bound method has none.
func (e *Engine) commentFragment(fn *analyzer.Function, fragments []string, index int) (string, bool) {
	if fn.IsBoundMethod() {
		if index == 0 {
			return "", false
		}
		index--
	}
	if index >= len(fragments) {
		return "", false
	}
	return fragments[index], true
}

// InferParam returns the annotated values of param. A *args parameter
// annotated X yields tuple[X, ...] and a **kwargs parameter yields
// dict[str, X] unless ignoreStars is set.
func (e *Engine) InferParam(fn *analyzer.Function, param *ast.Param, ignoreStars bool) *ts.ValueSet {
	key := fmt.Sprintf("%s:%s:%t", fn.CacheKey(), param.Name.Value, ignoreStars)
	return e.params.Do(key, func() *ts.ValueSet {
		values := e.inferParam(fn, param)
		if ignoreStars || values.IsEmpty() {
			return values
		}
		b := e.state.Builtins
		switch param.Star {
		case 1:
			return ts.NewValueSet(b.Tuple.Parameterize([]*ts.ValueSet{values}, true))
		case 2:
			return ts.NewValueSet(b.Dict.Parameterize([]*ts.ValueSet{ts.NewValueSet(b.Str), values}, false))
		}
		return values
	})
}

// InferParamIgnoreStars returns the annotation of param as written.
func (e *Engine) InferParamIgnoreStars(fn *analyzer.Function, param *ast.Param) *ts.ValueSet {
	return e.InferParam(fn, param, true)
}

func (e *Engine) inferParam(fn *analyzer.Function, param *ast.Param) *ts.ValueSet {
	ctx := fn.DefaultParamContext()
	if param.Annotation != nil {
		return e.InferAnnotation(ctx, param.Annotation)
	}

	owner := commentOwner(fn)
	comment, ok := ast.FollowingCommentSameLine(owner)
	if !ok {
		return ts.NoValues
	}
	m := paramCommentRe.FindStringSubmatch(comment)
	if m == nil {
		return ts.NoValues
	}
	fragments := e.splitComment(m[1], owner)
	params := fn.Params()
	index := -1
	for i, p := range params {
		if p == param {
			index = i
			break
		}
	}
	if index < 0 {
		return ts.NoValues
	}
	declared := len(params)
	if fn.IsBoundMethod() {
		declared--
	}
	if len(fragments) != declared {
		e.warn(diagnostics.ErrA004, owner, "type comment of %s declares %d parameters, function has %d",
			fn.Name(), len(fragments), declared)
	}
	text, ok := e.commentFragment(fn, fragments, index)
	if !ok {
		return ts.NoValues
	}
	return e.InferAnnotationString(ctx, text, NoIndex, owner)
}

// InferReturnTypes returns the values a call of fn with args produces
// according to its return annotation. Type variables in the annotation
// are bound from the arguments and from a generic receiver.
func (e *Engine) InferReturnTypes(fn *analyzer.Function, args analyzer.Arguments) *ts.ValueSet {
	key := fn.CacheKey() + args.CacheKey()
	return e.returns.Do(key, func() *ts.ValueSet {
		return e.inferReturnTypes(fn, args)
	})
}

func (e *Engine) inferReturnTypes(fn *analyzer.Function, args analyzer.Arguments) *ts.ValueSet {
	sig := e.Annotations(fn)
	if sig.Returns == nil {
		return ts.NoValues
	}
	ctx := fn.DefaultParamContext()
	values := e.InferAnnotation(ctx, sig.Returns)
	if len(e.FindUnknownTypeVars(ctx, sig.Returns)) == 0 {
		return values.ExecuteAnnotation()
	}

	bindings := ts.MergeBindings(e.inferTypeVarsForExecution(fn, args, sig), fn.ReceiverBindings())
	return ts.DefineGenerics(values, bindings).ExecuteAnnotation()
}

// InferTypeVarsForExecution binds the type variables of the parameter
// annotations of fn against the arguments of a call.
func (e *Engine) InferTypeVarsForExecution(fn *analyzer.Function, args analyzer.Arguments) *ts.Bindings {
	return e.inferTypeVarsForExecution(fn, args, e.Annotations(fn))
}

func (e *Engine) inferTypeVarsForExecution(fn *analyzer.Function, args analyzer.Arguments, sig Signature) *ts.Bindings {
	ctx := fn.DefaultParamContext()
	out := ts.NewBindings()
	for _, ep := range analyzer.ExecutedParams(fn, args) {
		node, ok := sig.Params[ep.Param]
		if !ok {
			continue
		}
		if len(e.FindUnknownTypeVars(ctx, node)) == 0 {
			continue
		}
		actual := ep.Values
		switch ep.Param.Star {
		case 1:
			actual = actual.MergeTypesOfIterate()
		case 2:
			actual = actual.MergeDictValues()
		}
		out.Merge(e.inferEach(e.InferAnnotation(ctx, node), actual, false))
	}
	return out
}

// InferReturnForCallable returns the result of calling a Callable[[...], R]
// value. Type variables of R are bound from the arguments against the
// declared parameter list.
func (e *Engine) InferReturnForCallable(args analyzer.Arguments, paramValues, resultValues *ts.ValueSet) *ts.ValueSet {
	bindings := ts.NewBindings()
	for _, pv := range paramValues.Values() {
		inst, ok := pv.(*ts.Instance)
		if !ok || inst.ArrayType != ts.ArrayList {
			continue
		}
		bindings.Merge(e.InferTypeVarsForCallable(args, inst.Iterate()))
	}
	return ts.DefineGenerics(resultValues, bindings).ExecuteAnnotation()
}

// InferTypeVarsForCallable unifies each argument with the declared type
// at the same position.
func (e *Engine) InferTypeVarsForCallable(args analyzer.Arguments, params []*ts.ValueSet) *ts.Bindings {
	out := ts.NewBindings()
	for i, a := range args.Unpack() {
		if i >= len(params) {
			break
		}
		out.Merge(e.inferEach(params[i], a.Value.Infer(), false))
	}
	return out
}
