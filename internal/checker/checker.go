// Package checker runs annotation inference over whole modules and
// reports the resolved signatures and module-level bindings.
package checker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/annotation"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/cache"
	"github.com/funvibe/pyhint/internal/config"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/parser"
	"github.com/funvibe/pyhint/internal/pipeline"
	"github.com/funvibe/pyhint/internal/symbols"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// Session is one analysis: an inference state, the annotation engine
// answering its hints and the memo tables both share.
type Session struct {
	Config *config.Config
	State  *analyzer.State
	Engine *annotation.Engine
	Cache  *cache.Session
}

func NewSession(cfg *config.Config, sink diagnostics.Sink) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	state := analyzer.NewState(sink)
	state.TypingModules = cfg.TypingModules
	memo := cache.NewSession()
	engine := annotation.New(state, annotation.Options{MaxDepth: cfg.MaxUnifyDepth, Session: memo})
	return &Session{Config: cfg, State: state, Engine: engine, Cache: memo}
}

func (s *Session) ID() string { return s.Cache.ID() }

// Check resolves the signature of every function and method declared at
// module or class level, and the values of every module-level variable.
func (s *Session) Check(mod *ast.Module) ([]pipeline.Signature, []pipeline.Binding) {
	ctx := s.State.ModuleContext(mod)
	var sigs []pipeline.Signature
	s.collect(ctx, mod.Body, "", nil, &sigs)
	return sigs, s.bindings(ctx)
}

func (s *Session) collect(ctx *analyzer.Context, body []ast.Statement, prefix string, owner *ts.Class, sigs *[]pipeline.Signature) {
	for _, stmt := range body {
		switch def := stmt.(type) {
		case *ast.FuncDef:
			fn := s.method(ctx, def, owner)
			if fn == nil {
				continue
			}
			*sigs = append(*sigs, s.signature(prefix+def.Name.Value, fn))
		case *ast.ClassDef:
			cls := ctx.ClassValue(def)
			if cls == nil {
				continue
			}
			s.collect(ctx.ClassContext(def), def.Body, prefix+def.Name.Value+".", cls, sigs)
		}
	}
}

// method returns the function declared by def. Methods are looked up on an
// instance of their class so that they come out bound.
func (s *Session) method(ctx *analyzer.Context, def *ast.FuncDef, owner *ts.Class) *analyzer.Function {
	if owner != nil {
		for _, v := range ctx.Attribute(owner.Instance(), def.Name.Value).Values() {
			if fn, ok := v.(*analyzer.Function); ok && fn.TreeNode() == def {
				return fn
			}
		}
	}
	return ctx.FunctionValue(def)
}

func (s *Session) signature(name string, fn *analyzer.Function) pipeline.Signature {
	sig := pipeline.Signature{Name: name, Line: fn.TreeNode().Pos().Line}
	for i, p := range fn.Params() {
		var values *ts.ValueSet
		if i == 0 && fn.IsBoundMethod() {
			values = ts.NewValueSet(fn.Receiver())
		} else {
			values = s.Engine.InferParam(fn, p, false).ExecuteAnnotation()
		}
		sig.Params = append(sig.Params, pipeline.Param{Name: paramName(p), Types: Render(values)})
	}
	sig.Returns = Render(fn.ExecuteAnnotation())
	return sig
}

// Render prints instances as their type and classes as type[...].
func Render(values *ts.ValueSet) []string {
	out := make([]string, 0, values.Len())
	for _, v := range values.Values() {
		if _, ok := v.(ts.ClassValue); ok {
			out = append(out, v.String())
			continue
		}
		out = append(out, ts.TypeString(v))
	}
	return out
}

func paramName(p *ast.Param) string {
	return strings.Repeat("*", p.Star) + p.Name.Value
}

func (s *Session) bindings(ctx *analyzer.Context) []pipeline.Binding {
	var out []pipeline.Binding
	scope := ctx.Scope()
	for _, name := range scope.Names() {
		for _, sym := range scope.Symbols(name) {
			if sym.Kind != symbols.VariableSymbol {
				continue
			}
			out = append(out, pipeline.Binding{
				Name:  name,
				Line:  sym.Pos.Line,
				Types: Render(ctx.InferSymbol(sym)),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b pipeline.Binding) int { return a.Line - b.Line })
	return out
}

// CheckerProcessor is the pipeline stage that runs a fresh Session over
// the parsed module.
type CheckerProcessor struct {
	Config *config.Config
}

func (cp *CheckerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	var diags diagnostics.Collector
	s := NewSession(cp.Config, &diags)
	ctx.SessionID = s.ID()
	ctx.Signatures, ctx.Bindings = s.Check(ctx.AstRoot)
	for _, d := range diags.Diagnostics() {
		if d.File == "" {
			d.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, d)
	}
	return ctx
}

// NewPipeline returns the parse and check stages.
func NewPipeline(cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(&parser.ParserProcessor{}, &CheckerProcessor{Config: cfg})
}

// Run parses and checks one file.
func Run(cfg *config.Config, src, path string) *pipeline.PipelineContext {
	return NewPipeline(cfg).Run(pipeline.NewContext(src, path))
}

// InferExpression infers expr as if it were written after the end of the
// module in src. Diagnostics of the module and of the expression are
// returned alongside the values.
func InferExpression(cfg *config.Config, src, path, expr string) (*ts.ValueSet, []*diagnostics.DiagnosticError, error) {
	mod, errs := parser.ParseModule(src, path)
	for _, e := range errs {
		if e.Severity == diagnostics.SeverityError {
			return nil, errs, fmt.Errorf("parsing %s: %w", path, e)
		}
	}
	node, err := parser.ParseExpression(expr)
	if err != nil {
		return nil, errs, fmt.Errorf("parsing expression %q: %w", expr, err)
	}

	var diags diagnostics.Collector
	s := NewSession(cfg, &diags)
	ctx := s.State.ModuleContext(mod)
	node.SetParent(mod)
	ast.Move(node, strings.Count(src, "\n")+1)
	values := ctx.InferNode(node)

	out := append(errs, diags.Diagnostics()...)
	for _, d := range out {
		if d.File == "" {
			d.File = path
		}
	}
	return values, out, nil
}
