// Package annotation resolves PEP 484 annotations, legacy `# type:`
// comments and forward references, and binds type variables by unifying
// annotations against the values passed at a call site.
package annotation

import (
	"fmt"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/cache"
	"github.com/funvibe/pyhint/internal/diagnostics"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

// DefaultMaxDepth bounds the recursion of InferTypeVars.
const DefaultMaxDepth = 64

// Options configures an Engine.
type Options struct {
	// MaxDepth caps unification recursion; zero means DefaultMaxDepth.
	MaxDepth int
	// Session owns the memo tables. A private session is created when nil.
	Session *cache.Session
}

// Engine answers annotation questions for an analyzer.State. It registers
// itself as the state's Hinter. An Engine is not safe for concurrent use.
type Engine struct {
	state    *analyzer.State
	maxDepth int
	depth    int
	overflow bool

	session *cache.Session
	params  *cache.Memo[*ts.ValueSet]
	returns *cache.Memo[*ts.ValueSet]
}

func New(state *analyzer.State, opts Options) *Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Session == nil {
		opts.Session = cache.NewSession()
	}
	e := &Engine{
		state:    state,
		maxDepth: opts.MaxDepth,
		session:  opts.Session,
		params:   cache.NewMemo[*ts.ValueSet](),
		returns:  cache.NewMemo[*ts.ValueSet](),
	}
	e.session.Register(e.params)
	e.session.Register(e.returns)
	state.Hinter = e
	return e
}

func (e *Engine) State() *analyzer.State  { return e.state }
func (e *Engine) Session() *cache.Session { return e.session }

// warn reports a non-fatal diagnostic positioned at node.
func (e *Engine) warn(code diagnostics.ErrorCode, node ast.Node, format string, args ...interface{}) {
	d := diagnostics.NewWarning(code, ast.StartToken(node), fmt.Sprintf(format, args...))
	if node != nil {
		if mod := ast.EnclosingModule(node); mod != nil {
			d.File = mod.File
		}
	}
	e.state.Sink.Report(d)
}

var _ analyzer.Hinter = (*Engine)(nil)
