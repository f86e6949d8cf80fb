package pipeline

import (
	"fmt"
	"strings"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
)

// PipelineContext carries one file through the processing stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	SessionID  string

	AstRoot *ast.Module
	Errors  []*diagnostics.DiagnosticError

	Signatures []Signature
	Bindings   []Binding
}

func NewContext(source, path string) *PipelineContext {
	return &PipelineContext{SourceCode: source, FilePath: path}
}

// Param is one resolved parameter of a signature.
type Param struct {
	Name  string
	Types []string
}

// Signature is the resolved parameter and return types of a function.
type Signature struct {
	Name    string // qualified name, e.g. "Box.get"
	Line    int
	Params  []Param
	Returns []string
}

func (s Signature) String() string {
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, strings.Join(p.Types, " | ")))
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(params, ", "), strings.Join(s.Returns, " | "))
}

// Binding is the inferred types of a module-level assignment target.
type Binding struct {
	Name  string
	Line  int
	Types []string
}

func (b Binding) String() string {
	return fmt.Sprintf("%s = %s", b.Name, strings.Join(b.Types, " | "))
}

// HasErrors reports whether any stage produced an error-severity diagnostic.
func (ctx *PipelineContext) HasErrors() bool {
	for _, err := range ctx.Errors {
		if err.Severity == diagnostics.SeverityError {
			return true
		}
	}
	return false
}
