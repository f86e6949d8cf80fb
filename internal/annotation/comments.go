package annotation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/funvibe/pyhint/internal/analyzer"
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/parser"
	"github.com/funvibe/pyhint/internal/prettyprinter"
	ts "github.com/funvibe/pyhint/internal/typesystem"
)

var (
	paramCommentRe  = regexp.MustCompile(`^#\s*type:\s*\(([^#]*)\)\s*->`)
	returnCommentRe = regexp.MustCompile(`^#\s*type:\s*\([^#]*\)\s*->\s*([^#]*)`)
	hintCommentRe   = regexp.MustCompile(`^#\s*type:\s*([^#]*)`)
)

// SplitCommentParamDeclaration splits the parameter list of a
// `# type: (...) -> ...` comment into one annotation per parameter.
// Commas nested in brackets do not split. Elements that are not names,
// attributes, subscripts or calls are dropped.
func SplitCommentParamDeclaration(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	node, err := parser.ParseExpression(text)
	if err != nil {
		return nil, fmt.Errorf("comment annotation %q is not valid: %w", text, err)
	}
	if isAtomExpr(node) {
		return []string{sourceOf(text, node)}, nil
	}
	tuple, ok := node.(*ast.Tuple)
	if !ok {
		return nil, nil
	}
	var params []string
	for _, el := range tuple.Elts {
		if isAtomExpr(el) {
			params = append(params, sourceOf(text, el))
		}
	}
	return params, nil
}

func isAtomExpr(node ast.Expression) bool {
	switch node.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript, *ast.Call:
		return true
	}
	return false
}

// sourceOf returns the text node was parsed from.
func sourceOf(text string, node ast.Node) string {
	start, end := node.Pos().Offset, node.End().Offset
	if start < 0 || end > len(text) || start >= end {
		return prettyprinter.Code(node)
	}
	return strings.TrimSpace(text[start:end])
}

func (e *Engine) splitComment(text string, at ast.Node) []string {
	params, err := SplitCommentParamDeclaration(text)
	if err != nil {
		e.warn(diagnostics.ErrA002, at, "%v", err)
		return nil
	}
	return params
}

// commentOwner is the statement whose header comment annotates fn.
func commentOwner(fn *analyzer.Function) ast.Node {
	if def := fn.FuncDef(); def != nil {
		return def
	}
	return ast.EnclosingStatement(fn.TreeNode())
}

// FindTypeFromCommentHint resolves the `# type:` comment of an
// assignment, for or with statement for the target name.
func (e *Engine) FindTypeFromCommentHint(ctx *analyzer.Context, stmt ast.Node, name *ast.Name) *ts.ValueSet {
	switch st := stmt.(type) {
	case *ast.Assign:
		return e.FindTypeFromCommentHintAssign(ctx, st, name)
	case *ast.For:
		return e.FindTypeFromCommentHintFor(ctx, st, name)
	case *ast.With:
		return e.FindTypeFromCommentHintWith(ctx, st, name)
	}
	return ts.NoValues
}

func (e *Engine) FindTypeFromCommentHintAssign(ctx *analyzer.Context, stmt *ast.Assign, name *ast.Name) *ts.ValueSet {
	if len(stmt.Targets) == 0 {
		return ts.NoValues
	}
	return e.findTypeFromCommentHint(ctx, stmt, stmt.Targets[0], name)
}

func (e *Engine) FindTypeFromCommentHintFor(ctx *analyzer.Context, stmt *ast.For, name *ast.Name) *ts.ValueSet {
	return e.findTypeFromCommentHint(ctx, stmt, stmt.Target, name)
}

// FindTypeFromCommentHintWith only applies to a single `with x as target`.
func (e *Engine) FindTypeFromCommentHintWith(ctx *analyzer.Context, stmt *ast.With, name *ast.Name) *ts.ValueSet {
	if len(stmt.Items) != 1 || stmt.Items[0].Target == nil {
		return ts.NoValues
	}
	return e.findTypeFromCommentHint(ctx, stmt, stmt.Items[0].Target, name)
}

func (e *Engine) findTypeFromCommentHint(ctx *analyzer.Context, stmt ast.Node, targets ast.Expression, name *ast.Name) *ts.ValueSet {
	index := NoIndex
	if tuple, ok := targets.(*ast.Tuple); ok && !tuple.Parenthesized {
		found := false
		for i, el := range tuple.Elts {
			if el == name {
				index, found = i, true
				break
			}
		}
		if !found {
			return ts.NoValues
		}
	}
	comment, ok := ast.FollowingCommentSameLine(stmt)
	if !ok {
		return ts.NoValues
	}
	m := hintCommentRe.FindStringSubmatch(comment)
	if m == nil {
		return ts.NoValues
	}
	return e.InferAnnotationString(ctx, strings.TrimSpace(m[1]), index, stmt).ExecuteAnnotation()
}
