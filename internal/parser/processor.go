package parser

import (
	"github.com/funvibe/pyhint/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(ctx.SourceCode, ctx.FilePath)
	ctx.AstRoot = p.ParseModule()
	ctx.Errors = append(ctx.Errors, p.Errors()...)

	// Ensure all errors have file path set
	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}
	return ctx
}
