package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vinodismyname/sheetaudit/internal/analysis"
)

// Tool names.
const (
	ToolExtractComments       = "extract_comments"
	ToolExtractQuestions      = "extract_questions"
	ToolDetectHiddenContent   = "detect_hidden_content"
	ToolComprehensiveAnalysis = "comprehensive_analysis"
	ToolExtractFormulas       = "extract_formulas"
)

// OptionalTools are hidden unless tools.enable_formulas is set.
var OptionalTools = []string{ToolExtractFormulas}

func analysisTool(name, title, description string) mcp.Tool {
	return mcp.NewTool(
		name,
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Workbook filename (.xlsx file)"),
		),
		mcp.WithString("file_content",
			mcp.Description("Base64-encoded workbook bytes; when omitted the filename is resolved on the server"),
		),
	)
}

// RegisterAnalysisTools wires the analysis passes into reg in catalog order.
func RegisterAnalysisTools(reg *Registry, a *analysis.Analyzer) {
	reg.Register(
		analysisTool(ToolExtractComments, "Extract comments",
			"Extract all Excel comments from a workbook. Returns comments with cell location, content, and author."),
		func(ctx context.Context, in analysis.Input) (any, error) { return a.ExtractComments(ctx, in) },
	)
	reg.Register(
		analysisTool(ToolExtractQuestions, "Extract questions",
			"Find all cells containing questions (cells with '?'). Automatically detects answers in adjacent cells."),
		func(ctx context.Context, in analysis.Input) (any, error) { return a.ExtractQuestions(ctx, in) },
	)
	reg.Register(
		analysisTool(ToolDetectHiddenContent, "Detect hidden content",
			"List all hidden rows, columns, and worksheets. Shows which content is hidden in the workbook."),
		func(ctx context.Context, in analysis.Input) (any, error) { return a.DetectHiddenContent(ctx, in) },
	)
	reg.Register(
		analysisTool(ToolComprehensiveAnalysis, "Comprehensive analysis",
			"Full workbook analysis - extracts comments, questions, hidden content, and provides summary statistics."),
		func(ctx context.Context, in analysis.Input) (any, error) { return a.ComprehensiveAnalysis(ctx, in) },
	)
	reg.Register(
		analysisTool(ToolExtractFormulas, "Extract formulas",
			"List every formula cell with its formula text. Formulas are not evaluated."),
		func(ctx context.Context, in analysis.Input) (any, error) { return a.ExtractFormulas(ctx, in) },
	)
}
