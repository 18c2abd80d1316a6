package registry

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/sheetaudit/internal/security"
	"github.com/vinodismyname/sheetaudit/internal/workbooks"
	"github.com/vinodismyname/sheetaudit/pkg/mcperr"
)

// Mount adds every discoverable tool to s. Handlers route through Call, so
// both transports share validation, payload decoding and dispatch.
func (r *Registry) Mount(s *server.MCPServer, logger zerolog.Logger) {
	tools, _ := r.Tools(context.Background())
	for _, t := range tools {
		s.AddTool(t, r.mcpHandler(t.Name, logger))
	}
}

func (r *Registry) mcpHandler(name string, logger zerolog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := Arguments{
			Filename:    req.GetString("filename", ""),
			FileContent: req.GetString("file_content", ""),
		}
		report, err := r.Call(ctx, name, args)
		if err != nil {
			return ToolError(err), nil
		}
		text, err := Render(report)
		if err != nil {
			return mcperr.Wrapf(mcperr.AnalysisFailed, "render report: %v", err), nil
		}
		if tokens, window, ok := r.FitsContext(text); !ok {
			logger.Warn().Str("tool", name).Int("approx_tokens", tokens).Int("context_window", window).Msg("report exceeds agent context window")
		}
		return mcp.NewToolResultStructured(report, text), nil
	}
}

// ToolError maps a Call failure onto a catalog-coded tool error result.
func ToolError(err error) *mcp.CallToolResult {
	var (
		ute *UnknownToolError
		de  *DecodeError
		ve  *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return mcperr.FromText(ve.Message)
	case errors.As(err, &ute):
		return mcperr.New(mcperr.UnknownTool, ute.Error())
	case errors.As(err, &de):
		return mcperr.New(mcperr.DecodeFailed, de.Error())
	case errors.Is(err, ErrPayloadTooLarge):
		return mcperr.New(mcperr.PayloadTooLarge, err.Error())
	case workbooks.IsNotFound(err):
		return mcperr.New(mcperr.NotFound, err.Error())
	case workbooks.IsTooLarge(err):
		return mcperr.New(mcperr.PayloadTooLarge, err.Error())
	case workbooks.IsCorrupt(err):
		return mcperr.New(mcperr.CorruptWorkbook, err.Error())
	case errors.Is(err, security.ErrNotAllowed):
		return mcperr.New(mcperr.PermissionDenied, "")
	case errors.Is(err, security.ErrUnsupportedExtension):
		return mcperr.New(mcperr.UnsupportedFormat, "")
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.New(mcperr.Timeout, "")
	default:
		return mcperr.New(mcperr.AnalysisFailed, err.Error())
	}
}
