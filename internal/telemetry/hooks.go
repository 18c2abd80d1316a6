package telemetry

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Hooks records server lifecycle and request outcomes for both transports.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger.With().Str("component", "telemetry").Logger()}
}

// OnServerStart is called when the server begins reading requests.
func (h *Hooks) OnServerStart(transport string) {
	h.logger.Info().Str("transport", transport).Msg("server starting")
}

// OnServerStop is called once the input stream is exhausted or the server fails.
func (h *Hooks) OnServerStop(transport string, served int, err error) {
	evt := h.logger.Info()
	if err != nil {
		evt = h.logger.Error().Err(err)
	}
	evt.Str("transport", transport).Int("requests", served).Msg("server stopped")
}

// OnRequest logs one JSON-RPC request and its outcome.
func (h *Hooks) OnRequest(requestID, method string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error().Str("request_id", requestID).Str("method", method).Dur("duration", duration).Err(err).Msg("request failed")
		return
	}
	h.logger.Info().Str("request_id", requestID).Str("method", method).Dur("duration", duration).Msg("request served")
}

// OnToolCall logs tool invocations and their outcomes.
func (h *Hooks) OnToolCall(requestID, toolName string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error().Str("request_id", requestID).Str("tool", toolName).Dur("duration", duration).Err(err).Msg("tool call error")
		return
	}
	h.logger.Info().Str("request_id", requestID).Str("tool", toolName).Dur("duration", duration).Msg("tool call completed")
}

// OnParseError logs a request line that could not be decoded.
func (h *Hooks) OnParseError(requestID string, size int, err error) {
	h.logger.Warn().Str("request_id", requestID).Int("bytes", size).Err(err).Msg("unparseable request line")
}

// ServerHooks adapts Hooks to mcp-go's server callbacks for the MCP transport.
func (h *Hooks) ServerHooks() *server.Hooks {
	hooks := &server.Hooks{}

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		h.logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		h.logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		h.logger.Info().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		evt := h.logger.Info()
		if res != nil && res.IsError {
			evt = h.logger.Warn()
		}
		evt.Str("tool", req.Params.Name).Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		h.logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}
