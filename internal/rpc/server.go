package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/sheetaudit/internal/registry"
	"github.com/vinodismyname/sheetaudit/internal/telemetry"
)

// Guard bounds a unit of tool work. *runtime.Middleware satisfies it.
type Guard interface {
	Guard(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options identify the server during initialize and bound request lines.
type Options struct {
	Name            string
	Version         string
	ProtocolVersion string
	// MaxLineBytes rejects longer request lines; <= 0 disables the check.
	MaxLineBytes int
}

// Server reads one JSON-RPC request per line and writes exactly one response
// line before reading the next. It never exits on a bad request.
type Server struct {
	reader *bufio.Reader
	writer *bufio.Writer
	reg    *registry.Registry
	guard  Guard
	hooks  *telemetry.Hooks
	logger zerolog.Logger
	opts   Options
}

// NewServer wires a line server around reg. guard and hooks may be nil.
func NewServer(r io.Reader, w io.Writer, reg *registry.Registry, guard Guard, hooks *telemetry.Hooks, logger zerolog.Logger, opts Options) *Server {
	if hooks == nil {
		hooks = telemetry.NewHooks(logger)
	}
	return &Server{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
		reg:    reg,
		guard:  guard,
		hooks:  hooks,
		logger: logger.With().Str("component", "rpc").Logger(),
		opts:   opts,
	}
}

// Serve processes lines until EOF, a read or write failure, or ctx is done.
// EOF is a clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context) (err error) {
	served := 0
	s.hooks.OnServerStart("line")
	defer func() { s.hooks.OnServerStop("line", served, err) }()

	for {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		line, size, rerr := s.readLine()
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("rpc: read: %w", rerr)
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 || size > len(line) {
			resp := s.handleLine(ctx, trimmed, size)
			if werr := s.send(resp); werr != nil {
				return fmt.Errorf("rpc: write: %w", werr)
			}
			served++
		}
		if rerr != nil {
			return nil
		}
	}
}

// readLine returns the next line without its terminator, plus the total
// number of bytes it occupied. Bytes past MaxLineBytes are discarded, so a
// returned size larger than len(line) marks an oversized line.
func (s *Server) readLine() ([]byte, int, error) {
	var (
		buf  []byte
		size int
	)
	for {
		chunk, err := s.reader.ReadSlice('\n')
		chunk = bytes.TrimSuffix(chunk, []byte("\n"))
		size += len(chunk)
		if s.opts.MaxLineBytes <= 0 || size <= s.opts.MaxLineBytes {
			buf = append(buf, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return buf, size, err
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte, size int) Response {
	requestID := uuid.NewString()

	if s.opts.MaxLineBytes > 0 && size > s.opts.MaxLineBytes {
		err := &LineTooLongError{Size: size, Limit: s.opts.MaxLineBytes}
		s.hooks.OnParseError(requestID, size, err)
		return errorResponse(zeroID, CodeParseError, "Parse error", err)
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.hooks.OnParseError(requestID, size, err)
		return errorResponse(zeroID, CodeParseError, "Parse error", err)
	}
	id := req.ID
	if len(id) == 0 {
		id = zeroID
	}

	start := time.Now()
	result, err := s.dispatch(ctx, requestID, req)
	s.hooks.OnRequest(requestID, req.Method, time.Since(start), err)
	if err != nil {
		return errorResponse(id, CodeInternalError, "Internal error", err)
	}
	return Response{JSONRPC: jsonRPCVersion, ID: id, Result: result}
}

func (s *Server) dispatch(ctx context.Context, requestID string, req Request) (any, error) {
	switch req.Method {
	case MethodInitialize:
		return InitializeResult{
			ProtocolVersion: s.opts.ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      ServerInfo{Name: s.opts.Name, Version: s.opts.Version},
		}, nil
	case MethodToolsList:
		tools, err := s.reg.Tools(ctx)
		if err != nil {
			return nil, err
		}
		return ListResult{Tools: tools}, nil
	case MethodToolsCall:
		return s.callTool(ctx, requestID, req)
	default:
		return nil, &UnknownMethodError{Method: req.Method}
	}
}

func (s *Server) callTool(ctx context.Context, requestID string, req Request) (any, error) {
	var params CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &registry.DecodeError{Cause: fmt.Errorf("params: %w", err)}
		}
	}
	args := registry.Arguments{
		Filename:    params.Arguments.Filename,
		FileContent: req.FileContent,
	}
	if args.FileContent == "" {
		args.FileContent = params.Arguments.FileContent
	}

	var report any
	run := func(ctx context.Context) error {
		var err error
		report, err = s.reg.Call(ctx, params.Name, args)
		return err
	}

	start := time.Now()
	var err error
	if s.guard != nil {
		err = s.guard.Guard(ctx, run)
	} else {
		err = run(ctx)
	}
	s.hooks.OnToolCall(requestID, params.Name, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	text, err := registry.Render(report)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	if tokens, window, ok := s.reg.FitsContext(text); !ok {
		s.logger.Warn().
			Str("request_id", requestID).
			Str("tool", params.Name).
			Int("approx_tokens", tokens).
			Int("context_window", window).
			Msg("report exceeds agent context window")
	}
	return CallResult{Content: text}, nil
}

func errorResponse(id json.RawMessage, code int, message string, cause error) Response {
	return Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &ErrorPayload{Code: code, Message: message, Data: cause.Error()},
	}
}

func (s *Server) send(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal response")
		data, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, "Internal error", err))
	}
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return err
	}
	return s.writer.Flush()
}
