package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
	"github.com/vinodismyname/sheetaudit/internal/analysis"
	"github.com/vinodismyname/sheetaudit/internal/source"
	"github.com/vinodismyname/sheetaudit/internal/workbooks"
	"github.com/vinodismyname/sheetaudit/pkg/validation"
)

// Handler produces a report for one tool invocation.
type Handler func(ctx context.Context, in analysis.Input) (any, error)

// Arguments are the tool-call arguments shared by every analysis tool.
type Arguments struct {
	Filename string `json:"filename"`
	// FileContent is the base64-encoded workbook. Empty means "resolve Filename".
	FileContent string `json:"file_content,omitempty"`
}

type entry struct {
	tool    mcp.Tool
	handler Handler
}

// Registry keeps tool definitions in registration order and dispatches calls.
// Both transports share one Registry.
type Registry struct {
	mu         sync.RWMutex
	order      []string
	entries    map[string]entry
	filter     *OptionalToolFilter
	source     source.Source
	maxPayload int
	model      string
}

// New constructs an empty Registry ready for tool population.
func New() *Registry {
	return &Registry{
		entries: map[string]entry{},
		filter:  NewOptionalToolFilter(true),
	}
}

// WithFilter hides opt-in tools from discovery and dispatch.
func (r *Registry) WithFilter(f *OptionalToolFilter) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = f
	return r
}

// WithSource sets the collaborator used when a call carries no file content.
func (r *Registry) WithSource(src source.Source) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = src
	return r
}

// WithPayloadLimit bounds the decoded size of inline file content (<= 0 disables).
func (r *Registry) WithPayloadLimit(n int) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxPayload = n
	return r
}

// WithModel names the agent model whose context window sizes report payloads.
func (r *Registry) WithModel(model string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model = model
	return r
}

// Register stores a tool definition and its handler. Re-registering a name
// replaces the handler but keeps the original position.
func (r *Registry) Register(tool mcp.Tool, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[tool.Name]; !ok {
		r.order = append(r.order, tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, handler: h}
}

// Tools returns the discoverable tool definitions in registration order.
func (r *Registry) Tools(ctx context.Context) ([]mcp.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].tool)
	}
	return r.filter.FilterTools(ctx, tools), nil
}

// Call validates args, resolves the workbook bytes and runs the named tool.
func (r *Registry) Call(ctx context.Context, name string, args Arguments) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	allowed := r.filter.Allowed(name)
	src, maxPayload := r.source, r.maxPayload
	r.mu.RUnlock()

	if !ok || !allowed {
		return nil, &UnknownToolError{Name: name}
	}

	in := analysis.Input{Filename: args.Filename}
	if msg := validation.ValidateStruct(in); msg != "" {
		return nil, &ValidationError{Message: msg}
	}

	content, err := decodeContent(args.FileContent)
	if err != nil {
		return nil, err
	}
	if maxPayload > 0 && len(content) > maxPayload {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(content), maxPayload)
	}
	if content == nil && src != nil {
		content, err = src.Fetch(ctx, args.Filename)
		switch {
		case errors.Is(err, source.ErrNotFound):
			return nil, &workbooks.LoadError{Kind: workbooks.NotFound, Cause: err}
		case errors.Is(err, source.ErrTooLarge):
			return nil, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		case err != nil:
			return nil, err
		}
	}
	in.Content = content
	return e.handler(ctx, in)
}

// decodeContent accepts padded or unpadded standard base64 and ignores
// embedded whitespace. An empty string yields nil.
func decodeContent(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rerr error
		if data, rerr = base64.RawStdEncoding.DecodeString(s); rerr != nil {
			return nil, &DecodeError{Cause: err}
		}
	}
	return data, nil
}

// Render serializes a report the way tools/call returns it: two-space
// indented JSON without HTML escaping.
func Render(report any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ModelContextSize exposes the configured model's context window.
func (r *Registry) ModelContextSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return llms.GetModelContextSize(r.model)
}

// FitsContext estimates the token footprint of a rendered report (about four
// bytes per token) and compares it with the agent's context window.
func (r *Registry) FitsContext(rendered string) (tokens, window int, ok bool) {
	tokens = len(rendered) / 4
	window = r.ModelContextSize()
	return tokens, window, window <= 0 || tokens <= window
}
