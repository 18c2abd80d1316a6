package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OptionalToolFilter hides opt-in tools unless they are enabled in config.
// Hidden tools are also refused by Registry.Call, so a client cannot reach
// them by guessing the name.
type OptionalToolFilter struct {
	enabled  bool
	optional map[string]struct{}
}

// NewOptionalToolFilter marks names as opt-in. With enabled set the filter passes everything.
func NewOptionalToolFilter(enabled bool, names ...string) *OptionalToolFilter {
	f := &OptionalToolFilter{enabled: enabled, optional: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.optional[n] = struct{}{}
	}
	return f
}

// Allowed reports whether name is discoverable and callable.
func (f *OptionalToolFilter) Allowed(name string) bool {
	if f == nil || f.enabled {
		return true
	}
	_, opt := f.optional[name]
	return !opt
}

// FilterTools implements server tool filtering semantics.
func (f *OptionalToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if f.Allowed(t.Name) {
			out = append(out, t)
		}
	}
	return out
}
