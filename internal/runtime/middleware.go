package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vinodismyname/sheetaudit/pkg/mcperr"
)

var (
	// ErrBusy is returned by Guard when no request slot frees up within the acquire timeout.
	ErrBusy = errors.New("BUSY_RESOURCE: concurrent request limit reached")
	// ErrTimeout is returned by Guard when the guarded call outlives the operation timeout.
	ErrTimeout = errors.New("TIMEOUT: operation exceeded configured time limit")
)

// Middleware enforces runtime limits for tool calls using the Controller.
// It bounds global concurrency and applies an operation timeout to each call.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// Guard runs fn while holding a request slot and under the operation timeout.
// Both transports route tool work through it.
func (m *Middleware) Guard(ctx context.Context, fn func(ctx context.Context) error) error {
	acquireCtx := ctx
	if m.ctrl.limits.AcquireRequestTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, m.ctrl.limits.AcquireRequestTimeout)
		defer cancel()
	}
	if err := m.ctrl.AcquireRequest(acquireCtx); err != nil {
		return fmt.Errorf("%w (max=%d)", ErrBusy, m.ctrl.limits.MaxConcurrentRequests)
	}
	defer m.ctrl.ReleaseRequest()

	callCtx := ctx
	cancel := func() {}
	if m.ctrl.limits.OperationTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, m.ctrl.limits.OperationTimeout)
	}
	defer cancel()

	err := fn(callCtx)
	if errors.Is(err, context.DeadlineExceeded) || (err == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded)) {
		return ErrTimeout
	}
	return err
}

// ToolMiddleware implements mcp-go's tool handler middleware interface.
// Busy and timeout conditions surface as tool-level errors so clients can retry.
func (m *Middleware) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var res *mcp.CallToolResult
		err := m.Guard(ctx, func(callCtx context.Context) error {
			var nerr error
			res, nerr = next(callCtx, req)
			return nerr
		})
		switch {
		case errors.Is(err, ErrBusy):
			return mcperr.Wrapf(mcperr.BusyResource, "concurrent request limit reached (max=%d)", m.ctrl.limits.MaxConcurrentRequests), nil
		case errors.Is(err, ErrTimeout):
			return mcperr.New(mcperr.Timeout, ""), nil
		}
		return res, err
	}
}
