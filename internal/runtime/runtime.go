package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/sheetaudit/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency, payload and report guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxOpenWorkbooks      int

	// Payload bounds
	MaxPayloadBytes  int
	MaxLineBytes     int
	MaxUnzippedBytes int64

	// Report shaping
	MaxListedHidden int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxOpenWorkbooks int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenWorkbooks <= 0 {
		maxOpenWorkbooks = config.DefaultMaxOpenWorkbooks
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenWorkbooks:      maxOpenWorkbooks,
		MaxPayloadBytes:       config.DefaultMaxPayloadBytes,
		MaxLineBytes:          config.DefaultMaxLineBytes,
		MaxUnzippedBytes:      config.DefaultMaxUnzippedBytes,
		MaxListedHidden:       config.DefaultMaxListedHidden,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// NewLimitsFromConfig maps the limits section of the loaded configuration,
// keeping defaults for anything left at zero.
func NewLimitsFromConfig(c config.LimitsConfig) Limits {
	l := NewLimits(c.MaxConcurrentRequests, c.MaxOpenWorkbooks)
	if c.MaxPayloadBytes > 0 {
		l.MaxPayloadBytes = c.MaxPayloadBytes
	}
	if c.MaxLineBytes > 0 {
		l.MaxLineBytes = c.MaxLineBytes
	}
	if c.MaxUnzippedBytes > 0 {
		l.MaxUnzippedBytes = c.MaxUnzippedBytes
	}
	if c.MaxListedHidden > 0 {
		l.MaxListedHidden = c.MaxListedHidden
	}
	if c.OperationTimeout > 0 {
		l.OperationTimeout = c.OperationTimeout
	}
	if c.AcquireTimeout > 0 {
		l.AcquireRequestTimeout = c.AcquireTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and workbook guardrails.
type Controller struct {
	limits            Limits
	requestSemaphore  *semaphore.Weighted
	workbookSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:            limits,
		requestSemaphore:  semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		workbookSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenWorkbooks)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireWorkbook reserves an open workbook slot.
func (c *Controller) AcquireWorkbook(ctx context.Context) error {
	return c.workbookSemaphore.Acquire(ctx, 1)
}

// ReleaseWorkbook frees an open workbook slot.
func (c *Controller) ReleaseWorkbook() {
	c.workbookSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
