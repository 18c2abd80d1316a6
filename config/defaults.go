package config

import "time"

// Default runtime limits and guardrails for the spreadsheet analysis server.
// These values are conservative; Load overlays file and environment settings
// on top of them. They are referenced by internal/runtime.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 4
	DefaultMaxOpenWorkbooks      = 2

	// Payload bounds
	DefaultMaxPayloadBytes = 64 * 1024 * 1024  // decoded workbook bytes
	DefaultMaxLineBytes    = 100 * 1024 * 1024 // one JSON-RPC request line (base64 inflates ~4/3)

	// Total uncompressed size of the package parts. XML compresses well, so
	// this sits far above DefaultMaxPayloadBytes.
	DefaultMaxUnzippedBytes int64 = 4 << 30

	// Hidden row/column ids listed per worksheet before truncation
	DefaultMaxListedHidden = 50
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
)

const (
	// Protocol identity reported by initialize
	DefaultServerName      = "excel-python-mcp"
	DefaultProtocolVersion = "2024-11-05"
	DefaultTransport       = "line"

	// Model whose context window sizes report payloads
	DefaultAgentModel = "gpt-4-32k"

	// Environment prefix for configuration overrides (SHEETAUDIT_LIMITS__MAX_LISTED_HIDDEN=20)
	EnvPrefix = "SHEETAUDIT_"
)
