package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical error code surfaced by analysis tools.
type Code string

const (
	// Validation & Input
	Validation   Code = "VALIDATION"
	UnknownTool  Code = "UNKNOWN_TOOL"
	DecodeFailed Code = "DECODE_FAILED"

	// Resource & Limits
	BusyResource    Code = "BUSY_RESOURCE"
	Timeout         Code = "TIMEOUT"
	PayloadTooLarge Code = "PAYLOAD_TOO_LARGE"

	// Workbook access
	NotFound          Code = "NOT_FOUND"
	CorruptWorkbook   Code = "CORRUPT_WORKBOOK"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"

	// Analysis
	AnalysisFailed Code = "ANALYSIS_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

var catalog = map[Code]Entry{
	Validation:   {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry"}},
	UnknownTool:  {Code: UnknownTool, Message: "tool is not registered", Retryable: false, NextSteps: []string{"Call tools/list to see available tools"}},
	DecodeFailed: {Code: DecodeFailed, Message: "workbook content is not valid base64", Retryable: true, NextSteps: []string{"Send the file bytes base64-encoded in file_content"}},

	BusyResource:    {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:         {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Retry with a smaller workbook or increase the timeout"}},
	PayloadTooLarge: {Code: PayloadTooLarge, Message: "payload exceeds configured size", Retryable: false, NextSteps: []string{"Use a smaller workbook or raise limits.max_payload_bytes or limits.max_unzipped_bytes"}},

	NotFound:          {Code: NotFound, Message: "workbook not found", Retryable: true, NextSteps: []string{"Attach the workbook content", "Verify the filename and allowed directories"}},
	CorruptWorkbook:   {Code: CorruptWorkbook, Message: "workbook appears corrupt or unreadable", Retryable: false, NextSteps: []string{"Open in Excel and re-save or repair", "Provide a clean copy"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported workbook format", Retryable: false, NextSteps: []string{"Convert to .xlsx and retry"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "path is outside the allowed directories", Retryable: false, NextSteps: []string{"Choose a file inside an allowed directory"}},

	AnalysisFailed: {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Retry or provide a clean copy of the workbook"}},
}

// Lookup returns the catalog entry for a code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// Text renders "CODE: message | nextSteps: a; b" for clients that surface only
// the message string. Codes missing from the catalog keep the bare form.
func Text(code Code, msg string) string {
	msg = strings.TrimSpace(msg)
	e, known := catalog[code]
	if known && msg == "" {
		msg = e.Message
	}

	var b strings.Builder
	b.WriteString(string(code))
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if known && len(e.NextSteps) > 0 {
		b.WriteString(" | nextSteps: ")
		b.WriteString(strings.Join(e.NextSteps, "; "))
	}
	return b.String()
}

// Parse splits "CODE: message" text. Empty text reads as a bare validation failure.
func Parse(text string) (Code, string) {
	code, msg, _ := strings.Cut(strings.TrimSpace(text), ":")
	if code == "" {
		return Validation, ""
	}
	return Code(strings.TrimSpace(code)), strings.TrimSpace(msg)
}

// FromText turns a "CODE: message" string into a tool error with catalog guidance.
func FromText(text string) *mcp.CallToolResult {
	return New(Parse(text))
}

// New returns a tool error for code; an empty message uses the catalog default.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(Text(code, message))
}

func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return New(code, fmt.Sprintf(format, args...))
}
