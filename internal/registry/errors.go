package registry

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge is returned when decoded file content exceeds the configured limit.
var ErrPayloadTooLarge = errors.New("payload too large")

// UnknownToolError is returned for names that are not registered or are disabled.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// DecodeError wraps a malformed base64 file payload.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode file content: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// ValidationError carries a "VALIDATION: ..." message for bad arguments.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
