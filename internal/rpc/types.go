package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	jsonRPCVersion = "2.0"

	CodeParseError    = -32700
	CodeInternalError = -32603
)

// Method names understood by the line transport.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
)

// zeroID is echoed when a request carries no id or could not be parsed.
var zeroID = json.RawMessage("0")

// Request is one line of input. FileContent sits beside params rather than
// inside it; clients that speak plain JSON-RPC can use arguments.file_content.
type Request struct {
	JSONRPC     string          `json:"jsonrpc"`
	ID          json.RawMessage `json:"id,omitempty"`
	Method      string          `json:"method"`
	Params      json.RawMessage `json:"params,omitempty"`
	FileContent string          `json:"fileContent,omitempty"`
}

// Response is one line of output. Exactly one of Result or Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// CallParams are the params of a tools/call request.
type CallParams struct {
	Name      string        `json:"name"`
	Arguments CallArguments `json:"arguments"`
}

type CallArguments struct {
	Filename    string `json:"filename"`
	FileContent string `json:"file_content,omitempty"`
}

// InitializeResult answers the initialize handshake.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ListResult answers tools/list in catalog order.
type ListResult struct {
	Tools []mcp.Tool `json:"tools"`
}

// CallResult carries the rendered report as a single JSON text.
type CallResult struct {
	Content string `json:"content"`
}

// UnknownMethodError is returned for any method outside the three above.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("Unknown method: %s", e.Method)
}

// LineTooLongError rejects a request line over the configured size.
type LineTooLongError struct {
	Size  int
	Limit int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("request line of %d bytes exceeds limit of %d", e.Size, e.Limit)
}
