package telemetry

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestHooksLogRequestOutcomes(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))

	h.OnRequest("req-1", "tools/list", time.Millisecond, nil)
	require.Contains(t, buf.String(), `"request_id":"req-1"`)
	require.Contains(t, buf.String(), `"method":"tools/list"`)
	require.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	h.OnToolCall("req-2", "extract_comments", time.Millisecond, errors.New("boom"))
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), `"tool":"extract_comments"`)
	require.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	h.OnServerStop("line", 3, nil)
	require.Contains(t, buf.String(), `"requests":3`)
}

func TestServerHooksBuilds(t *testing.T) {
	hooks := NewHooks(zerolog.Nop()).ServerHooks()
	require.NotNil(t, hooks)
	require.Len(t, hooks.OnAfterCallTool, 1)
	require.Len(t, hooks.OnError, 1)
}
