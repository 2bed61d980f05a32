package mcp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func TestTrafficLogging_ToolCall(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	next := func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		return &sdkmcp.CallToolResult{IsError: true}, nil
	}
	handler := trafficLogging(logger, "inbound")(next)

	req := &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "render_document"}}
	_, err := handler(context.Background(), "tools/call", req)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "mcp exchange")
	require.Contains(t, out, "direction=inbound")
	require.Contains(t, out, "tool=render_document")
	require.Contains(t, out, "tool_error=true")
}

func TestTrafficLogging_SkippedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	called := false
	next := func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		called = true
		return nil, errors.New("boom")
	}
	_, err := trafficLogging(logger, "inbound")(next)(context.Background(), "tools/list", nil)
	require.EqualError(t, err, "boom")
	require.True(t, called)
	require.Empty(t, buf.String())
}

func TestTruncatedJSON(t *testing.T) {
	require.Equal(t, "null", truncatedJSON(nil))
	require.Equal(t, `{"a":1}`, truncatedJSON(map[string]int{"a": 1}))
	require.Equal(t, "<unencodable>", truncatedJSON(make(chan int)))

	long := truncatedJSON(strings.Repeat("x", maxLoggedPayload*2))
	require.True(t, strings.HasSuffix(long, "...(truncated)"))
	require.Len(t, long, maxLoggedPayload+len("...(truncated)"))
}
