package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Filled LaTeX and base64 images make payloads large.
const maxLoggedPayload = 4096

// trafficLogging logs every JSON-RPC exchange at debug level. Notifications
// have no response and only the request is logged.
func trafficLogging(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			attrs := []any{"direction", direction, "method", method}
			if id := getSessionID(ctx); id != "" {
				attrs = append(attrs, "session_id", id)
			} else if id := safeSessionID(req); id != "" {
				attrs = append(attrs, "session_id", id)
			}
			params := safeParams(req)
			if call, ok := params.(*sdkmcp.CallToolParamsRaw); ok && call != nil {
				attrs = append(attrs, "tool", call.Name)
			}

			if strings.HasPrefix(method, "notifications/") {
				logger.Debug("mcp notification", append(attrs, "params", truncatedJSON(params))...)
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			attrs = append(attrs,
				"duration", time.Since(start),
				"params", truncatedJSON(params),
				"result", truncatedJSON(result),
			)
			if r, ok := result.(*sdkmcp.CallToolResult); ok && r != nil && r.IsError {
				attrs = append(attrs, "tool_error", true)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp exchange", attrs...)
			return result, err
		}
	}
}

// safeSessionID and safeParams guard against typed-nil requests, whose
// accessors panic.
func safeSessionID(req sdkmcp.Request) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if req == nil || req.GetSession() == nil {
		return ""
	}
	return req.GetSession().ID()
}

func safeParams(req sdkmcp.Request) (params sdkmcp.Params) {
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	if req == nil {
		return nil
	}
	return req.GetParams()
}

func truncatedJSON(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "<unencodable>"
	}
	if len(data) > maxLoggedPayload {
		return string(data[:maxLoggedPayload]) + "...(truncated)"
	}
	return string(data)
}
