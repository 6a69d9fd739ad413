package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/contactkeeper/internal/server"
)

// ToolHandler is the mcp-go handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Instrumented wraps a tool handler with call metrics.
//
// Usage:
//
//	s.AddTool(myTool, common.Instrumented("my_tool", sc, handler))
func Instrumented(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		if metrics == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		result, err := handler(ctx, request)

		status := "success"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}
		metrics.ObserveToolCall(toolName, status, time.Since(start))

		return result, err
	}
}
