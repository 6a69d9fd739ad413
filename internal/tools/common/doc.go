// Package common provides shared helpers for MCP tool handlers:
// argument extraction, JSON result formatting, domain error mapping,
// and metrics instrumentation for tool calls.
package common
