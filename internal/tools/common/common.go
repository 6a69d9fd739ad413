package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/contactkeeper/internal/auth"
	"github.com/teemow/contactkeeper/internal/contacts"
	"github.com/teemow/contactkeeper/internal/people"
	"github.com/teemow/contactkeeper/internal/toolstore"
	"github.com/teemow/contactkeeper/internal/transfer"
)

// StringArg extracts a non-empty string argument. The second return
// distinguishes an absent or empty argument from a present one, which
// matters for partial updates.
func StringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// IntArg extracts an integer argument. JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// JSONResult renders a value as an indented JSON text result.
func JSONResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult maps a domain error to a tool error result with a stable
// category prefix the caller can branch on.
func ErrorResult(err error) *mcp.CallToolResult {
	var verr *contacts.ValidationError
	var ferr *transfer.FormatError
	var serr *toolstore.StorageError

	switch {
	case auth.IsReauthRequired(err):
		return mcp.NewToolResultError("reauthorization required: " + err.Error())
	case people.IsNotFound(err):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.As(err, &verr):
		return mcp.NewToolResultError("invalid argument: " + err.Error())
	case errors.As(err, &ferr):
		return mcp.NewToolResultError("bad file: " + err.Error())
	case errors.As(err, &serr):
		return mcp.NewToolResultError("storage error: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
