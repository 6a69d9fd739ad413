package toolstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// defaultAPITimeout bounds Developer API calls
	defaultAPITimeout = 20 * time.Second

	// defaultTransferTimeout bounds file uploads and downloads
	defaultTransferTimeout = 60 * time.Second

	// maxResponseBytes caps how much of a response body is read
	maxResponseBytes = 32 << 20 // 32 MiB
)

// Client talks to the Tool Store Developer API on behalf of one user.
type Client struct {
	cfg      Config
	api      *http.Client
	transfer *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for the configured tool namespace and user.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		api:      &http.Client{Timeout: defaultAPITimeout},
		transfer: &http.Client{Timeout: defaultTransferTimeout},
		logger:   logger,
	}, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// HasTokenEndpoint reports whether a token refresh endpoint is configured.
func (c *Client) HasTokenEndpoint() bool {
	return c.cfg.TokenEndpoint != ""
}

// doJSON performs an authenticated JSON request against the Developer
// API and decodes the response into out (if non-nil). It returns the
// HTTP status code alongside any error so callers can special-case 404.
func (c *Client) doJSON(ctx context.Context, op, method, url string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, &StorageError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.JWT)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.api.Do(req)
	if err != nil {
		return 0, &StorageError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := readCapped(resp.Body, maxResponseBytes)
	if err != nil {
		return resp.StatusCode, &StorageError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StorageError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", truncate(string(data), 512)),
		}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, &StorageError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return resp.StatusCode, nil
}

// readCapped reads the whole body, failing when it exceeds limit
// bytes. Truncating would hand callers a silently incomplete file.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// userDataURL is the Tool User Data endpoint for the configured user.
func (c *Client) userDataURL() string {
	return fmt.Sprintf("%s/tool-user-data/%s/%s/user/%s",
		c.cfg.APIBase, c.cfg.DevSlug, c.cfg.ToolSlug, c.cfg.UserID)
}

// UserData fetches the tool user data document for the current user.
// A missing document is an empty one, not an error.
func (c *Client) UserData(ctx context.Context) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	status, err := c.doJSON(ctx, "getUserData", http.MethodGet, c.userDataURL(), nil, &doc)
	if status == http.StatusNotFound {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return map[string]json.RawMessage{}, nil
	}
	// The API may wrap the document in {"data": {...}}.
	if inner, ok := doc["data"]; ok {
		var unwrapped map[string]json.RawMessage
		if err := json.Unmarshal(inner, &unwrapped); err == nil && unwrapped != nil {
			return unwrapped, nil
		}
	}
	return doc, nil
}

// SaveUserData replaces the tool user data document for the current
// user. Callers send the complete desired document; the PUT replaces it
// atomically on the host side.
func (c *Client) SaveUserData(ctx context.Context, doc map[string]json.RawMessage) error {
	_, err := c.doJSON(ctx, "saveUserData", http.MethodPut, c.userDataURL(), doc, nil)
	return err
}
