package toolstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/teemow/contactkeeper/internal/logging"
)

// FileInfo describes a file stored in Tool Store storage.
type FileInfo struct {
	// StoragePath is the host-side path of the stored file
	StoragePath string `json:"storagePath"`

	// FileName is the target file name as requested
	FileName string `json:"fileName"`

	// ContentType is the MIME type the file was stored with
	ContentType string `json:"contentType"`

	// Size is the uploaded size in bytes
	Size int64 `json:"size"`
}

// Upload stores content under fileName using the presigned-URL flow:
// first request an upload URL from the Developer API, then PUT the
// bytes to it.
func (c *Client) Upload(ctx context.Context, fileName string, content []byte, contentType string) (*FileInfo, error) {
	genURL := c.cfg.APIBase + "/tool-storage/generate-upload-url"
	payload := map[string]string{
		"dev_slug":     c.cfg.DevSlug,
		"tool_slug":    c.cfg.ToolSlug,
		"user_slug":    c.cfg.UserSlug,
		"file_name":    fileName,
		"content_type": contentType,
	}
	var resp struct {
		UploadURL   string `json:"upload_url"`
		URL         string `json:"url"`
		StoragePath string `json:"storage_path"`
	}
	if _, err := c.doJSON(ctx, "generateUploadURL", http.MethodPost, genURL, payload, &resp); err != nil {
		return nil, err
	}
	uploadURL := resp.UploadURL
	if uploadURL == "" {
		uploadURL = resp.URL
	}
	if uploadURL == "" {
		return nil, &StorageError{Op: "upload", Path: fileName, Err: fmt.Errorf("no upload URL returned")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return nil, &StorageError{Op: "upload", Path: fileName, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	putResp, err := c.transfer.Do(req)
	if err != nil {
		return nil, &StorageError{Op: "upload", Path: fileName, Err: err}
	}
	defer putResp.Body.Close()
	if putResp.StatusCode < 200 || putResp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(putResp.Body, 512))
		return nil, &StorageError{
			Op:     "upload",
			Path:   fileName,
			Status: putResp.StatusCode,
			Err:    fmt.Errorf("%s", string(body)),
		}
	}

	c.logger.Info("file uploaded",
		logging.Operation("toolstore.upload"),
		"file_name", fileName,
		"size", len(content),
	)
	return &FileInfo{
		StoragePath: resp.StoragePath,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(content)),
	}, nil
}

// DownloadURL resolves a presigned download URL for a stored file.
func (c *Client) DownloadURL(ctx context.Context, fileName string) (string, error) {
	url := fmt.Sprintf("%s/tool-storage/download/%s/%s/%s/%s",
		c.cfg.APIBase, c.cfg.DevSlug, c.cfg.ToolSlug, c.cfg.UserSlug, fileName)
	var resp struct {
		DownloadURL string `json:"download_url"`
		URL         string `json:"url"`
	}
	if _, err := c.doJSON(ctx, "downloadURL", http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}
	downloadURL := resp.DownloadURL
	if downloadURL == "" {
		downloadURL = resp.URL
	}
	if downloadURL == "" {
		return "", &StorageError{Op: "downloadURL", Path: fileName, Err: fmt.Errorf("no download URL returned")}
	}
	return downloadURL, nil
}

// Fetch retrieves raw bytes from a public URL, used for import sources.
// No host credentials are attached: the URL is expected to be either
// public or presigned.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &StorageError{Op: "fetch", Path: rawURL, Err: err}
	}

	resp, err := c.transfer.Do(req)
	if err != nil {
		return nil, &StorageError{Op: "fetch", Path: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StorageError{Op: "fetch", Path: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("download failed")}
	}

	data, err := readCapped(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, &StorageError{Op: "fetch", Path: rawURL, Err: err}
	}
	return data, nil
}
