package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DownloadRequest fetches a stored drawing for preview. URL is usually the
// pdf_url returned by an upload; a root-relative URL is resolved against the
// base URL. Dest is the local file to write.
type DownloadRequest struct {
	URL   string
	Token string
	Dest  string
}

// DownloadFile saves the drawing at req.URL to req.Dest and returns the written path.
// The file is written to a temporary name first so a failed download never
// leaves a truncated PDF behind.
func (c *Client) DownloadFile(ctx context.Context, req DownloadRequest) Result[string] {
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return fail[string](MsgNothingToPreview)
	}
	if strings.HasPrefix(target, "/") {
		target = c.url(target)
	}

	var headers map[string]string
	if req.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + req.Token}
	}

	resp, err := c.transport.Get(ctx, target, headers)
	if err != nil {
		return fail[string](c.failureMessage("download", target, err))
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		c.logMalformed("download", resp.StatusCode(), resp.Body(), fmt.Errorf("unexpected status %d", resp.StatusCode()))
		return fail[string](MsgDownloadFailed)
	}

	if err := writeFileAtomic(req.Dest, resp.Body()); err != nil {
		c.log.WarnObj("download save failed", "api_error", map[string]any{
			"op":    "download",
			"dest":  req.Dest,
			"error": err.Error(),
		})
		return fail[string](MsgDownloadSaveFailed)
	}
	return ok(req.Dest)
}

func writeFileAtomic(dest string, data []byte) error {
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("destination path is empty")
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
