// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backlog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/backlog-exporter/internal/fsutil"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// DownloadAttachment saves one attachment into destDir and returns the
// written path. The filename is override when non-empty, otherwise the
// name from the Content-Disposition header, otherwise the attachment id.
func (c *Client) DownloadAttachment(ctx context.Context, documentID types.ID, attachmentID int64, destDir, override string) (string, error) {
	return c.DownloadAttachmentFunc(ctx, documentID, attachmentID, destDir, func(derived string) string {
		if override != "" {
			return override
		}
		return derived
	})
}

// DownloadAttachmentFunc is DownloadAttachment with the filename chosen by
// name, which receives the Content-Disposition filename ("" when absent).
// The result is made path-safe and falls back to the attachment id.
func (c *Client) DownloadAttachmentFunc(ctx context.Context, documentID types.ID, attachmentID int64, destDir string, name func(derived string) string) (string, error) {
	path := fmt.Sprintf("/documents/%s/attachments/%d", url.PathEscape(documentID.String()), attachmentID)
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("downloading attachment %d of document %s: %w", attachmentID, documentID, err)
	}
	defer resp.Body.Close()

	fallback := strconv.FormatInt(attachmentID, 10)
	filename := name(ParseFilename(resp.Header.Get("Content-Disposition")))
	dest := filepath.Join(destDir, fsutil.SafeFilename(filename, fallback))

	if err := fsutil.WriteFile(dest, resp.Body); err != nil {
		return "", fmt.Errorf("saving attachment %d of document %s: %w", attachmentID, documentID, err)
	}
	return dest, nil
}

// ParseFilename extracts a filename from a Content-Disposition header. The
// extended filename*= form is preferred: its value is URL-decoded after the
// charset'language' prefix is removed. Otherwise the plain
// filename= value is returned with surrounding quotes removed. An empty
// string means no filename could be derived.
func ParseFilename(disposition string) string {
	if v, ok := dispositionParam(disposition, "filename*="); ok {
		if parts := strings.SplitN(v, "'", 3); len(parts) == 3 {
			v = parts[2]
		}
		v = strings.Trim(v, `"`)
		if decoded, err := url.PathUnescape(v); err == nil {
			return decoded
		}
		return v
	}
	if v, ok := dispositionParam(disposition, "filename="); ok {
		return strings.Trim(v, `"`)
	}
	return ""
}

// dispositionParam returns the value following the last occurrence of key,
// up to the next ';'.
func dispositionParam(disposition, key string) (string, bool) {
	i := strings.LastIndex(disposition, key)
	if i < 0 {
		return "", false
	}
	v := disposition[i+len(key):]
	if j := strings.IndexByte(v, ';'); j >= 0 {
		v = v[:j]
	}
	return strings.TrimSpace(v), true
}
