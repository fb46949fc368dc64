// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish uploads an exported document tree to S3-compatible object
// storage.
package publish

import (
	"context"
	"io"
)

// PutOptions describes an object being uploaded.
type PutOptions struct {
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// ObjectInfo is what the backend reports after an upload.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Storage is the object store an export is published to.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
}
