// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Result summarises a publish pass.
type Result struct {
	Objects int
	Bytes   int64
}

// Publish uploads every regular file under dir to store. Object keys are the
// slash-separated path relative to dir, joined to prefix. Hidden temp files
// left by interrupted writes are skipped, as is any relative path matching
// one of the exclude patterns (path.Match syntax). A progress line per
// object goes to w.
func Publish(ctx context.Context, dir, prefix string, store Storage, w io.Writer, exclude ...string) (Result, error) {
	var res Result
	prefix = strings.Trim(prefix, "/")

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() || isTempFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if excluded(key, exclude) {
			return nil
		}
		if prefix != "" {
			key = path.Join(prefix, key)
		}

		n, err := putFile(ctx, store, p, key)
		if err != nil {
			return err
		}
		res.Objects++
		res.Bytes += n
		fmt.Fprintf(w, "  published %s (%d bytes)\n", key, n)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("publishing %s: %w", dir, err)
	}
	return res, nil
}

func putFile(ctx context.Context, store Storage, p, key string) (int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}

	info, err := store.Put(ctx, key, f, PutOptions{
		ContentType: contentType(p),
		Size:        st.Size(),
	})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".export-") && strings.HasSuffix(name, ".tmp")
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
	}
	return false
}
