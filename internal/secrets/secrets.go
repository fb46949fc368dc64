// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// file contents are the value.
//
// Recognised files: backlog-api-key, publish-access-key, publish-secret-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// fileKeys maps recognised secret filenames to configuration keys.
var fileKeys = map[string]string{
	"backlog-api-key":    "api_key",
	"publish-access-key": "publish.access_key",
	"publish-secret-key": "publish.secret_key",
}

// Secrets holds loaded secret values keyed by filename.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty set. Unreadable files are reported on
// warn and skipped.
func Load(dir string, warn io.Writer) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// ConfigValues returns the recognised secrets keyed by configuration key.
// Unrecognised files are ignored.
func (s Secrets) ConfigValues() map[string]string {
	out := make(map[string]string)
	for file, key := range fileKeys {
		if v, ok := s[file]; ok {
			out[key] = v
		}
	}
	return out
}
