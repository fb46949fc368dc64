// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A/B", "A_B"},
		{`C:\docs`, "C:_docs"},
		{"a/b\\c/d", "a_b_c_d"},
		{"plain name", "plain name"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "report.pdf", SafeFilename("report.pdf", "7"))
	assert.Equal(t, ".._etc_passwd", SafeFilename("../etc/passwd", "7"))
	assert.Equal(t, "7", SafeFilename("", "7"))
	assert.Equal(t, "7", SafeFilename("..", "7"))
	assert.Equal(t, "7", SafeFilename(" . ", "7"))
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	root := t.TempDir()
	dirs := []string{filepath.Join(root, "a", "b"), filepath.Join(root, "c")}

	require.NoError(t, EnsureDirs(dirs...))
	require.NoError(t, EnsureDirs(dirs...))

	for _, d := range dirs {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirs_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := EnsureDirs(filepath.Join(blocker, "child"))
	require.Error(t, err)
	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr))
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteString(path, "first"))
	require.NoError(t, WriteString(path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestWriteFile_CleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	err := WriteFile(path, io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
