// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/backlog-exporter/pkg/types"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_FromEnvironment(t *testing.T) {
	cfg, err := Load(Options{
		Dir:                t.TempDir(),
		RequireCredentials: true,
		Env: envMap(map[string]string{
			"BACKLOG_API_KEY":      "key",
			"BACKLOG_PROJECT_KEY":  "DOCS",
			"BACKLOG_SPACE_DOMAIN": "example.backlog.com",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Backlog.APIKey)
	assert.Equal(t, "DOCS", cfg.Backlog.ProjectKey)
	assert.Equal(t, "example.backlog.com", cfg.Backlog.SpaceDomain)
	assert.True(t, cfg.Backlog.SSLVerify)
	assert.Equal(t, types.DefaultRateInterval, cfg.Backlog.RateInterval)
	assert.Equal(t, 100, cfg.Backlog.PageSize)
	assert.Equal(t, "https://example.backlog.com/api/v2", cfg.Backlog.BaseURL())
	assert.False(t, cfg.Publish.Enabled())
}

func TestLoad_MissingCredentials(t *testing.T) {
	_, err := Load(Options{
		Dir:                t.TempDir(),
		RequireCredentials: true,
		Env:                envMap(map[string]string{"BACKLOG_PROJECT_KEY": "DOCS"}),
	})
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"api_key", "space_domain"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "BACKLOG_API_KEY")
	assert.Contains(t, err.Error(), "BACKLOG_SPACE_DOMAIN")
}

func TestLoad_CredentialsOptional(t *testing.T) {
	cfg, err := Load(Options{Dir: t.TempDir(), Env: envMap(nil)})
	require.NoError(t, err)
	assert.Empty(t, cfg.Backlog.APIKey)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "backlog-exporter.yaml"), `
api_key: from-file
project_key: FILE
space_domain: file.backlog.com
page_size: 50
publish:
  endpoint: s3.local:9000
  bucket: exports
`)
	writeFile(t, filepath.Join(dir, ".secrets", "backlog-api-key"), "from-secret\n")
	writeFile(t, filepath.Join(dir, ".env"), "BACKLOG_PROJECT_KEY=DOTENV\nBACKLOG_SPACE_DOMAIN=dotenv.backlog.com\n")

	cfg, err := Load(Options{
		Dir: dir,
		Env: envMap(map[string]string{"BACKLOG_SPACE_DOMAIN": "env.backlog.com"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.Backlog.APIKey, "secrets override the config file")
	assert.Equal(t, "DOTENV", cfg.Backlog.ProjectKey, ".env overrides the config file")
	assert.Equal(t, "env.backlog.com", cfg.Backlog.SpaceDomain, "environment overrides .env")
	assert.Equal(t, 50, cfg.Backlog.PageSize)
	assert.Equal(t, "s3.local:9000", cfg.Publish.Endpoint)
	assert.Equal(t, "exports", cfg.Publish.Bucket)
	assert.True(t, cfg.Publish.Enabled())
}

func TestLoad_DotenvDoesNotTouchProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "BACKLOG_USER_AGENT=dotenv-agent\n")

	_, had := os.LookupEnv("BACKLOG_USER_AGENT")
	cfg, err := Load(Options{Dir: dir, Env: envMap(nil)})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-agent", cfg.Backlog.UserAgent)
	_, has := os.LookupEnv("BACKLOG_USER_AGENT")
	assert.Equal(t, had, has)
}

func TestLoad_SSLVerify(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := Load(Options{
				Dir: t.TempDir(),
				Env: envMap(map[string]string{"BACKLOG_SSL_VERIFY": tt.value}),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Backlog.SSLVerify)
		})
	}
}

func TestLoad_RateInterval(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "2", want: 2 * time.Second},
		{value: "0.5", want: 500 * time.Millisecond},
		{value: "250ms", want: 250 * time.Millisecond},
		{value: "0", want: 0},
		{value: "-1", wantErr: true},
		{value: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := Load(Options{
				Dir: t.TempDir(),
				Env: envMap(map[string]string{"BACKLOG_RATE_INTERVAL": tt.value}),
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Backlog.RateInterval)
		})
	}
}

func TestLoad_InvalidPageSize(t *testing.T) {
	for _, value := range []string{"0", "101", "many"} {
		_, err := Load(Options{
			Dir: t.TempDir(),
			Env: envMap(map[string]string{"BACKLOG_PAGE_SIZE": value}),
		})
		assert.Error(t, err, value)
	}
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	_, err := Load(Options{
		Dir:        t.TempDir(),
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
		Env:        envMap(nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "BACKLOG_API_KEY", EnvName("api_key"))
	assert.Equal(t, "BACKLOG_PUBLISH_SECRET_KEY", EnvName("publish.secret_key"))
}
