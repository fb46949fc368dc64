// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultRateInterval is the minimum spacing between two Backlog API calls.
const DefaultRateInterval = 1100 * time.Millisecond

// MaxPageSize is the largest page the documents endpoint accepts.
const MaxPageSize = 100

// HTTPConfig holds shared HTTP settings for calls to the Backlog API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is sent with every request (e.g. "backlog-exporter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// SSLVerify controls TLS certificate verification (default true).
	SSLVerify bool `json:"ssl_verify" yaml:"ssl_verify"`
}

// BacklogConfig identifies the Backlog space and project to export from.
type BacklogConfig struct {
	HTTPConfig `yaml:",inline"`

	// SpaceDomain is the hostname of the Backlog space (e.g. "example.backlog.com").
	SpaceDomain string `json:"space_domain" yaml:"space_domain"`

	// APIKey authenticates every request. It is sent as the apiKey query parameter.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ProjectKey is the short project identifier (e.g. "DOCS").
	ProjectKey string `json:"project_key" yaml:"project_key"`

	// RateInterval is the minimum time between consecutive API calls (default 1.1s).
	RateInterval time.Duration `json:"rate_interval" yaml:"rate_interval"`

	// PageSize is the number of documents fetched per list request (1-100, default 100).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// BaseURL returns the REST API root for the configured space.
func (c BacklogConfig) BaseURL() string {
	return "https://" + c.SpaceDomain + "/api/v2"
}

// PublishConfig holds S3-compatible object storage settings used to publish
// an exported tree. Publishing is optional; an empty Endpoint disables it.
type PublishConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`

	// Prefix is prepended to every object key (e.g. "exports/DOCS").
	Prefix string `json:"prefix" yaml:"prefix"`
}

// Enabled reports whether a publish target is configured.
func (c PublishConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ExportConfig holds settings for a single export pass.
type ExportConfig struct {
	// OutputDir is the directory the document tree is mirrored into.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Index records the export in a SQLite index and writes a manifest.
	Index bool `json:"index" yaml:"index"`

	// ManifestFormat is "yaml" (default) or "json".
	ManifestFormat string `json:"manifest_format" yaml:"manifest_format"`

	// Publish uploads the output directory after a successful export.
	Publish bool `json:"publish" yaml:"publish"`
}

// Config groups every setting the CLI needs. It is built once at startup
// and passed to constructors.
type Config struct {
	Backlog BacklogConfig `json:"backlog" yaml:"backlog"`
	Publish PublishConfig `json:"publish" yaml:"publish"`
}
