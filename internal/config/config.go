// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the exporter configuration from defaults, an
// optional YAML config file, a .env file, the secrets directory, and the
// process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/backlog-exporter/internal/secrets"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BACKLOG"

const (
	configName       = "backlog-exporter"
	defaultUserAgent = "backlog-exporter/0.1"
)

// Keys are the configuration keys understood by Load. Each maps to the
// environment variable BACKLOG_<KEY> with dots replaced by underscores.
var Keys = []string{
	"api_key",
	"project_key",
	"space_domain",
	"ssl_verify",
	"rate_interval",
	"page_size",
	"timeout",
	"user_agent",
	"publish.endpoint",
	"publish.access_key",
	"publish.secret_key",
	"publish.bucket",
	"publish.use_ssl",
	"publish.prefix",
}

var requiredKeys = []string{"api_key", "project_key", "space_domain"}

// Error reports missing required settings.
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = EnvName(k)
	}
	return fmt.Sprintf("missing required configuration: %s must be set", strings.Join(names, ", "))
}

// Options controls where Load looks for configuration sources.
type Options struct {
	// ConfigFile is an explicit YAML config path. Empty searches Dir and
	// ~/.config/backlog-exporter for backlog-exporter.yaml.
	ConfigFile string

	// Dir is the directory holding .env and .secrets/. Empty means ".".
	Dir string

	// RequireCredentials fails with *Error when the API key, project key,
	// or space domain is missing.
	RequireCredentials bool

	// Env looks up process environment variables. Nil uses os.LookupEnv.
	Env func(string) (string, bool)

	// Diag receives informational lines such as the config file used.
	// Nil discards them.
	Diag io.Writer
}

// EnvName returns the environment variable that sets key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load assembles a Config. Precedence, highest first: process environment,
// .env file, secrets directory, config file, defaults.
func Load(opts Options) (types.Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	lookup := opts.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}
	diag := opts.Diag
	if diag == nil {
		diag = io.Discard
	}

	v := viper.New()
	v.SetDefault("ssl_verify", "true")
	v.SetDefault("rate_interval", types.DefaultRateInterval.String())
	v.SetDefault("page_size", types.MaxPageSize)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("publish.use_ssl", "true")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		fmt.Fprintln(diag, "Using config file:", v.ConfigFileUsed())
	}

	s, err := secrets.Load(filepath.Join(dir, secrets.DefaultDir), diag)
	if err != nil {
		return types.Config{}, err
	}
	for key, value := range s.ConfigValues() {
		v.Set(key, value)
	}

	dotenv, err := readDotenv(filepath.Join(dir, ".env"))
	if err != nil {
		return types.Config{}, err
	}
	for _, key := range Keys {
		name := EnvName(key)
		if value, ok := lookup(name); ok && value != "" {
			v.Set(key, value)
		} else if value, ok := dotenv[name]; ok && value != "" {
			v.Set(key, value)
		}
	}

	cfg, err := build(v)
	if err != nil {
		return types.Config{}, err
	}

	if opts.RequireCredentials {
		if err := Validate(cfg); err != nil {
			return types.Config{}, err
		}
	}
	return cfg, nil
}

// Validate reports missing required Backlog settings as *Error.
func Validate(cfg types.Config) error {
	values := map[string]string{
		"api_key":      cfg.Backlog.APIKey,
		"project_key":  cfg.Backlog.ProjectKey,
		"space_domain": cfg.Backlog.SpaceDomain,
	}
	var missing []string
	for _, key := range requiredKeys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}

func build(v *viper.Viper) (types.Config, error) {
	interval, err := parseInterval(v.GetString("rate_interval"))
	if err != nil {
		return types.Config{}, fmt.Errorf("invalid %s: %w", EnvName("rate_interval"), err)
	}
	timeout, err := parseInterval(v.GetString("timeout"))
	if err != nil {
		return types.Config{}, fmt.Errorf("invalid %s: %w", EnvName("timeout"), err)
	}
	pageSize, err := strconv.Atoi(strings.TrimSpace(v.GetString("page_size")))
	if err != nil {
		return types.Config{}, fmt.Errorf("invalid %s: %w", EnvName("page_size"), err)
	}
	if pageSize < 1 || pageSize > types.MaxPageSize {
		return types.Config{}, fmt.Errorf("invalid %s: %d is outside 1-%d", EnvName("page_size"), pageSize, types.MaxPageSize)
	}

	return types.Config{
		Backlog: types.BacklogConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: v.GetString("user_agent"),
				SSLVerify: ParseBool(v.GetString("ssl_verify")),
			},
			SpaceDomain:  strings.TrimSpace(v.GetString("space_domain")),
			APIKey:       strings.TrimSpace(v.GetString("api_key")),
			ProjectKey:   strings.TrimSpace(v.GetString("project_key")),
			RateInterval: interval,
			PageSize:     pageSize,
		},
		Publish: types.PublishConfig{
			Endpoint:  v.GetString("publish.endpoint"),
			AccessKey: v.GetString("publish.access_key"),
			SecretKey: v.GetString("publish.secret_key"),
			Bucket:    v.GetString("publish.bucket"),
			UseSSL:    ParseBool(v.GetString("publish.use_ssl")),
			Prefix:    strings.Trim(v.GetString("publish.prefix"), "/"),
		},
	}, nil
}

// ParseBool treats "1", "true" and "yes" (any case) as true and everything
// else as false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseInterval accepts Go durations ("1.5s", "800ms") and bare numbers,
// which are read as seconds. Empty means zero.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative interval %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval %q", s)
	}
	return d, nil
}

// readDotenv parses a .env file without touching the process environment.
// A missing file yields an empty map.
func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}
