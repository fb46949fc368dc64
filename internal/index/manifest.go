// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const (
	manifestYAML = "manifest.yaml"
	manifestJSON = "manifest.json"
)

// Manifest summarises one export pass.
type Manifest struct {
	Run       Run              `json:"run" yaml:"run"`
	Documents []DocumentRecord `json:"documents" yaml:"documents"`
}

// BuildManifest assembles the manifest for a run.
func (s *Store) BuildManifest(ctx context.Context, runID string) (Manifest, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return Manifest{}, err
	}
	docs, err := s.Documents(ctx, runID)
	if err != nil {
		return Manifest{}, fmt.Errorf("querying for manifest: %w", err)
	}
	if docs == nil {
		docs = []DocumentRecord{}
	}
	return Manifest{Run: run, Documents: docs}, nil
}

// CheckManifestFormat reports whether format names a manifest encoding:
// "yaml", "json", or empty for YAML.
func CheckManifestFormat(format string) error {
	switch format {
	case "", "yaml", "json":
		return nil
	}
	return fmt.Errorf("unsupported manifest format %q: use yaml or json", format)
}

// WriteManifest writes the manifest of a run in the given format and
// returns its path.
func (s *Store) WriteManifest(ctx context.Context, runID, format string) (string, error) {
	if err := CheckManifestFormat(format); err != nil {
		return "", err
	}
	if format == "json" {
		return s.WriteManifestJSON(ctx, runID)
	}
	return s.WriteManifestYAML(ctx, runID)
}

// WriteManifestYAML writes .backlog/manifest.yaml for a run and returns its
// path.
func (s *Store) WriteManifestYAML(ctx context.Context, runID string) (string, error) {
	m, err := s.BuildManifest(ctx, runID)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, manifestYAML)
	return path, os.WriteFile(path, data, 0o644)
}

// WriteManifestJSON writes .backlog/manifest.json for a run and returns its
// path.
func (s *Store) WriteManifestJSON(ctx context.Context, runID string) (string, error) {
	m, err := s.BuildManifest(ctx, runID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, manifestJSON)
	return path, os.WriteFile(path, data, 0o644)
}

// ReadManifest loads the YAML manifest of an export directory.
func ReadManifest(outputDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, DirName, manifestYAML))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
