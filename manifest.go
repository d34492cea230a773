package dazzle

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the conventional project manifest file name.
const ManifestName = "dazzle.yaml"

// Manifest is a project manifest. It names the root module and where to find
// spec files, so tools can run from the project directory without flags.
type Manifest struct {
	// Root is the module the project builds from. Empty means every
	// discovered module.
	Root string `yaml:"root,omitempty"`

	// Include lists doublestar patterns of spec files, relative to the
	// manifest directory. Empty means the manifest directory tree.
	Include []string `yaml:"include,omitempty"`

	// Strict promotes warnings to failures.
	Strict bool `yaml:"strict,omitempty"`

	dir string
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// FindManifest looks for a manifest in dir and its parents.
func FindManifest(dir string) (*Manifest, error) {
	for {
		path := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(path); err == nil {
			return LoadManifest(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, os.ErrNotExist
		}
		dir = parent
	}
}

// Source builds the Source described by the manifest's include patterns.
func (m *Manifest) Source() (Source, error) {
	if len(m.Include) == 0 {
		return DirTree(m.dir)
	}
	patterns := make([]string, len(m.Include))
	for i, p := range m.Include {
		if filepath.IsAbs(p) {
			patterns[i] = p
		} else {
			patterns[i] = filepath.Join(m.dir, p)
		}
	}
	return Glob(patterns...)
}
