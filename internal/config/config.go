// Package config holds compile-time constants shared by the lexer,
// parser and CLI, plus project-level settings loaded from an optional
// .tangramrc.yaml (SPEC_FULL.md "Config").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the toolchain version string. The CLI does not print it;
// `-v` selects verbose logging.
const Version = "0.1.0"

// SourceExt is the extension recognized for Tangram template sources.
const SourceExt = ".tgm"

// ReservedWords cannot be used as identifiers (spec.md §4.2).
var ReservedWords = map[string]bool{
	"generator": true, "range": true, "int": true, "bool": true, "string": true,
	"pattern": true, "sum": true, "continue": true, "break": true,
	"if": true, "else": true, "for": true, "in": true, "return": true,
	"instanceof": true, "include": true, "true": true, "false": true, "directive": true,
}

// Project is the contents of a .tangramrc.yaml file: include search
// paths and default builtin behavior applied before any -I flags from
// the command line.
type Project struct {
	IncludeDirs []string `yaml:"include_dirs,omitempty"`
	// Strict is read from the file but not consulted anywhere: the CLI
	// merges only IncludeDirs into its options.
	Strict bool `yaml:"strict,omitempty"`
}

// LoadProject reads and parses path. A missing file is not an error —
// Tangram projects run fine without one.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &p, nil
}

// FindProjectFile walks up from dir looking for .tangramrc.yaml,
// mirroring the common "search upward for a dotfile" idiom.
func FindProjectFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ".tangramrc.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
