// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ConverterBackend identifies the tool that renders a document to HTML.
type ConverterBackend string

const (
	BackendPandoc    ConverterBackend = "pandoc"
	BackendContainer ConverterBackend = "container"
	BackendGoldmark  ConverterBackend = "goldmark"
)

// ErrorPolicy decides how far a document failure propagates through a walk.
type ErrorPolicy string

const (
	// PolicyStrict aborts the current directory on a document failure and
	// isolates failures at subdirectory boundaries.
	PolicyStrict ErrorPolicy = "strict"

	// PolicyIsolate records every document failure and keeps walking.
	PolicyIsolate ErrorPolicy = "isolate"
)

// TemplatePath is the fixed template every page is rendered with, relative
// to the site root.
const TemplatePath = "tmpl/main.tmpl"

// ConverterConfig holds settings for the conversion step.
type ConverterConfig struct {
	// Backend selects the renderer: pandoc, container, or goldmark.
	Backend ConverterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Binary is the pandoc executable used by the pandoc backend.
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// LedgerConfig holds settings for the build history database.
type LedgerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// SiteConfig groups everything a build needs.
type SiteConfig struct {
	// Root is the site directory; all other paths are relative to it.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// SourceRoot is the directory holding Markdown documents (e.g. "src").
	SourceRoot string `json:"source_root" yaml:"source_root" mapstructure:"source_root"`

	// OutputRoot is the directory receiving rendered pages (e.g. "target").
	OutputRoot string `json:"output_root" yaml:"output_root" mapstructure:"output_root"`

	// DocumentSuffix marks convertible files (e.g. ".md").
	DocumentSuffix string `json:"document_suffix" yaml:"document_suffix" mapstructure:"document_suffix"`

	// OutputSuffix replaces DocumentSuffix on rendered files (e.g. ".html").
	OutputSuffix string `json:"output_suffix" yaml:"output_suffix" mapstructure:"output_suffix"`

	// MaxPathLength rejects longer source paths instead of truncating them.
	MaxPathLength int `json:"max_path_length" yaml:"max_path_length" mapstructure:"max_path_length"`

	Policy    ErrorPolicy     `json:"policy" yaml:"policy" mapstructure:"policy"`
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
}

// DefaultSiteConfig returns the configuration used when nothing overrides it.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Root:           ".",
		SourceRoot:     "src",
		OutputRoot:     "target",
		DocumentSuffix: ".md",
		OutputSuffix:   ".html",
		MaxPathLength:  4096,
		Policy:         PolicyStrict,
		Converter: ConverterConfig{
			Backend: BackendPandoc,
			Binary:  "pandoc",
			Image:   "pandoc/core:latest",
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    ".mdsite/ledger.db",
		},
	}
}

// Validate reports the first setting that would make a build meaningless.
func (c SiteConfig) Validate() error {
	switch {
	case c.SourceRoot == "":
		return fmt.Errorf("source_root must not be empty")
	case c.OutputRoot == "":
		return fmt.Errorf("output_root must not be empty")
	case c.SourceRoot == c.OutputRoot:
		return fmt.Errorf("source_root and output_root must differ (both %q)", c.SourceRoot)
	case c.DocumentSuffix == "" || c.OutputSuffix == "":
		return fmt.Errorf("document_suffix and output_suffix must not be empty")
	case c.MaxPathLength <= 0:
		return fmt.Errorf("max_path_length must be positive, got %d", c.MaxPathLength)
	}

	switch c.Policy {
	case PolicyStrict, PolicyIsolate:
	default:
		return fmt.Errorf("unsupported policy %q: use strict or isolate", c.Policy)
	}

	switch c.Converter.Backend {
	case BackendPandoc, BackendContainer, BackendGoldmark:
	default:
		return fmt.Errorf("unsupported converter backend %q: use pandoc, container, or goldmark", c.Converter.Backend)
	}
	return nil
}
