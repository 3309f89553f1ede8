// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutputLocation is where a source document lands, relative to the output
// root. ParentDir is empty exactly when the document sits directly under
// the source root.
type OutputLocation struct {
	ParentDir string `json:"parent_dir" yaml:"parent_dir"`
	Stem      string `json:"stem" yaml:"stem"`
}

// PageStatus records what happened to a single document.
type PageStatus string

const (
	PageConverted PageStatus = "converted"
	PageFailed    PageStatus = "failed"
)

// Page is the record of one processed document.
type Page struct {
	SourcePath string        `json:"source_path" yaml:"source_path"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status     PageStatus    `json:"status" yaml:"status"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// BuildSummary holds the outcome of a walk.
type BuildSummary struct {
	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	Warnings  int `json:"warnings" yaml:"warnings"`

	// SubtreeFailures counts subdirectories whose walk returned an error
	// that was isolated from their siblings.
	SubtreeFailures int `json:"subtree_failures" yaml:"subtree_failures"`

	Pages []Page `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// Total returns the number of documents that reached the converter stage.
func (s BuildSummary) Total() int {
	return s.Converted + s.Failed
}

// HasFailures reports whether any document or subtree failed.
func (s BuildSummary) HasFailures() bool {
	return s.Failed > 0 || s.SubtreeFailures > 0
}

// Run is one build as recorded in the ledger.
type Run struct {
	ID         string           `json:"id" yaml:"id"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time        `json:"finished_at" yaml:"finished_at"`
	Backend    ConverterBackend `json:"backend" yaml:"backend"`
	Policy     ErrorPolicy      `json:"policy" yaml:"policy"`
	Converted  int              `json:"converted" yaml:"converted"`
	Skipped    int              `json:"skipped" yaml:"skipped"`
	Failed     int              `json:"failed" yaml:"failed"`
	Warnings   int              `json:"warnings" yaml:"warnings"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
	Pages      []Page           `json:"pages,omitempty" yaml:"pages,omitempty"`
}
