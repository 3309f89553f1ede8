package types

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildError_Is(t *testing.T) {
	err := NewBuildError(KindPathFormat, "notes.md", errors.New(`does not start with "src/"`))
	wrapped := fmt.Errorf("building: %w", err)

	assert.True(t, errors.Is(wrapped, ErrPathFormat))
	assert.False(t, errors.Is(wrapped, ErrConversion))
	assert.Equal(t, `PathFormatError: notes.md: does not start with "src/"`, err.Error())

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindPathFormat, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestBuildError_UnwrapsCause(t *testing.T) {
	err := NewBuildError(KindEnumeration, "src", fs.ErrPermission)
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.True(t, errors.Is(err, ErrEnumeration))
}

func TestSiteConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SiteConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*SiteConfig) {}},
		{name: "empty source root", mutate: func(c *SiteConfig) { c.SourceRoot = "" }, wantErr: "source_root"},
		{name: "same roots", mutate: func(c *SiteConfig) { c.OutputRoot = "src" }, wantErr: "must differ"},
		{name: "empty suffix", mutate: func(c *SiteConfig) { c.DocumentSuffix = "" }, wantErr: "suffix"},
		{name: "bad max length", mutate: func(c *SiteConfig) { c.MaxPathLength = 0 }, wantErr: "max_path_length"},
		{name: "unknown policy", mutate: func(c *SiteConfig) { c.Policy = "lenient" }, wantErr: "policy"},
		{name: "unknown backend", mutate: func(c *SiteConfig) { c.Converter.Backend = "grobid" }, wantErr: "backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSiteConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary{Converted: 3, Skipped: 2}
	assert.Equal(t, 3, s.Total())
	assert.False(t, s.HasFailures())

	s.SubtreeFailures = 1
	assert.True(t, s.HasFailures())
}
