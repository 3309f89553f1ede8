// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders Markdown documents to HTML with pluggable
// backends: a local pandoc binary, pandoc inside a container, or goldmark
// in-process.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/mdsite/internal/container"
	"github.com/pdiddy/mdsite/pkg/types"
)

const (
	inputFormat  = "markdown"
	outputFormat = "html"
)

// Converter renders one document. src and dst are slash-separated paths
// relative to the site root. Failures are *types.BuildError values of kind
// ConversionError.
type Converter interface {
	Name() string
	Convert(ctx context.Context, src, dst string) error
}

// New builds the converter selected by cfg.Converter.Backend for the site
// rooted at cfg.Root. Backends that depend on an external tool verify it is
// usable before returning.
func New(ctx context.Context, cfg types.SiteConfig) (Converter, error) {
	switch cfg.Converter.Backend {
	case types.BackendPandoc, "":
		return NewPandocConverter(cfg.Root, cfg.Converter.Binary)
	case types.BackendContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(ctx, rt, cfg.Converter.Image, cfg.Root)
	case types.BackendGoldmark:
		return NewGoldmarkConverter(cfg.Root)
	default:
		return nil, fmt.Errorf("unsupported converter backend %q", cfg.Converter.Backend)
	}
}

// pandocArgs returns the argument list shared by the pandoc and container
// backends:
//
//	<src> -f markdown -t html -o <dst> --template=tmpl/main.tmpl
func pandocArgs(src, dst string) []string {
	return []string{
		src,
		"-f", inputFormat,
		"-t", outputFormat,
		"-o", dst,
		"--template=" + types.TemplatePath,
	}
}

func conversionError(src string, err error) error {
	return types.NewBuildError(types.KindConversion, src, err)
}

// withStderr appends trimmed tool output to err so the operator sees why
// the tool failed.
func withStderr(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, stderr)
}
