// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// commander abstracts process execution for testing.
type commander interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args []string, stderr io.Writer) error
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osCommander) Run(ctx context.Context, dir, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = stderr
	return cmd.Run()
}

// PandocConverter runs a local pandoc binary once per document with the
// site root as working directory.
type PandocConverter struct {
	binary string
	root   string
	cmd    commander
}

// NewPandocConverter returns a converter for the pandoc binary, which must
// be on PATH (or an explicit path).
func NewPandocConverter(root, binary string) (*PandocConverter, error) {
	return newPandocConverter(root, binary, osCommander{})
}

func newPandocConverter(root, binary string, cmd commander) (*PandocConverter, error) {
	if binary == "" {
		binary = "pandoc"
	}
	resolved, err := cmd.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("pandoc binary %q not available: %w", binary, err)
	}
	return &PandocConverter{binary: resolved, root: root, cmd: cmd}, nil
}

func (p *PandocConverter) Name() string { return "pandoc" }

// Convert runs pandoc for src. A launch failure or non-zero exit is a
// ConversionError carrying pandoc's stderr.
func (p *PandocConverter) Convert(ctx context.Context, src, dst string) error {
	var stderr bytes.Buffer
	if err := p.cmd.Run(ctx, p.root, p.binary, pandocArgs(src, dst), &stderr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return conversionError(src, withStderr(fmt.Errorf("pandoc: %w", err), stderr.String()))
	}
	return nil
}
