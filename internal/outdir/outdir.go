// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outdir creates the output directory structure a build writes into.
package outdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/mdsite/pkg/types"
)

const dirPerm = 0o755

// Builder ensures directories exist below a fixed output root.
type Builder struct {
	root string // filesystem path of the output root
}

// NewBuilder returns a Builder rooted at siteRoot/outputRoot.
func NewBuilder(siteRoot, outputRoot string) *Builder {
	return &Builder{root: filepath.Join(siteRoot, filepath.FromSlash(outputRoot))}
}

// Root returns the filesystem path of the output root.
func (b *Builder) Root() string { return b.root }

// Ensure makes sure root/relativeDir exists as a directory. An empty
// relativeDir means the output root itself. It reports whether anything was
// created. Calling it again for the same directory is a no-op.
func (b *Builder) Ensure(relativeDir string) (created bool, err error) {
	target, err := b.resolve(relativeDir)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, types.NewBuildError(types.KindDirectoryCreation, target,
			fmt.Errorf("exists and is not a directory (mode %s)", info.Mode().Type()))
	case !errors.Is(err, fs.ErrNotExist):
		return false, types.NewBuildError(types.KindDirectoryCreation, target, err)
	}

	// MkdirAll succeeds when another process creates the directory between
	// the Stat above and this call.
	if err := os.MkdirAll(target, dirPerm); err != nil {
		return false, types.NewBuildError(types.KindDirectoryCreation, target, err)
	}
	return true, nil
}

// resolve maps a slash-separated relative directory to a filesystem path,
// refusing anything that would land outside the output root.
func (b *Builder) resolve(relativeDir string) (string, error) {
	if relativeDir == "" || relativeDir == "." {
		return b.root, nil
	}
	if path.IsAbs(relativeDir) || filepath.IsAbs(relativeDir) {
		return "", types.NewBuildError(types.KindDirectoryCreation, relativeDir,
			errors.New("directory must be relative to the output root"))
	}
	clean := path.Clean(relativeDir)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", types.NewBuildError(types.KindDirectoryCreation, relativeDir,
			errors.New("directory escapes the output root"))
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}
