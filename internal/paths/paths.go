// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paths maps source document paths to their place in the output
// tree. Every function here is pure string manipulation; nothing touches the
// filesystem.
package paths

import (
	"fmt"
	"path"
	"strings"

	"github.com/pdiddy/mdsite/pkg/types"
)

// Splitter splits source paths of the form <SourceRoot>/<dirs>/<stem><Suffix>.
// Paths are slash-separated regardless of platform.
type Splitter struct {
	SourceRoot   string
	OutputRoot   string
	Suffix       string
	OutputSuffix string
	MaxLength    int
}

// NewSplitter builds a Splitter from the site configuration.
func NewSplitter(cfg types.SiteConfig) *Splitter {
	return &Splitter{
		SourceRoot:   strings.TrimSuffix(path.Clean(cfg.SourceRoot), "/"),
		OutputRoot:   strings.TrimSuffix(path.Clean(cfg.OutputRoot), "/"),
		Suffix:       cfg.DocumentSuffix,
		OutputSuffix: cfg.OutputSuffix,
		MaxLength:    cfg.MaxPathLength,
	}
}

// IsDocument reports whether name carries the document suffix.
func (s *Splitter) IsDocument(name string) bool {
	return strings.HasSuffix(name, s.Suffix)
}

// Split derives the output location of sourcePath.
//
//	src/index.md         -> ("", "index")
//	src/notes/notes.md   -> ("notes", "notes")
//	src/notes/os/vmem.md -> ("notes/os", "vmem")
func (s *Splitter) Split(sourcePath string) (types.OutputLocation, error) {
	if s.MaxLength > 0 && len(sourcePath) > s.MaxLength {
		return types.OutputLocation{}, malformed(sourcePath, "length %d exceeds limit %d", len(sourcePath), s.MaxLength)
	}

	prefix := s.SourceRoot + "/"
	if !strings.HasPrefix(sourcePath, prefix) {
		return types.OutputLocation{}, malformed(sourcePath, "does not start with %q", prefix)
	}
	if !strings.HasSuffix(sourcePath, s.Suffix) {
		return types.OutputLocation{}, malformed(sourcePath, "does not end with %q", s.Suffix)
	}
	if len(sourcePath) < len(prefix)+len(s.Suffix) {
		// The prefix and suffix overlap, as in "src/" with suffix "/".
		return types.OutputLocation{}, malformed(sourcePath, "no room for a file name")
	}

	body := sourcePath[len(prefix) : len(sourcePath)-len(s.Suffix)]

	var loc types.OutputLocation
	if i := strings.LastIndexByte(body, '/'); i >= 0 {
		loc.ParentDir, loc.Stem = body[:i], body[i+1:]
	} else {
		loc.Stem = body
	}

	if loc.Stem == "" {
		return types.OutputLocation{}, malformed(sourcePath, "empty file stem")
	}
	if loc.ParentDir != "" {
		for _, seg := range strings.Split(loc.ParentDir, "/") {
			switch seg {
			case "":
				return types.OutputLocation{}, malformed(sourcePath, "empty path segment")
			case ".", "..":
				return types.OutputLocation{}, malformed(sourcePath, "relative segment %q", seg)
			}
		}
	}
	return loc, nil
}

// OutputFile returns the slash-separated path of the rendered page,
// <OutputRoot>/<ParentDir>/<Stem><OutputSuffix>.
func (s *Splitter) OutputFile(loc types.OutputLocation) string {
	return path.Join(s.OutputRoot, loc.ParentDir, loc.Stem+s.OutputSuffix)
}

// Child joins a directory entry name onto a slash-separated directory path.
func Child(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func malformed(p, format string, args ...any) error {
	return types.NewBuildError(types.KindPathFormat, p, fmt.Errorf(format, args...))
}
