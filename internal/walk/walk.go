// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package walk mirrors a source tree of documents into the output tree.
// The walk is depth-first and synchronous: each document is transformed,
// its output directory ensured, and the converter run before the next
// directory entry is looked at.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/mdsite/internal/convert"
	"github.com/pdiddy/mdsite/internal/outdir"
	"github.com/pdiddy/mdsite/internal/paths"
	"github.com/pdiddy/mdsite/pkg/types"
)

// Walker drives one build over a site.
type Walker struct {
	root      string // site root on disk; walk paths are relative to it
	splitter  *paths.Splitter
	outdirs   *outdir.Builder
	converter convert.Converter
	policy    types.ErrorPolicy
	timeout   time.Duration
	log       *slog.Logger

	summary types.BuildSummary
}

// New returns a Walker for cfg that renders documents with conv.
func New(cfg types.SiteConfig, conv convert.Converter, log *slog.Logger) *Walker {
	policy := cfg.Policy
	if policy == "" {
		policy = types.PolicyStrict
	}
	return &Walker{
		root:      cfg.Root,
		splitter:  paths.NewSplitter(cfg),
		outdirs:   outdir.NewBuilder(cfg.Root, cfg.OutputRoot),
		converter: conv,
		policy:    policy,
		timeout:   cfg.Converter.Timeout,
		log:       log,
	}
}

// Build ensures the output root exists and walks the source root. The
// returned summary is valid even when err is non-nil.
func (w *Walker) Build(ctx context.Context) (types.BuildSummary, error) {
	w.summary = types.BuildSummary{}

	w.log.Debug("checking output root", "dir", w.outdirs.Root())
	created, err := w.outdirs.Ensure("")
	if err != nil {
		return w.summary, err
	}
	if created {
		w.log.Warn("output root did not exist, created it", "dir", w.outdirs.Root())
	}

	err = w.walkDir(ctx, w.splitter.SourceRoot)
	return w.summary, err
}

// Summary returns the counts accumulated by the last Build.
func (w *Walker) Summary() types.BuildSummary { return w.summary }

// walkDir visits dir, a slash-separated path relative to the site root.
func (w *Walker) walkDir(ctx context.Context, dir string) error {
	w.log.Debug("walking directory", "dir", dir)

	entries, err := os.ReadDir(w.fsPath(dir))
	if err != nil {
		return types.NewBuildError(types.KindEnumeration, dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		child := paths.Child(dir, name)

		switch kind := entry.Type(); {
		case kind.IsRegular():
			if err := w.visitFile(ctx, child); err != nil {
				if w.policy == types.PolicyStrict || errors.Is(err, context.Canceled) {
					return err
				}
			}

		case kind.IsDir():
			if name == "." || name == ".." {
				continue
			}
			if err := w.walkDir(ctx, child); err != nil {
				if ctx.Err() != nil {
					return err
				}
				// A broken subtree never stops its siblings.
				w.summary.SubtreeFailures++
				w.log.Error("subtree failed, continuing with siblings", "dir", child, "err", err)
			}

		default:
			w.summary.Warnings++
			w.log.Warn("skipping unknown entry", "path", child, "kind", kindName(kind))
		}
	}
	return nil
}

// visitFile converts one regular file. Files without the document suffix
// are skipped. Every failure is logged and recorded before it is returned.
func (w *Walker) visitFile(ctx context.Context, src string) error {
	if !w.splitter.IsDocument(src) {
		w.summary.Skipped++
		w.log.Debug("skipping non-document", "path", src)
		return nil
	}

	start := time.Now()
	dst, err := w.convertFile(ctx, src)
	page := types.Page{
		SourcePath: src,
		OutputPath: dst,
		Duration:   time.Since(start),
	}
	if err != nil {
		page.Status = types.PageFailed
		page.Error = err.Error()
		w.summary.Failed++
		w.summary.Pages = append(w.summary.Pages, page)
		w.log.Error("document failed", "path", src, "err", err)
		return err
	}

	page.Status = types.PageConverted
	w.summary.Converted++
	w.summary.Pages = append(w.summary.Pages, page)
	w.log.Info("built", "src", src, "dst", dst, "took", page.Duration)
	return nil
}

func (w *Walker) convertFile(ctx context.Context, src string) (string, error) {
	loc, err := w.splitter.Split(src)
	if err != nil {
		return "", err
	}
	w.log.Debug("split document path", "path", src, "parent", loc.ParentDir, "stem", loc.Stem)

	created, err := w.outdirs.Ensure(loc.ParentDir)
	if err != nil {
		return "", err
	}
	if created {
		w.log.Debug("created output directory", "dir", loc.ParentDir)
	}

	dst := w.splitter.OutputFile(loc)
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if err := w.converter.Convert(ctx, src, dst); err != nil {
		if _, ok := types.KindOf(err); !ok {
			err = types.NewBuildError(types.KindConversion, src, err)
		}
		return dst, err
	}
	return dst, nil
}

func (w *Walker) fsPath(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func kindName(m fs.FileMode) string {
	switch {
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m&fs.ModeNamedPipe != 0:
		return "pipe"
	case m&fs.ModeSocket != 0:
		return "socket"
	case m&fs.ModeDevice != 0:
		return "device"
	case m&fs.ModeIrregular != 0:
		return "irregular"
	default:
		return fmt.Sprintf("mode %v", m)
	}
}
