// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site runs complete builds: it wires the converter, walker and
// ledger together for one configuration.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/pdiddy/mdsite/internal/convert"
	"github.com/pdiddy/mdsite/internal/ledger"
	"github.com/pdiddy/mdsite/internal/logging"
	"github.com/pdiddy/mdsite/internal/walk"
	"github.com/pdiddy/mdsite/pkg/types"
)

// ErrFailures is returned when a walk completed but some documents or
// subtrees failed.
var ErrFailures = errors.New("build finished with failures")

// Builder runs builds for one site configuration.
type Builder struct {
	cfg       types.SiteConfig
	converter convert.Converter
	log       *slog.Logger
}

// NewBuilder validates cfg and prepares its converter. A nil conv selects
// the backend named in cfg.
func NewBuilder(ctx context.Context, cfg types.SiteConfig, conv convert.Converter, log *slog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if conv == nil {
		var err error
		if conv, err = convert.New(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return &Builder{cfg: cfg, converter: conv, log: log}, nil
}

// Build runs one full build and records it in the ledger when enabled. The
// returned run is populated even on failure.
func (b *Builder) Build(ctx context.Context) (types.Run, error) {
	run := types.Run{
		ID:        ledger.NewRunID(),
		StartedAt: time.Now(),
		Backend:   b.cfg.Converter.Backend,
		Policy:    b.cfg.Policy,
	}
	log := b.log.With("run", run.ID[:8])
	log.Info("build started",
		"source", b.cfg.SourceRoot, "output", b.cfg.OutputRoot,
		"converter", b.converter.Name(), "policy", string(b.cfg.Policy))

	summary, err := walk.New(b.cfg, b.converter, log).Build(ctx)

	run.FinishedAt = time.Now()
	run.Converted = summary.Converted
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	run.Warnings = summary.Warnings
	run.Pages = summary.Pages
	if err == nil && summary.HasFailures() {
		err = fmt.Errorf("%w: %d documents failed, %d subtrees failed", ErrFailures, summary.Failed, summary.SubtreeFailures)
	}
	if err != nil {
		run.Error = err.Error()
	}

	if b.cfg.Ledger.Enabled {
		if recErr := b.record(ctx, &run); recErr != nil {
			log.Warn("could not record build in ledger", "err", recErr)
		}
	}

	took := run.FinishedAt.Sub(run.StartedAt)
	if err != nil {
		log.Error("build failed", "converted", run.Converted, "failed", run.Failed, "took", took, "err", err)
		return run, err
	}
	logging.Success(ctx, log, "build finished",
		"converted", run.Converted, "skipped", run.Skipped, "warnings", run.Warnings, "took", took)
	return run, nil
}

func (b *Builder) record(ctx context.Context, run *types.Run) error {
	store, err := ledger.Open(LedgerPath(b.cfg))
	if err != nil {
		return err
	}
	defer store.Close()
	// Record even when the build was cancelled.
	return store.Record(context.WithoutCancel(ctx), run)
}

// LedgerPath returns the ledger database location for cfg.
func LedgerPath(cfg types.SiteConfig) string {
	if filepath.IsAbs(cfg.Ledger.Path) {
		return cfg.Ledger.Path
	}
	return filepath.Join(cfg.Root, filepath.FromSlash(cfg.Ledger.Path))
}

// WatchDirs returns the directories whose changes require a rebuild: the
// source root and the template directory.
func WatchDirs(cfg types.SiteConfig) []string {
	return []string{
		filepath.Join(cfg.Root, filepath.FromSlash(cfg.SourceRoot)),
		filepath.Join(cfg.Root, filepath.FromSlash(path.Dir(types.TemplatePath))),
	}
}
