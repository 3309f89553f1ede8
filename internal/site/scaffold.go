// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pdiddy/mdsite/pkg/types"
)

const starterPage = `---
title: Home
---

# Welcome

This page was generated by ` + "`mdsite init`" + `. Edit ` + "`src/index.md`" + ` and run
` + "`mdsite build`" + `.
`

// starterTemplate uses pandoc template syntax so the pandoc and goldmark
// backends render it alike.
const starterTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>$pagetitle$</title>
</head>
<body>
<main>
$body$
</main>
</body>
</html>
`

// Scaffold creates the directory layout and starter files for a new site.
// Existing files are never overwritten. It returns the paths it created,
// relative to cfg.Root.
func Scaffold(cfg types.SiteConfig) ([]string, error) {
	var created []string

	for _, dir := range []string{cfg.SourceRoot, cfg.OutputRoot, path.Dir(types.TemplatePath)} {
		p := filepath.Join(cfg.Root, filepath.FromSlash(dir))
		if _, err := os.Stat(p); err == nil {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return created, fmt.Errorf("creating %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	files := []struct {
		rel     string
		content string
	}{
		{path.Join(cfg.SourceRoot, "index"+cfg.DocumentSuffix), starterPage},
		{types.TemplatePath, starterTemplate},
	}
	for _, f := range files {
		p := filepath.Join(cfg.Root, filepath.FromSlash(f.rel))
		fh, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("creating %s: %w", f.rel, err)
		}
		_, werr := fh.WriteString(f.content)
		if cerr := fh.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return created, fmt.Errorf("writing %s: %w", f.rel, werr)
		}
		created = append(created, f.rel)
	}
	return created, nil
}
