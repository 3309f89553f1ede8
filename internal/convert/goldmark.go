// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/mdsite/pkg/types"
)

// defaultTemplate is used when the site has no tmpl/main.tmpl.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>$pagetitle$</title>
</head>
<body>
$body$
</body>
</html>
`

// templateVar matches pandoc-style $name$ variables. $$ is a literal dollar.
var templateVar = regexp.MustCompile(`\$([a-z][a-z0-9-]*)?\$`)

// pageMeta is the front matter the goldmark backend understands.
type pageMeta struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Date   string `yaml:"date"`
}

// GoldmarkConverter renders documents in-process. It understands YAML front
// matter and substitutes plain $variable$ references in the site template;
// pandoc's $if$/$for$ control structures are not interpreted.
type GoldmarkConverter struct {
	root     string
	engine   goldmark.Markdown
	template string
}

// NewGoldmarkConverter loads the site template from root and returns a
// converter with GFM extensions enabled.
func NewGoldmarkConverter(root string) (*GoldmarkConverter, error) {
	tmpl, err := loadTemplate(root)
	if err != nil {
		return nil, err
	}
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
	)
	return &GoldmarkConverter{root: root, engine: engine, template: tmpl}, nil
}

func loadTemplate(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(types.TemplatePath)))
	if errors.Is(err, fs.ErrNotExist) {
		return defaultTemplate, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}

func (g *GoldmarkConverter) Name() string { return "goldmark" }

func (g *GoldmarkConverter) Convert(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return conversionError(src, err)
	}

	source, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(src)))
	if err != nil {
		return conversionError(src, err)
	}

	var meta pageMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return conversionError(src, fmt.Errorf("parse frontmatter: %w", err))
	}

	var rendered bytes.Buffer
	if err := g.engine.Convert(body, &rendered); err != nil {
		return conversionError(src, fmt.Errorf("markdown render: %w", err))
	}

	page := g.render(src, meta, rendered.String())
	if err := os.WriteFile(filepath.Join(g.root, filepath.FromSlash(dst)), []byte(page), 0o644); err != nil {
		return conversionError(src, err)
	}
	return nil
}

func (g *GoldmarkConverter) render(src string, meta pageMeta, body string) string {
	pagetitle := meta.Title
	if pagetitle == "" {
		pagetitle = strings.TrimSuffix(path.Base(src), path.Ext(src))
	}
	vars := map[string]string{
		"body":      body,
		"title":     html.EscapeString(meta.Title),
		"pagetitle": html.EscapeString(pagetitle),
		"author":    html.EscapeString(meta.Author),
		"date":      html.EscapeString(meta.Date),
	}
	return templateVar.ReplaceAllStringFunc(g.template, func(m string) string {
		if m == "$$" {
			return "$"
		}
		return vars[m[1:len(m)-1]]
	})
}
