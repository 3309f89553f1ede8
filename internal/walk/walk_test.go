// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mdsite/internal/logging"
	"github.com/pdiddy/mdsite/internal/paths"
	"github.com/pdiddy/mdsite/pkg/types"
)

// fakeConverter writes a marker page for every document and fails for the
// sources listed in errs.
type fakeConverter struct {
	root  string
	errs  map[string]error
	calls []string

	sawDeadline bool
}

func (f *fakeConverter) Name() string { return "fake" }

func (f *fakeConverter) Convert(ctx context.Context, src, dst string) error {
	f.calls = append(f.calls, src)
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline = true
	}
	if err, ok := f.errs[src]; ok {
		return err
	}
	return os.WriteFile(filepath.Join(f.root, filepath.FromSlash(dst)), []byte("<html>"+src+"</html>"), 0o644)
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("# "+f+"\n"), 0o644))
	}
}

func newTestWalker(t *testing.T, policy types.ErrorPolicy) (*Walker, *fakeConverter, string) {
	t.Helper()
	root := t.TempDir()
	cfg := types.DefaultSiteConfig()
	cfg.Root = root
	cfg.Policy = policy
	conv := &fakeConverter{root: root, errs: map[string]error{}}
	return New(cfg, conv, logging.Discard()), conv, root
}

func exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func TestBuild_MirrorsTree(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyStrict)
	docs := []string{
		"src/index.md",
		"src/notes/notes.md",
		"src/notes/os/vmem.md",
		"src/notes/os/sched.md",
		"src/blog/2024/01/first.md",
	}
	writeTree(t, root, docs...)
	writeTree(t, root, "src/notes/diagram.png", "src/README.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "empty"), 0o755))

	summary, err := w.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(docs), summary.Converted)
	assert.Equal(t, 2, summary.Skipped)
	assert.False(t, summary.HasFailures())
	assert.Len(t, conv.calls, len(docs))

	splitter := paths.NewSplitter(types.DefaultSiteConfig())
	for _, doc := range docs {
		loc, err := splitter.Split(doc)
		require.NoError(t, err)
		out := splitter.OutputFile(loc)
		assert.True(t, exists(t, root, out), "missing %s for %s", out, doc)
		assert.True(t, exists(t, root, "target/"+loc.ParentDir), "missing directory for %s", doc)
	}

	var htmlFiles []string
	err = filepath.WalkDir(filepath.Join(root, "target"), func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			htmlFiles = append(htmlFiles, p)
		}
		return err
	})
	require.NoError(t, err)
	assert.Len(t, htmlFiles, len(docs), "exactly one output per document")
}

func TestBuild_CreatesOutputRoot(t *testing.T) {
	w, _, root := newTestWalker(t, types.PolicyStrict)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	_, err := w.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, exists(t, root, "target"))
}

func TestBuild_MalformedSubtreeIsolated(t *testing.T) {
	for _, policy := range []types.ErrorPolicy{types.PolicyStrict, types.PolicyIsolate} {
		t.Run(string(policy), func(t *testing.T) {
			w, _, root := newTestWalker(t, policy)
			writeTree(t, root,
				"src/a-broken/.md", // empty stem
				"src/z-good/one.md",
				"src/z-good/deep/two.md",
			)

			summary, err := w.Build(context.Background())
			require.NoError(t, err, "subtree failures must not abort the walk")

			assert.True(t, exists(t, root, "target/z-good/one.html"))
			assert.True(t, exists(t, root, "target/z-good/deep/two.html"))
			assert.Equal(t, 2, summary.Converted)
			assert.Equal(t, 1, summary.Failed)
			assert.True(t, summary.HasFailures())

			failed := failedPages(summary)
			require.Len(t, failed, 1)
			assert.Equal(t, "src/a-broken/.md", failed[0].SourcePath)
			assert.Contains(t, failed[0].Error, string(types.KindPathFormat))
		})
	}
}

func TestBuild_StrictFileFailureAtRootIsFatal(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/a.md", "src/b.md", "src/c.md")
	conv.errs["src/b.md"] = errors.New("exit status 1")

	summary, err := w.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConversion), "got %v", err)

	assert.Equal(t, []string{"src/a.md", "src/b.md"}, conv.calls, "walk stops at the failing file")
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
}

func TestBuild_StrictFileFailureAbortsOnlyItsDirectory(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/notes/a.md", "src/notes/b.md", "src/other/c.md")
	conv.errs["src/notes/a.md"] = errors.New("exit status 1")

	summary, err := w.Build(context.Background())
	require.NoError(t, err)

	assert.False(t, exists(t, root, "target/notes/b.html"), "rest of the failing directory is abandoned")
	assert.True(t, exists(t, root, "target/other/c.html"))
	assert.Equal(t, 1, summary.SubtreeFailures)
}

func TestBuild_IsolateContinuesPastFileFailures(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyIsolate)
	writeTree(t, root, "src/a.md", "src/b.md", "src/notes/c.md")
	conv.errs["src/a.md"] = errors.New("exit status 1")

	summary, err := w.Build(context.Background())
	require.NoError(t, err)

	assert.True(t, exists(t, root, "target/b.html"))
	assert.True(t, exists(t, root, "target/notes/c.html"))
	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.SubtreeFailures)
	assert.True(t, summary.HasFailures())
}

func TestBuild_SymlinkWarns(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/index.md", "src/real/page.md")
	if err := os.Symlink(filepath.Join(root, "src", "real"), filepath.Join(root, "src", "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	summary, err := w.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Warnings)
	assert.Equal(t, 2, summary.Converted)
	sort.Strings(conv.calls)
	assert.Equal(t, []string{"src/index.md", "src/real/page.md"}, conv.calls, "symlinks are not followed")
}

func TestBuild_MissingSourceRoot(t *testing.T) {
	w, _, _ := newTestWalker(t, types.PolicyStrict)

	_, err := w.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrEnumeration), "got %v", err)
}

func TestBuild_OutputDirectoryBlocked(t *testing.T) {
	w, _, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/notes/a.md", "src/index.md")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "target", "notes"), []byte("stray"), 0o644))

	summary, err := w.Build(context.Background())
	require.NoError(t, err)

	failed := failedPages(summary)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error, string(types.KindDirectoryCreation))

	data, err := os.ReadFile(filepath.Join(root, "target", "notes"))
	require.NoError(t, err)
	assert.Equal(t, "stray", string(data), "stray file must not be overwritten")
	assert.True(t, exists(t, root, "target/index.html"))
}

func TestBuild_OutputRootBlocked(t *testing.T) {
	w, _, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/index.md")
	require.NoError(t, os.WriteFile(filepath.Join(root, "target"), []byte("stray"), 0o644))

	_, err := w.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDirectoryCreation))
}

func TestBuild_ConverterTimeout(t *testing.T) {
	root := t.TempDir()
	cfg := types.DefaultSiteConfig()
	cfg.Root = root
	cfg.Converter.Timeout = time.Minute
	conv := &fakeConverter{root: root}
	writeTree(t, root, "src/index.md")

	_, err := New(cfg, conv, logging.Discard()).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, conv.sawDeadline)
}

func TestBuild_Cancelled(t *testing.T) {
	w, conv, root := newTestWalker(t, types.PolicyIsolate)
	writeTree(t, root, "src/a.md", "src/b.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conv.calls)
}

func TestBuild_ResetsSummary(t *testing.T) {
	w, _, root := newTestWalker(t, types.PolicyStrict)
	writeTree(t, root, "src/index.md")

	_, err := w.Build(context.Background())
	require.NoError(t, err)
	summary, err := w.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, summary.Converted, w.Summary().Converted)
}

func failedPages(s types.BuildSummary) []types.Page {
	var out []types.Page
	for _, p := range s.Pages {
		if p.Status == types.PageFailed {
			out = append(out, p)
		}
	}
	return out
}
