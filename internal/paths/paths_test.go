// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paths

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/mdsite/pkg/types"
)

func defaultSplitter() *Splitter {
	return NewSplitter(types.DefaultSiteConfig())
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantParent string
		wantStem   string
		wantErr    bool
	}{
		{name: "document at source root", input: "src/index.md", wantStem: "index"},
		{name: "one level deep", input: "src/notes/notes.md", wantParent: "notes", wantStem: "notes"},
		{name: "two levels deep", input: "src/notes/os/vmem.md", wantParent: "notes/os", wantStem: "vmem"},
		{name: "dots inside stem", input: "src/a/v1.2.notes.md", wantParent: "a", wantStem: "v1.2.notes"},
		{name: "missing source prefix", input: "notes.md", wantErr: true},
		{name: "prefix without separator", input: "srcnotes.md", wantErr: true},
		{name: "wrong suffix", input: "src/notes.txt", wantErr: true},
		{name: "suffix only as part of name", input: "src/notes.mdx", wantErr: true},
		{name: "empty stem", input: "src/notes/.md", wantErr: true},
		{name: "empty stem at root", input: "src/.md", wantErr: true},
		{name: "double slash", input: "src/notes//vmem.md", wantErr: true},
		{name: "parent segment", input: "src/../etc/passwd.md", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	s := defaultSplitter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := s.Split(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Split(%q) = %+v, want error", tt.input, loc)
				}
				if !errors.Is(err, types.ErrPathFormat) {
					t.Errorf("Split(%q) error = %v, want PathFormatError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Split(%q) unexpected error: %v", tt.input, err)
			}
			if loc.ParentDir != tt.wantParent {
				t.Errorf("ParentDir = %q, want %q", loc.ParentDir, tt.wantParent)
			}
			if loc.Stem != tt.wantStem {
				t.Errorf("Stem = %q, want %q", loc.Stem, tt.wantStem)
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := defaultSplitter()
	for _, in := range []string{"src/notes/os/vmem.md", "notes.md"} {
		loc1, err1 := s.Split(in)
		loc2, err2 := s.Split(in)
		if loc1 != loc2 {
			t.Errorf("Split(%q) not deterministic: %+v vs %+v", in, loc1, loc2)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Errorf("Split(%q) errors differ: %v vs %v", in, err1, err2)
		}
	}
}

func TestSplit_MaxLength(t *testing.T) {
	cfg := types.DefaultSiteConfig()
	cfg.MaxPathLength = 32
	s := NewSplitter(cfg)

	long := "src/" + strings.Repeat("a", 40) + ".md"
	if _, err := s.Split(long); !errors.Is(err, types.ErrPathFormat) {
		t.Errorf("expected PathFormatError for %d-byte path, got %v", len(long), err)
	}
	if _, err := s.Split("src/short.md"); err != nil {
		t.Errorf("short path rejected: %v", err)
	}
}

func TestSplit_CustomRoots(t *testing.T) {
	cfg := types.DefaultSiteConfig()
	cfg.SourceRoot = "content/"
	cfg.DocumentSuffix = ".markdown"
	s := NewSplitter(cfg)

	loc, err := s.Split("content/blog/first.markdown")
	if err != nil {
		t.Fatal(err)
	}
	if loc.ParentDir != "blog" || loc.Stem != "first" {
		t.Errorf("got %+v", loc)
	}
}

func TestOutputFile(t *testing.T) {
	s := defaultSplitter()
	tests := []struct {
		loc  types.OutputLocation
		want string
	}{
		{types.OutputLocation{Stem: "index"}, "target/index.html"},
		{types.OutputLocation{ParentDir: "notes", Stem: "notes"}, "target/notes/notes.html"},
		{types.OutputLocation{ParentDir: "notes/os", Stem: "vmem"}, "target/notes/os/vmem.html"},
	}
	for _, tt := range tests {
		if got := s.OutputFile(tt.loc); got != tt.want {
			t.Errorf("OutputFile(%+v) = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

func TestChild(t *testing.T) {
	if got := Child("src", "a.md"); got != "src/a.md" {
		t.Errorf("Child = %q", got)
	}
	if got := Child("", "src"); got != "src" {
		t.Errorf("Child with empty dir = %q", got)
	}
}
