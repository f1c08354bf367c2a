package redirect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"direct", ModeDirect, false},
		{"trailing-slash", ModeTrailingSlash, false},
		{" Markdown ", ModeMarkdown, false},
		{"auto", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDestination(t *testing.T) {
	tests := []struct {
		mode Mode
		page string
		want string
	}{
		{ModeTrailingSlash, "introduction", "/introduction/"},
		{ModeDirect, "introduction", "introduction.html"},
		{ModeMarkdown, "introduction", "introduction/"},
		{ModeDirect, "/introduction/", "introduction.html"},
		{ModeTrailingSlash, "introduction.html", "/introduction/"},
		{ModeDirect, "ops/tuning.md", "ops/tuning.html"},
		{ModeTrailingSlash, "ops/tuning", "/ops/tuning/"},
		{ModeTrailingSlash, "/", "/"},
		{ModeDirect, "/", "index.html"},
	}
	for _, tt := range tests {
		if got := tt.mode.Destination(tt.page); got != tt.want {
			t.Errorf("%s.Destination(%q) = %q, want %q", tt.mode, tt.page, got, tt.want)
		}
	}
}

func TestModeForHost(t *testing.T) {
	markers := []string{"vercel.app", "netlify"}

	if got := ModeForHost("docs-git-main.vercel.app", markers, ModeDirect); got != ModeTrailingSlash {
		t.Errorf("preview host: got %q, want %q", got, ModeTrailingSlash)
	}
	if got := ModeForHost("Deploy-Preview-12--site.NETLIFY.app", markers, ModeDirect); got != ModeTrailingSlash {
		t.Errorf("case-insensitive marker: got %q, want %q", got, ModeTrailingSlash)
	}
	if got := ModeForHost("docs.example.com", markers, ModeDirect); got != ModeDirect {
		t.Errorf("plain host: got %q, want %q", got, ModeDirect)
	}
	if got := ModeForHost("anything", []string{"", "  "}, ModeMarkdown); got != ModeMarkdown {
		t.Errorf("blank markers should never match, got %q", got)
	}
}

func TestLinkFromMarkdown(t *testing.T) {
	tests := []struct {
		mode    Mode
		href    string
		want    string
		changed bool
	}{
		{ModeMarkdown, "introduction.md", "introduction/", true},
		{ModeTrailingSlash, "../ops/tuning.md#limits", "../ops/tuning/#limits", true},
		{ModeDirect, "ops/tuning.md?x=1", "ops/tuning.html?x=1", true},
		{ModeMarkdown, "index.md", "./", true},
		{ModeMarkdown, "guide/index.md", "guide/", true},
		{ModeDirect, "guide/index.md", "guide/index.html", true},
		{ModeMarkdown, "https://github.com/org/repo/blob/main/README.md", "https://github.com/org/repo/blob/main/README.md", false},
		{ModeMarkdown, "//cdn.example.com/a.md", "//cdn.example.com/a.md", false},
		{ModeMarkdown, "page.html", "page.html", false},
		{ModeMarkdown, "", "", false},
	}
	for _, tt := range tests {
		got, changed := tt.mode.LinkFromMarkdown(tt.href)
		if got != tt.want || changed != tt.changed {
			t.Errorf("%s.LinkFromMarkdown(%q) = (%q, %v), want (%q, %v)", tt.mode, tt.href, got, changed, tt.want, tt.changed)
		}
	}
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(DefaultRoutes(), ModeDirect)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}

	dest, ok := table.Lookup("Getting Started")
	if !ok || dest != "introduction.html" {
		t.Errorf("Lookup(Getting Started) = (%q, %v), want (introduction.html, true)", dest, ok)
	}
	dest, ok = table.Lookup("  Operations\n ")
	if !ok || dest != "troubleshooting.html" {
		t.Errorf("Lookup(Operations) = (%q, %v), want (troubleshooting.html, true)", dest, ok)
	}
	if _, ok := table.Lookup("Unknown Tab"); ok {
		t.Error("Lookup(Unknown Tab) should not be found")
	}

	labels := table.Labels()
	want := []string{"Getting Started", "Installation", "Operations", "Reference"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestNewTableTrailingSlash(t *testing.T) {
	table, err := NewTable(DefaultRoutes(), ModeTrailingSlash)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if dest, _ := table.Lookup("Getting Started"); dest != "/introduction/" {
		t.Errorf("got %q, want /introduction/", dest)
	}
	if table.Mode() != ModeTrailingSlash {
		t.Errorf("Mode() = %q", table.Mode())
	}
}

func TestNewTableErrors(t *testing.T) {
	_, err := NewTable([]Route{{Label: "A", Page: "a"}, {Label: " A ", Page: "b"}}, ModeDirect)
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("expected ErrDuplicateLabel, got %v", err)
	}
	if _, err := NewTable([]Route{{Label: "", Page: "a"}}, ModeDirect); err == nil {
		t.Error("expected error for empty label")
	}
	if _, err := NewTable([]Route{{Label: "A", Page: " "}}, ModeDirect); err == nil {
		t.Error("expected error for empty page")
	}
	if _, err := NewTable(DefaultRoutes(), "auto"); err == nil {
		t.Error("expected error for unresolved mode")
	}
}

func TestEntriesIsACopy(t *testing.T) {
	table, err := NewTable(DefaultRoutes(), ModeDirect)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	entries := table.Entries()
	entries[0].Destination = "mutated"
	if dest, _ := table.Lookup("Getting Started"); dest != "introduction.html" {
		t.Errorf("table mutated through Entries(): %q", dest)
	}
}

const sampleMkDocs = `site_name: Platform Docs
theme:
  name: material
  features:
    - navigation.tabs
markdown_extensions:
  - pymdownx.emoji:
      emoji_generator: !!python/name:material.extensions.emoji.to_svg
nav:
  - Home: index.md
  - Getting Started:
      - Introduction: introduction.md
      - Prerequisites: prerequisites.md
  - Installation:
      - Overview:
          - Full Installation: install/full-installation.md
      - Upgrades: install/upgrades.md
  - Operations:
      - Benchmarking: benchmarking.md
      - Troubleshooting: troubleshooting.md
  - Links:
      - GitHub: https://github.com/example/repo
`

func TestParseMkDocsNav(t *testing.T) {
	routes, err := ParseMkDocsNav([]byte(sampleMkDocs))
	if err != nil {
		t.Fatalf("ParseMkDocsNav: %v", err)
	}

	want := []Route{
		{Label: "Getting Started", Page: "introduction"},
		{Label: "Installation", Page: "install/full-installation"},
		{Label: "Operations", Page: "benchmarking"},
	}
	if len(routes) != len(want) {
		t.Fatalf("got %d routes (%v), want %d", len(routes), routes, len(want))
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Errorf("routes[%d] = %+v, want %+v", i, routes[i], want[i])
		}
	}
}

func TestParseMkDocsNavMissing(t *testing.T) {
	routes, err := ParseMkDocsNav([]byte("site_name: x\n"))
	if err != nil {
		t.Fatalf("ParseMkDocsNav: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("expected no routes, got %v", routes)
	}
}

func TestRoutesFromMkDocsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mkdocs.yml")
	if err := os.WriteFile(path, []byte(sampleMkDocs), 0o644); err != nil {
		t.Fatal(err)
	}
	routes, err := RoutesFromMkDocs(path)
	if err != nil {
		t.Fatalf("RoutesFromMkDocs: %v", err)
	}
	if len(routes) != 3 {
		t.Errorf("got %d routes, want 3", len(routes))
	}

	if _, err := RoutesFromMkDocs(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}
