package walker

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never descended into. MkDocs copies
// theme assets and search indexes into these; none of them hold pages.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"assets",
	"search",
	".cache",
}

var skipDirs = func() map[string]bool {
	m := make(map[string]bool, len(DefaultExcludes))
	for _, d := range DefaultExcludes {
		m[strings.ToLower(d)] = true
	}
	return m
}()

func shouldExcludeDir(name string) bool {
	return skipDirs[strings.ToLower(name)]
}

// Filter selects site pages by slash-separated glob patterns. A pattern
// without a slash also matches the bare file name, so "404.html" excludes
// the not-found page wherever MkDocs put it.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and builds a Filter. An empty include
// list admits every path.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = normalizePatterns(include); err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	if f.exclude, err = normalizePatterns(exclude); err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return f, nil
}

// Match reports whether relPath is included and not excluded.
func (f *Filter) Match(relPath string) bool {
	if len(f.include) > 0 && !matchesAny(relPath, f.include) {
		return false
	}
	return !matchesAny(relPath, f.exclude)
}

// ValidatePatterns reports the first malformed glob in patterns.
func ValidatePatterns(patterns []string) error {
	_, err := normalizePatterns(patterns)
	return err
}

func normalizePatterns(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "./")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := path.Base(normalized)

	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, normalized); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}
