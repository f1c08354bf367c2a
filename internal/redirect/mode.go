// Package redirect holds the static label-to-destination table that drives
// navigation repair, and the deployment modes that decide the destination
// shape for a page.
package redirect

import (
	"fmt"
	"path"
	"strings"
)

// Mode is the deployment shape destinations are rendered in.
type Mode string

const (
	// ModeDirect targets static hosting that serves pages by file name: {id}.html.
	ModeDirect Mode = "direct"
	// ModeTrailingSlash targets preview hosting with directory URLs: /{id}/.
	ModeTrailingSlash Mode = "trailing-slash"
	// ModeMarkdown targets a local build where source .md links are served as {id}/.
	ModeMarkdown Mode = "markdown"
)

// ParseMode converts a configured mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDirect, ModeTrailingSlash, ModeMarkdown:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode %q: must be one of direct, trailing-slash, markdown", s)
}

// ModeForHost returns ModeTrailingSlash when host contains any of the preview
// markers, and fallback otherwise.
func ModeForHost(host string, markers []string, fallback Mode) Mode {
	host = strings.ToLower(host)
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" && strings.Contains(host, m) {
			return ModeTrailingSlash
		}
	}
	return fallback
}

// PageID normalizes a page reference ("/introduction/", "introduction.html",
// "ops/tuning.md") to its bare identifier ("introduction", "ops/tuning").
func PageID(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "./")
	ref = strings.Trim(ref, "/")
	for _, ext := range []string{".html", ".md"} {
		ref = strings.TrimSuffix(ref, ext)
	}
	return ref
}

// Destination renders the destination for a page in this mode.
func (m Mode) Destination(page string) string {
	id := PageID(page)
	switch m {
	case ModeTrailingSlash:
		if id == "" {
			return "/"
		}
		return "/" + id + "/"
	case ModeMarkdown:
		if id == "" {
			return "./"
		}
		return id + "/"
	default:
		if id == "" {
			return "index.html"
		}
		return id + ".html"
	}
}

// LinkFromMarkdown rewrites an href pointing at a markdown source file into the
// shape served in this mode. Relative prefixes, queries and fragments are kept.
// It reports false when href does not point at a local .md file.
func (m Mode) LinkFromMarkdown(href string) (string, bool) {
	if href == "" || isExternal(href) {
		return href, false
	}

	rest := ""
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href, rest = href[:i], href[i:]
	}
	if !strings.HasSuffix(href, ".md") {
		return href + rest, false
	}

	dir, file := path.Split(strings.TrimSuffix(href, ".md"))
	switch m {
	case ModeDirect:
		return dir + file + ".html" + rest, true
	default:
		if strings.EqualFold(file, "index") || strings.EqualFold(file, "readme") {
			if dir == "" {
				return "./" + rest, true
			}
			return dir + rest, true
		}
		return dir + file + "/" + rest, true
	}
}

func isExternal(href string) bool {
	if strings.HasPrefix(href, "//") {
		return true
	}
	if i := strings.Index(href, ":"); i > 0 {
		// A scheme must precede any path separator.
		return !strings.ContainsAny(href[:i], "/?#")
	}
	return false
}
