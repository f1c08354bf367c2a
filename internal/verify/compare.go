// Package verify loads built pages in headless Chrome and checks that the
// navigation the reader actually sees points where the redirect table says.
package verify

import (
	"path"
	"strings"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// Observed is one navigation element as read from a live page.
type Observed struct {
	Kind  string `json:"kind"` // "tab" or "sidebar"
	Label string `json:"label"`
	// Href is the tab link's href, or the sidebar overlay's href. Empty when
	// a sidebar label has no overlay.
	Href string `json:"href"`
}

// Mismatch is an element whose destination differs from the table.
type Mismatch struct {
	Page  string `json:"page"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// Compare checks observed elements of one page against table. Elements whose
// label is not in the table are ignored.
func Compare(table *redirect.Table, page string, observed []Observed) []Mismatch {
	if table == nil {
		return nil
	}
	var out []Mismatch
	for _, o := range observed {
		want, ok := table.Lookup(o.Label)
		if !ok || o.Href == want {
			continue
		}
		out = append(out, Mismatch{
			Page:  page,
			Kind:  o.Kind,
			Label: redirect.NormalizeLabel(o.Label),
			Want:  want,
			Got:   o.Href,
		})
	}
	return out
}

// PagePath turns a page path relative to the site dir into the URL path it
// is served at: "ops/index.html" becomes "/ops/".
func PagePath(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, "\\", "/")), "/")
	if rel == "index.html" {
		return "/"
	}
	if strings.HasSuffix(rel, "/index.html") {
		return "/" + strings.TrimSuffix(rel, "index.html")
	}
	return "/" + rel
}
