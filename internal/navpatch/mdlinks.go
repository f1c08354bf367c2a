package navpatch

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// RewriteMarkdownLinks points every local link to a .md source file at the
// page it is served as in mode. It returns the number of links rewritten.
func RewriteMarkdownLinks(doc *goquery.Document, mode redirect.Mode) int {
	n := 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if out, ok := mode.LinkFromMarkdown(href); ok {
			sel.SetAttr("href", out)
			n++
		}
	})
	return n
}
