// Package navpatch reconciles the navigation of a MkDocs-Material page
// against a redirect table.
//
// A pass is split in two: TakeSnapshot and ComputeAssignments are pure and
// only describe which element should point where; Apply performs the writes.
// Running a pass over its own output changes nothing.
package navpatch

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// Theme selectors. These belong to the theme's markup, not to navpatch.
const (
	tabItemSelector       = ".md-tabs__item"
	tabLinkSelector       = ".md-tabs__link"
	sidebarParentSelector = `.md-nav__link[for^="__nav_"]`
)

// Attributes and classes written by Apply.
const (
	TargetAttr   = "data-navpatch-target"
	MarkerAttr   = "data-fixed-navigation"
	OverlayClass = "md-nav__force-link"
)

// Kind identifies which navigation structure an element belongs to.
type Kind string

const (
	// KindTab is the link inside a top-level tab item.
	KindTab Kind = "tab"
	// KindSidebar is a label-only sidebar section toggle.
	KindSidebar Kind = "sidebar"
	// KindTopLink is any top-level tab link, rescanned unconditionally.
	KindTopLink Kind = "toplink"
)

// Element is a snapshot of one navigation element. Index is its position in
// document order among elements of the same kind.
type Element struct {
	Kind    Kind   `json:"kind"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Href    string `json:"href,omitempty"`
	Target  string `json:"target,omitempty"`
	Patched bool   `json:"patched,omitempty"`
	// Overlay is the href of the overlay anchor in front of a sidebar
	// label, empty when there is none.
	Overlay string `json:"overlay,omitempty"`
}

// Snapshot is the navigation state of a document, detached from the DOM.
type Snapshot struct {
	Elements []Element `json:"elements"`
}

// TakeSnapshot reads the navigation elements of doc.
func TakeSnapshot(doc *goquery.Document) Snapshot {
	var snap Snapshot
	for _, kind := range []Kind{KindTab, KindSidebar, KindTopLink} {
		selectKind(doc, kind).Each(func(i int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			target, _ := sel.Attr(TargetAttr)
			marker, _ := sel.Attr(MarkerAttr)
			el := Element{
				Kind:    kind,
				Index:   i,
				Text:    redirect.NormalizeLabel(sel.Text()),
				Href:    href,
				Target:  target,
				Patched: marker == "true",
			}
			if kind == KindSidebar {
				if prev := sel.Prev(); prev.Is("a." + OverlayClass) {
					el.Overlay, _ = prev.Attr("href")
				}
			}
			snap.Elements = append(snap.Elements, el)
		})
	}
	return snap
}

// selectKind returns the elements of one kind in document order. Apply relies
// on this order being the same as when the snapshot was taken.
func selectKind(doc *goquery.Document, kind Kind) *goquery.Selection {
	switch kind {
	case KindTab:
		var links []*html.Node
		doc.Find(tabItemSelector).Each(func(_ int, item *goquery.Selection) {
			if link := item.Find(tabLinkSelector).First(); link.Length() > 0 {
				links = append(links, link.Get(0))
			}
		})
		return doc.FindNodes(links...)
	case KindSidebar:
		return doc.Find(sidebarParentSelector)
	case KindTopLink:
		return doc.Find(tabLinkSelector)
	}
	return doc.FindNodes()
}
