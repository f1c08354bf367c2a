package navpatch

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Result summarizes the writes of one pass over one document.
type Result struct {
	Assignments      int  `json:"assignments"`
	HrefsChanged     int  `json:"hrefs_changed"`
	OverlaysInserted int  `json:"overlays_inserted"`
	OverlaysKept     int  `json:"overlays_kept"`
	LinksRewritten   int  `json:"links_rewritten"`
	RuntimeInjected  bool `json:"runtime_injected"`
}

// Changed reports whether the pass modified the document.
func (r Result) Changed() bool {
	return r.HrefsChanged > 0 || r.OverlaysInserted > 0 || r.LinksRewritten > 0 || r.RuntimeInjected
}

// Apply performs assignments against doc. Elements that are no longer present
// are skipped silently; nothing here fails.
func Apply(doc *goquery.Document, assignments []Assignment) Result {
	res := Result{Assignments: len(assignments)}

	// Resolve every kind before the first write so insertions cannot shift
	// indices.
	sels := map[Kind]*goquery.Selection{
		KindTab:     selectKind(doc, KindTab),
		KindSidebar: selectKind(doc, KindSidebar),
		KindTopLink: selectKind(doc, KindTopLink),
	}

	for _, a := range assignments {
		sel, ok := sels[a.Element.Kind]
		if !ok || a.Element.Index >= sel.Length() {
			continue
		}
		el := sel.Eq(a.Element.Index)

		switch a.Action {
		case ActionSetHref:
			old, _ := el.Attr("href")
			target, _ := el.Attr(TargetAttr)
			if old != a.Href || target != a.Href {
				res.HrefsChanged++
			}
			el.SetAttr("href", a.Href)
			el.SetAttr(TargetAttr, a.Href)
		case ActionOverlay:
			applyOverlay(el, a.Href, &res)
		}
	}
	return res
}

func applyOverlay(label *goquery.Selection, href string, res *Result) {
	label.SetAttr(MarkerAttr, "true")
	label.SetAttr(TargetAttr, href)

	if prev := label.Prev(); prev.Is("a." + OverlayClass) {
		if old, _ := prev.Attr("href"); old != href {
			res.HrefsChanged++
		}
		prev.SetAttr("href", href)
		prev.SetAttr(TargetAttr, href)
		res.OverlaysKept++
		return
	}

	parent := label.Parent()
	if parent.Length() == 0 {
		return
	}
	style, _ := parent.Attr("style")
	parent.SetAttr("style", setStyleProperty(style, "position", "relative"))
	label.BeforeNodes(newOverlay(href))
	res.OverlaysInserted++
}

func newOverlay(href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "href", Val: href},
			{Key: "class", Val: OverlayClass},
			{Key: "style", Val: overlayStyle},
			{Key: TargetAttr, Val: href},
		},
	}
}
