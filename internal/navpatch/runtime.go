package navpatch

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// Element ids of the injected scripts.
const (
	RuntimeID = "navpatch-runtime"
	TableID   = "navpatch-table"
)

//go:embed navpatch.js
var runtimeSource string

var (
	runtimeOnce   sync.Once
	runtimeScript string
)

// RuntimeScript returns the minified browser runtime. It falls back to the
// unminified source if minification fails.
func RuntimeScript() string {
	runtimeOnce.Do(func() {
		m := minify.New()
		m.AddFunc("application/javascript", js.Minify)
		out, err := m.String("application/javascript", runtimeSource)
		if err != nil {
			out = runtimeSource
		}
		runtimeScript = out
	})
	return runtimeScript
}

type tablePayload struct {
	Mode   redirect.Mode     `json:"mode"`
	Routes map[string]string `json:"routes"`
}

// TableJSON encodes table the way the runtime reads it.
func TableJSON(table *redirect.Table) (string, error) {
	p := tablePayload{Mode: table.Mode(), Routes: make(map[string]string, table.Len())}
	for _, e := range table.Entries() {
		p.Routes[e.Label] = e.Destination
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// InjectRuntime adds the table and runtime scripts to the end of the body, or
// refreshes them if a previous pass already did. It reports whether the
// document changed.
func InjectRuntime(doc *goquery.Document, table *redirect.Table) (bool, error) {
	payload, err := TableJSON(table)
	if err != nil {
		return false, err
	}

	tableSel := doc.Find("script#" + TableID)
	runtimeSel := doc.Find("script#" + RuntimeID)
	if tableSel.Length() > 0 && runtimeSel.Length() > 0 {
		changed := tableSel.Text() != payload || runtimeSel.Text() != RuntimeScript()
		if changed {
			setText(tableSel.Get(0), payload)
			setText(runtimeSel.Get(0), RuntimeScript())
		}
		return changed, nil
	}
	tableSel.Remove()
	runtimeSel.Remove()

	target := doc.Find("body").First()
	if target.Length() == 0 {
		target = doc.Selection
	}
	target.AppendNodes(
		newScript(TableID, "application/json", payload),
		newScript(RuntimeID, "", RuntimeScript()),
	)
	return true, nil
}

func newScript(id, typ, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	if typ != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "type", Val: typ})
	}
	setText(n, text)
	return n
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
