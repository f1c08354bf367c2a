package navpatch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// Options configures a Patcher.
type Options struct {
	Table                *redirect.Table
	RewriteMarkdownLinks bool
	InjectRuntime        bool
	Logger               *slog.Logger
}

// Patcher runs reconciliation passes over HTML documents. It holds no
// per-document state and is safe for concurrent use.
type Patcher struct {
	table     *redirect.Table
	rewriteMD bool
	runtime   bool
	log       *slog.Logger
	print     string
}

// New creates a Patcher.
func New(opts Options) *Patcher {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	p := &Patcher{
		table:     opts.Table,
		rewriteMD: opts.RewriteMarkdownLinks,
		runtime:   opts.InjectRuntime,
		log:       log,
	}
	p.print = p.fingerprint()
	return p
}

// Fingerprint identifies the output this patcher produces: two patchers with
// the same fingerprint write identical bytes for identical input.
func (p *Patcher) Fingerprint() string { return p.print }

func (p *Patcher) fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "md=%t runtime=%t\n", p.rewriteMD, p.runtime)
	if p.table != nil {
		fmt.Fprintf(h, "mode=%s\n", p.table.Mode())
		for _, e := range p.table.Entries() {
			fmt.Fprintf(h, "%s\t%s\n", e.Label, e.Destination)
		}
	}
	if p.runtime {
		h.Write([]byte(RuntimeScript()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Table returns the redirect table the patcher reconciles against.
func (p *Patcher) Table() *redirect.Table { return p.table }

// Plan parses a document and returns its assignments without applying them.
func (p *Patcher) Plan(r io.Reader) ([]Assignment, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return ComputeAssignments(TakeSnapshot(doc), p.table), nil
}

// Patch runs one pass over the document read from r and writes the result to w.
func (p *Patcher) Patch(r io.Reader, w io.Writer) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parsing html: %w", err)
	}

	res := p.patchDocument(doc)
	if p.runtime && p.table != nil {
		injected, err := InjectRuntime(doc, p.table)
		if err != nil {
			return res, fmt.Errorf("injecting runtime: %w", err)
		}
		res.RuntimeInjected = injected
	}

	if err := html.Render(w, doc.Get(0)); err != nil {
		return res, fmt.Errorf("rendering html: %w", err)
	}
	return res, nil
}

// PatchBytes is Patch over an in-memory document.
func (p *Patcher) PatchBytes(src []byte) ([]byte, Result, error) {
	var buf bytes.Buffer
	buf.Grow(len(src) + 4096)
	res, err := p.Patch(bytes.NewReader(src), &buf)
	if err != nil {
		return nil, res, err
	}
	return buf.Bytes(), res, nil
}

func (p *Patcher) patchDocument(doc *goquery.Document) Result {
	snap := TakeSnapshot(doc)
	assignments := ComputeAssignments(snap, p.table)

	for _, a := range assignments {
		p.log.Debug("navigation assignment",
			"kind", a.Element.Kind, "index", a.Element.Index,
			"label", a.Label, "href", a.Href, "action", a.Action)
	}
	if p.table != nil && p.log.Enabled(context.Background(), slog.LevelDebug) {
		for _, el := range snap.Elements {
			if _, ok := p.table.Lookup(el.Text); !ok && el.Kind != KindTopLink {
				p.log.Debug("navigation label not in table", "kind", el.Kind, "label", el.Text)
			}
		}
	}

	res := Apply(doc, assignments)
	if p.rewriteMD && p.table != nil {
		res.LinksRewritten = RewriteMarkdownLinks(doc, p.table.Mode())
	}
	return res
}
