// Package sourcecheck confirms that every redirect destination has a source
// page in the MkDocs docs dir.
package sourcecheck

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// PageCheck is the result for one route.
type PageCheck struct {
	Label string `json:"label"`
	Page  string `json:"page"`
	// Source is the matched file relative to the docs dir.
	Source  string `json:"source,omitempty"`
	Title   string `json:"title,omitempty"`
	Missing bool   `json:"missing"`
}

// Report lists the check of every route, in table order.
type Report struct {
	Pages []PageCheck `json:"pages"`
}

// Missing returns the routes without a source page.
func (r *Report) Missing() []PageCheck {
	var out []PageCheck
	for _, p := range r.Pages {
		if p.Missing {
			out = append(out, p)
		}
	}
	return out
}

// Check looks up the source page of every route under docsDir.
func Check(docsDir string, routes []redirect.Route) (*Report, error) {
	info, err := os.Stat(docsDir)
	if err != nil {
		return nil, fmt.Errorf("docs dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs dir %s is not a directory", docsDir)
	}

	report := &Report{}
	for _, r := range routes {
		pc := PageCheck{Label: r.Label, Page: redirect.PageID(r.Page)}
		source, ok := SourceFor(docsDir, pc.Page)
		if !ok {
			pc.Missing = true
			report.Pages = append(report.Pages, pc)
			continue
		}
		pc.Source = source
		data, err := os.ReadFile(filepath.Join(docsDir, filepath.FromSlash(source)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		pc.Title = Title(data)
		report.Pages = append(report.Pages, pc)
	}
	return report, nil
}

// SourceFor returns the markdown file that builds page: {page}.md, or
// {page}/index.md, or {page}/README.md. An empty page is the site index.
func SourceFor(docsDir, page string) (string, bool) {
	var candidates []string
	if page == "" {
		candidates = []string{"index.md", "README.md"}
	} else {
		candidates = []string{page + ".md", page + "/index.md", page + "/README.md"}
	}
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(docsDir, filepath.FromSlash(c)))
		if err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Title returns the page title: the front matter title if set, otherwise the
// text of the first heading.
func Title(src []byte) string {
	meta, body := splitFrontMatter(src)
	if meta.Title != "" {
		return meta.Title
	}
	return FirstHeading(body)
}

// FirstHeading returns the text of the first markdown heading in src.
func FirstHeading(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(inlineText(h, src))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates a leading YAML block delimited by --- lines.
func splitFrontMatter(src []byte) (frontMatter, []byte) {
	var meta frontMatter
	normalized := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return meta, src
	}
	rest := normalized[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, src
	}
	block := rest[:end]
	body := rest[end+4:]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return frontMatter{}, src
	}
	return meta, body
}
