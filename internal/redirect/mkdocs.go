package redirect

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoutesFromMkDocs derives routes from the nav section of an mkdocs.yml file:
// every top-level section maps to the first page found beneath it.
//
// The file is decoded into a yaml.Node so MkDocs-specific tags such as
// !!python/name do not abort parsing.
func RoutesFromMkDocs(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseMkDocsNav(data)
}

// ParseMkDocsNav is RoutesFromMkDocs over raw YAML.
func ParseMkDocsNav(data []byte) ([]Route, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mkdocs config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	nav := mappingValue(doc.Content[0], "nav")
	if nav == nil || nav.Kind != yaml.SequenceNode {
		return nil, nil
	}

	var routes []Route
	for _, item := range nav.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
			continue
		}
		label, section := item.Content[0].Value, item.Content[1]
		if section.Kind != yaml.SequenceNode {
			// A plain page already has its own link.
			continue
		}
		if page := firstPage(section); page != "" {
			routes = append(routes, Route{Label: label, Page: PageID(page)})
		}
	}
	return routes, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// firstPage walks a nav subtree depth-first and returns the first local page.
func firstPage(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		if isLocalPage(n.Value) {
			return n.Value
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if p := firstPage(c); p != "" {
				return p
			}
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			if p := firstPage(n.Content[i]); p != "" {
				return p
			}
		}
	}
	return ""
}

func isLocalPage(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !isExternal(v) && strings.HasSuffix(v, ".md")
}
