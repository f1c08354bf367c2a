package redirect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateLabel is returned when two routes share a navigation label.
var ErrDuplicateLabel = errors.New("duplicate navigation label")

// Route maps a visible navigation label to the page it should land on.
type Route struct {
	Label string `yaml:"label" koanf:"label" json:"label"`
	Page  string `yaml:"page" koanf:"page" json:"page"`
}

// Entry is a resolved table row.
type Entry struct {
	Label       string `json:"label"`
	Destination string `json:"destination"`
}

// Table is the static redirect table: one destination per label, fixed at
// construction.
type Table struct {
	mode    Mode
	entries []Entry
	index   map[string]int
}

// DefaultRoutes returns the landing pages of the stock documentation layout.
func DefaultRoutes() []Route {
	return []Route{
		{Label: "Getting Started", Page: "introduction"},
		{Label: "Installation", Page: "full-installation"},
		{Label: "Operations", Page: "troubleshooting"},
		{Label: "Reference", Page: "automation-reference"},
	}
}

// NewTable resolves routes into destinations for the given mode.
func NewTable(routes []Route, mode Mode) (*Table, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	t := &Table{
		mode:  mode,
		index: make(map[string]int, len(routes)),
	}
	for i, r := range routes {
		label := NormalizeLabel(r.Label)
		if label == "" {
			return nil, fmt.Errorf("route %d: label is required", i)
		}
		if strings.TrimSpace(r.Page) == "" {
			return nil, fmt.Errorf("route %q: page is required", label)
		}
		if _, ok := t.index[label]; ok {
			return nil, fmt.Errorf("route %q: %w", label, ErrDuplicateLabel)
		}
		t.index[label] = len(t.entries)
		t.entries = append(t.entries, Entry{Label: label, Destination: mode.Destination(r.Page)})
	}
	return t, nil
}

// Lookup returns the destination for a label as it appears on the page.
func (t *Table) Lookup(label string) (string, bool) {
	i, ok := t.index[NormalizeLabel(label)]
	if !ok {
		return "", false
	}
	return t.entries[i].Destination, true
}

// Entries returns the rows in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Labels returns the labels in declaration order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.entries))
	for i, e := range t.entries {
		labels[i] = e.Label
	}
	return labels
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.entries) }

// Mode returns the deployment mode the destinations were rendered in.
func (t *Table) Mode() Mode { return t.mode }

// NormalizeLabel collapses runs of whitespace and trims the ends, which is how
// a label renders on screen.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
