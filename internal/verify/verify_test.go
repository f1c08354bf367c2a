package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

func directTable(t *testing.T) *redirect.Table {
	t.Helper()
	table, err := redirect.NewTable(redirect.DefaultRoutes(), redirect.ModeDirect)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestCompare(t *testing.T) {
	table := directTable(t)

	observed := []Observed{
		{Kind: "tab", Label: "Home", Href: "."},
		{Kind: "tab", Label: "Getting Started", Href: "introduction.html"},
		{Kind: "tab", Label: "Installation", Href: "installation/"},
		{Kind: "sidebar", Label: " Operations ", Href: ""},
		{Kind: "sidebar", Label: "Reference", Href: "automation-reference.html"},
	}

	got := Compare(table, "/", observed)
	if len(got) != 2 {
		t.Fatalf("mismatches = %+v, want 2", got)
	}
	if got[0].Label != "Installation" || got[0].Want != "full-installation.html" || got[0].Got != "installation/" {
		t.Errorf("first mismatch = %+v", got[0])
	}
	if got[1].Label != "Operations" || got[1].Kind != "sidebar" || got[1].Got != "" {
		t.Errorf("second mismatch = %+v", got[1])
	}
	for _, m := range got {
		if m.Page != "/" {
			t.Errorf("Page = %q, want /", m.Page)
		}
	}
}

func TestCompare_NilTable(t *testing.T) {
	if got := Compare(nil, "/", []Observed{{Kind: "tab", Label: "Home"}}); got != nil {
		t.Errorf("Compare(nil) = %+v, want nil", got)
	}
}

func TestPagePath(t *testing.T) {
	tests := map[string]string{
		"index.html":               "/",
		"ops/index.html":           "/ops/",
		"a/b/index.html":           "/a/b/",
		"troubleshooting.html":     "/troubleshooting.html",
		"./guide/index.html":       "/guide/",
		`windows\style\index.html`: "/windows/style/",
	}
	for rel, want := range tests {
		if got := PagePath(rel); got != want {
			t.Errorf("PagePath(%q) = %q, want %q", rel, got, want)
		}
	}
}

func TestRun_InvalidBaseURL(t *testing.T) {
	v := New(Config{BaseURL: "not a url"}, directTable(t))
	if _, err := v.Run(context.Background(), []string{"/"}); err == nil {
		t.Error("expected error for invalid base url")
	}
}

// TestRun_Browser needs a local Chrome; set NAVPATCH_BROWSER_TESTS=1 to run it.
func TestRun_Browser(t *testing.T) {
	if os.Getenv("NAVPATCH_BROWSER_TESTS") == "" {
		t.Skip("set NAVPATCH_BROWSER_TESTS=1 to run browser tests")
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><ul>
<li class="md-tabs__item"><a class="md-tabs__link" href="introduction.html">Getting Started</a></li>
<li class="md-tabs__item"><a class="md-tabs__link" href="installation/">Installation</a></li>
</ul></body></html>`))
	}))
	defer ts.Close()

	v := New(Config{BaseURL: ts.URL + "/", Settle: 50 * time.Millisecond}, directTable(t))
	report, err := v.Run(context.Background(), []string{"/"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Pages != 1 || report.Elements != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Mismatches) != 1 || report.Mismatches[0].Label != "Installation" {
		t.Errorf("mismatches = %+v", report.Mismatches)
	}
	if report.OK() {
		t.Error("report with mismatches should not be OK")
	}
}
