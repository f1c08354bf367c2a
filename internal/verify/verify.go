package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// DefaultSettle covers the runtime's last delayed retry.
const DefaultSettle = 1200 * time.Millisecond

// collectScript returns the tab links and sidebar overlays of the page as a
// JSON string.
const collectScript = `() => {
	const norm = (s) => (s || "").replace(/\s+/g, " ").trim();
	const out = [];
	document.querySelectorAll(".md-tabs__item").forEach((item) => {
		const a = item.querySelector(".md-tabs__link");
		if (a) {
			out.push({kind: "tab", label: norm(a.textContent), href: a.getAttribute("href") || ""});
		}
	});
	document.querySelectorAll('.md-nav__link[for^="__nav_"]').forEach((label) => {
		const prev = label.previousElementSibling;
		const href = prev && prev.classList.contains("md-nav__force-link") ? (prev.getAttribute("href") || "") : "";
		out.push({kind: "sidebar", label: norm(label.textContent), href: href});
	});
	return JSON.stringify(out);
}`

// Config configures a Verifier.
type Config struct {
	// BaseURL is where the site is served, e.g. http://127.0.0.1:8000/.
	BaseURL string
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local headless Chrome.
	RemoteURL string
	// Settle is how long to wait after load before reading the page.
	Settle time.Duration
	// PageTimeout bounds navigation of a single page. Default: 30s.
	PageTimeout time.Duration
	Logger      *slog.Logger
}

func (c *Config) defaults() {
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Report is the outcome of a verification run.
type Report struct {
	Pages      int        `json:"pages"`
	Elements   int        `json:"elements"`
	Mismatches []Mismatch `json:"mismatches"`
	Errors     []string   `json:"errors,omitempty"`
}

// OK reports whether every page loaded and matched.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 && len(r.Errors) == 0 }

// Verifier checks served pages in a real browser.
type Verifier struct {
	cfg   Config
	table *redirect.Table
}

// New creates a Verifier.
func New(cfg Config, table *redirect.Table) *Verifier {
	cfg.defaults()
	return &Verifier{cfg: cfg, table: table}
}

// Run opens each URL path under BaseURL and compares its navigation.
// Per-page failures are collected in the report.
func (v *Verifier) Run(ctx context.Context, paths []string) (*Report, error) {
	base, err := url.Parse(v.cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("verify: invalid base url %q", v.cfg.BaseURL)
	}

	browser, cleanup, err := v.connect()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := &Report{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		pageURL := base.ResolveReference(&url.URL{Path: strings.TrimPrefix(p, "/")}).String()
		observed, err := v.observe(ctx, browser, pageURL)
		report.Pages++
		if err != nil {
			v.cfg.Logger.Warn("verify: page failed", "url", pageURL, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		report.Elements += len(observed)
		mismatches := Compare(v.table, p, observed)
		for _, m := range mismatches {
			v.cfg.Logger.Debug("verify: mismatch", "page", p, "kind", m.Kind, "label", m.Label, "want", m.Want, "got", m.Got)
		}
		report.Mismatches = append(report.Mismatches, mismatches...)
	}
	return report, nil
}

func (v *Verifier) connect() (*rod.Browser, func(), error) {
	log := v.cfg.Logger
	wsURL := v.cfg.RemoteURL
	var l *launcher.Launcher
	if wsURL == "" {
		l = launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("verify: launch: %w", err)
		}
		wsURL = u
		log.Debug("verify: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("verify: connect: %w", err)
	}

	cleanup := func() {
		if err := b.Close(); err != nil {
			log.Debug("verify: close browser", "error", err)
		}
		if l != nil {
			l.Kill()
		}
	}
	return b, cleanup, nil
}

func (v *Verifier) observe(ctx context.Context, b *rod.Browser, pageURL string) ([]Observed, error) {
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, v.cfg.PageTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	select {
	case <-time.After(v.cfg.Settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res, err := page.Context(navCtx).Eval(collectScript)
	if err != nil {
		return nil, fmt.Errorf("read navigation: %w", err)
	}
	var observed []Observed
	if err := json.Unmarshal([]byte(res.Value.Str()), &observed); err != nil {
		return nil, fmt.Errorf("decode navigation: %w", err)
	}
	return observed, nil
}
