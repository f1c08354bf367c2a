package config

import (
	"slices"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// DefaultPreviewMarkers are host fragments of common preview hosts that serve
// pages at trailing-slash paths.
var DefaultPreviewMarkers = []string{
	"onrender.com",
	"netlify.app",
	"vercel.app",
	"pages.dev",
}

// DefaultExcludes are glob patterns excluded from patching by default, on top
// of the walker's own directory excludes.
var DefaultExcludes = []string{
	"assets/**",
	"search/**",
	"**/*.min.html",
}

// DefaultConfig returns a Config with sensible defaults. Slices are fresh
// copies, since loading decodes into them in place.
func DefaultConfig() *Config {
	return &Config{
		SiteDir:        "site",
		DocsDir:        "docs",
		MkDocsFile:     "mkdocs.yml",
		Mode:           string(redirect.ModeDirect),
		PreviewMarkers: slices.Clone(DefaultPreviewMarkers),
		Routes:         redirect.DefaultRoutes(),
		RewriteMDLinks: true,
		InjectRuntime:  true,
		Include:        []string{"**/*.html"},
		Exclude:        slices.Clone(DefaultExcludes),
		MaxConcurrency: 8,
		LedgerPath:     ".navpatch/ledger.db",
		Serve: ServeConfig{
			Port: 8000,
		},
		Verify: VerifyConfig{
			BaseURL: "http://127.0.0.1:8000/",
			Settle:  "1200ms",
		},
	}
}
