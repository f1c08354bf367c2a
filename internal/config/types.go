package config

import "github.com/ziadkadry99/navpatch/internal/redirect"

// ModeAuto resolves the deployment mode from Host and PreviewMarkers.
const ModeAuto = "auto"

// Config is the top-level navpatch configuration, corresponding to .navpatch.yml.
type Config struct {
	SiteDir          string           `yaml:"site_dir" koanf:"site_dir"`
	DocsDir          string           `yaml:"docs_dir" koanf:"docs_dir"`
	MkDocsFile       string           `yaml:"mkdocs_file" koanf:"mkdocs_file"`
	Mode             string           `yaml:"mode" koanf:"mode"`
	Host             string           `yaml:"host,omitempty" koanf:"host"`
	PreviewMarkers   []string         `yaml:"preview_markers" koanf:"preview_markers"`
	Routes           []redirect.Route `yaml:"routes" koanf:"routes"`
	RoutesFromMkDocs bool             `yaml:"routes_from_mkdocs" koanf:"routes_from_mkdocs"`
	RewriteMDLinks   bool             `yaml:"rewrite_md_links" koanf:"rewrite_md_links"`
	InjectRuntime    bool             `yaml:"inject_runtime" koanf:"inject_runtime"`
	Include          []string         `yaml:"include" koanf:"include"`
	Exclude          []string         `yaml:"exclude" koanf:"exclude"`
	MaxConcurrency   int              `yaml:"max_concurrency" koanf:"max_concurrency"`
	LedgerPath       string           `yaml:"ledger_path" koanf:"ledger_path"`
	Serve            ServeConfig      `yaml:"serve" koanf:"serve"`
	Verify           VerifyConfig     `yaml:"verify" koanf:"verify"`
}

// ServeConfig holds preview server settings.
type ServeConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// VerifyConfig holds browser verification settings.
type VerifyConfig struct {
	BaseURL   string `yaml:"base_url" koanf:"base_url"`
	RemoteURL string `yaml:"remote_url,omitempty" koanf:"remote_url"`
	// Settle is a Go duration string, e.g. "1200ms".
	Settle string `yaml:"settle" koanf:"settle"`
}
