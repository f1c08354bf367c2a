package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/navpatch/internal/redirect"
	"github.com/ziadkadry99/navpatch/internal/walker"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: NAVPATCH_SERVE__PORT sets serve.port.
const EnvPrefix = "NAVPATCH_"

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{
	"preview_markers": true,
	"include":         true,
	"exclude":         true,
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NAVPATCH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: NAVPATCH_MODE -> mode, etc.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		return key, splitAndTrim(value)
	}
	return key, value
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return fmt.Errorf("site_dir is required")
	}

	if !c.isAuto() {
		if _, err := redirect.ParseMode(c.Mode); err != nil {
			return fmt.Errorf("invalid mode %q: must be one of direct, trailing-slash, markdown, auto", c.Mode)
		}
	}

	if !c.RoutesFromMkDocs && len(c.Routes) == 0 {
		return fmt.Errorf("routes are required unless routes_from_mkdocs is set")
	}
	seen := make(map[string]bool, len(c.Routes))
	for i, r := range c.Routes {
		label := redirect.NormalizeLabel(r.Label)
		if label == "" {
			return fmt.Errorf("routes[%d]: label is required", i)
		}
		if strings.TrimSpace(r.Page) == "" {
			return fmt.Errorf("routes[%d] (%s): page is required", i, label)
		}
		if seen[label] {
			return fmt.Errorf("routes[%d]: duplicate label %q", i, label)
		}
		seen[label] = true
	}

	if err := walker.ValidatePatterns(c.Include); err != nil {
		return fmt.Errorf("include: %w", err)
	}
	if err := walker.ValidatePatterns(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d is out of range", c.Serve.Port)
	}

	if _, err := c.SettleDuration(); err != nil {
		return err
	}

	return nil
}

func (c *Config) isAuto() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), ModeAuto)
}

// SettleDuration parses verify.settle. An empty value means zero.
func (c *Config) SettleDuration() (time.Duration, error) {
	if c.Verify.Settle == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Verify.Settle)
	if err != nil {
		return 0, fmt.Errorf("invalid verify.settle %q: %w", c.Verify.Settle, err)
	}
	if d < 0 {
		return 0, errors.New("verify.settle must be non-negative")
	}
	return d, nil
}

// ResolveMode returns the deployment mode. "auto" picks trailing-slash when
// Host contains a preview marker and direct otherwise.
func (c *Config) ResolveMode() (redirect.Mode, error) {
	if c.isAuto() {
		return redirect.ModeForHost(c.Host, c.PreviewMarkers, redirect.ModeDirect), nil
	}
	return redirect.ParseMode(c.Mode)
}

// ResolveRoutes returns the routes to build the table from. With
// routes_from_mkdocs the top-level sections of mkdocs.yml come first and
// configured routes override them by label.
func (c *Config) ResolveRoutes() ([]redirect.Route, error) {
	if !c.RoutesFromMkDocs {
		return c.Routes, nil
	}

	derived, err := redirect.RoutesFromMkDocs(c.MkDocsFile)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(derived))
	for i, r := range derived {
		index[redirect.NormalizeLabel(r.Label)] = i
	}
	for _, r := range c.Routes {
		if i, ok := index[redirect.NormalizeLabel(r.Label)]; ok {
			derived[i] = r
			continue
		}
		index[redirect.NormalizeLabel(r.Label)] = len(derived)
		derived = append(derived, r)
	}
	return derived, nil
}

// Table builds the redirect table for this configuration.
func (c *Config) Table() (*redirect.Table, error) {
	mode, err := c.ResolveMode()
	if err != nil {
		return nil, err
	}
	routes, err := c.ResolveRoutes()
	if err != nil {
		return nil, err
	}
	return redirect.NewTable(routes, mode)
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
