package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/navpatch/internal/redirect"
)

// DefaultPath is where the wizard writes the configuration.
const DefaultPath = ".navpatch.yml"

// detectMkDocs reports whether an mkdocs config is present in the current
// directory and returns its name.
func detectMkDocs() (string, bool) {
	for _, name := range []string{"mkdocs.yml", "mkdocs.yaml"} {
		if _, err := os.Stat(name); err == nil {
			return name, true
		}
	}
	return "", false
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .navpatch.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to navpatch! Let's configure your docs site.")
	fmt.Println()

	cfg := DefaultConfig()

	mkdocsFile, hasMkDocs := detectMkDocs()
	if hasMkDocs {
		cfg.MkDocsFile = mkdocsFile
		fmt.Printf("Detected MkDocs config: %s\n\n", mkdocsFile)
	}

	// 1. Deployment mode.
	modePrompt := promptui.Select{
		Label: "Where is the site served from",
		Items: []string{
			"direct          static hosting, pages at name.html",
			"trailing-slash  preview hosting, pages at /name/",
			"markdown        local build, pages at name/",
			"auto            pick by host name at patch time",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mode selection: %w", err)
	}
	modes := []string{
		string(redirect.ModeDirect),
		string(redirect.ModeTrailingSlash),
		string(redirect.ModeMarkdown),
		ModeAuto,
	}
	cfg.Mode = modes[modeIdx]

	// 2. Site directory.
	sitePrompt := promptui.Prompt{
		Label:   "Built site directory",
		Default: cfg.SiteDir,
	}
	cfg.SiteDir, err = sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}

	// 3. Routes.
	if hasMkDocs {
		routesPrompt := promptui.Select{
			Label: "Derive tab destinations from the mkdocs.yml nav",
			Items: []string{"yes", "no"},
		}
		idx, _, err := routesPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("routes selection: %w", err)
		}
		if idx == 0 {
			cfg.RoutesFromMkDocs = true
			if routes, err := redirect.RoutesFromMkDocs(mkdocsFile); err == nil {
				cfg.Routes = nil
				for _, r := range routes {
					fmt.Printf("  %s -> %s\n", r.Label, r.Page)
				}
			} else {
				fmt.Printf("Note: could not read nav from %s: %v\n", mkdocsFile, err)
			}
		}
	}

	// 4. Markdown link rewriting.
	rewritePrompt := promptui.Select{
		Label: "Rewrite leftover .md links in page content",
		Items: []string{"yes", "no"},
	}
	rewriteIdx, _, err := rewritePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("rewrite selection: %w", err)
	}
	cfg.RewriteMDLinks = rewriteIdx == 0

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if strings.TrimSpace(excludeStr) != "" {
		cfg.Exclude = append(append([]string{}, DefaultExcludes...), splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
