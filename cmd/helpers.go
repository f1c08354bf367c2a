package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/navpatch/internal/config"
	"github.com/ziadkadry99/navpatch/internal/db"
	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/walker"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `navpatch init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// buildPatcher creates a patcher for the configured table and options.
func buildPatcher(cfg *config.Config) (*navpatch.Patcher, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("building redirect table: %w", err)
	}
	logger.Debug("redirect table ready", "mode", table.Mode(), "routes", table.Len())
	return navpatch.New(navpatch.Options{
		Table:                table,
		RewriteMarkdownLinks: cfg.RewriteMDLinks,
		InjectRuntime:        cfg.InjectRuntime,
		Logger:               logger,
	}), nil
}

// openLedger opens the sqlite ledger. An empty ledger_path disables it and
// returns a nil store with a no-op close.
func openLedger(cfg *config.Config) (*ledger.Store, func(), error) {
	if cfg.LedgerPath == "" {
		return nil, func() {}, nil
	}
	database, err := db.Open(cfg.LedgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	return ledger.NewStore(database), func() { database.Close() }, nil
}

// walkSite lists the pages of the configured site dir.
func walkSite(cfg *config.Config) ([]walker.FileInfo, error) {
	if info, err := os.Stat(cfg.SiteDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("site dir %s not found; build the site with `mkdocs build` first", cfg.SiteDir)
	}
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: cfg.SiteDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", cfg.SiteDir, err)
	}
	return files, nil
}

// absPath returns p made absolute, or p unchanged when that fails.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
