package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tabsPage = `<!doctype html>
<html><head><title>Docs</title></head><body>
<nav class="md-tabs"><ul class="md-tabs__list">
<li class="md-tabs__item"><a href="." class="md-tabs__link">Home</a></li>
<li class="md-tabs__item"><a href="getting-started/" class="md-tabs__link">Getting Started</a></li>
</ul></nav>
</body></html>`

// setupProject writes a built site and a config file, and returns the
// config path and the site dir.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	siteDir := filepath.Join(dir, "site")
	if err := os.MkdirAll(filepath.Join(siteDir, "introduction"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"index.html", "introduction/index.html"} {
		if err := os.WriteFile(filepath.Join(siteDir, rel), []byte(tabsPage), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := fmt.Sprintf(`site_dir: %s
mode: trailing-slash
inject_runtime: false
ledger_path: %s
routes:
  - label: Getting Started
    page: introduction
`, siteDir, filepath.Join(dir, "ledger.db"))
	cfgPath := filepath.Join(dir, ".navpatch.yml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, siteDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	patchWatch, patchOutput, patchDryRun = false, "", false
	planJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPatchCommand(t *testing.T) {
	cfgPath, siteDir := setupProject(t)

	if _, err := execute(t, "--config", cfgPath, "patch"); err != nil {
		t.Fatalf("patch: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(siteDir, "introduction", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `href="/introduction/"`) {
		t.Errorf("tab link not rewritten:\n%s", data)
	}
	if !strings.Contains(string(data), `href="."`) {
		t.Error("link outside the table was changed")
	}
}

func TestPatchCommand_DryRunLeavesSite(t *testing.T) {
	cfgPath, siteDir := setupProject(t)

	if _, err := execute(t, "--config", cfgPath, "patch", "--dry-run"); err != nil {
		t.Fatalf("patch --dry-run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(siteDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != tabsPage {
		t.Error("dry run modified the page")
	}
}

func TestPlanCommand_JSON(t *testing.T) {
	cfgPath, siteDir := setupProject(t)

	out, err := execute(t, "--config", cfgPath, "plan", "--json", filepath.Join(siteDir, "index.html"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	var plan struct {
		Mode        string `json:"mode"`
		Assignments []struct {
			Element struct {
				Kind string `json:"kind"`
			} `json:"element"`
			Label string `json:"label"`
			Href  string `json:"href"`
		} `json:"assignments"`
		Pending int `json:"pending"`
	}
	if err := json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &plan); err != nil {
		t.Fatalf("decoding plan: %v\n%s", err, out)
	}
	if plan.Mode != "trailing-slash" {
		t.Errorf("mode = %q", plan.Mode)
	}

	// The tab pass and the unconditional top-link pass both claim the anchor.
	kinds := map[string]bool{}
	for _, a := range plan.Assignments {
		if a.Label != "Getting Started" || a.Href != "/introduction/" {
			t.Errorf("assignment = %+v", a)
		}
		kinds[a.Element.Kind] = true
	}
	if len(plan.Assignments) != 2 || !kinds["tab"] || !kinds["toplink"] {
		t.Errorf("assignments = %+v, want one tab and one toplink", plan.Assignments)
	}
	if plan.Pending != 2 {
		t.Errorf("pending = %d, want 2", plan.Pending)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), ".navpatch.yml")
	if err := os.WriteFile(cfgPath, []byte("mode: sideways\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfgPath, "plan", "x.html"); err == nil {
		t.Error("expected an error for an invalid mode")
	}
}
