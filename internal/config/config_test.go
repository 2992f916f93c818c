package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/tack/internal/workspace"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebBind != "127.0.0.1" || cfg.WebPort != 7518 {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	doc := `{"web_port": 9000, "roots": ["/work/a"], "disabled_tools": ["part_ban_all"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want default preserved", cfg.WebBind)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0] != "/work/a" {
		t.Errorf("Roots = %v", cfg.Roots)
	}
}

func TestLoad_RelativeRootsAnchoredToConfigDir(t *testing.T) {
	dir := t.TempDir()
	doc := `{"roots": ["sub", "/abs/root"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := filepath.Join(dir, "sub")
	if len(cfg.Roots) != 2 || cfg.Roots[0] != want {
		t.Errorf("Roots = %v, want first %q", cfg.Roots, want)
	}
	if cfg.Roots[1] != "/abs/root" {
		t.Errorf("absolute root rewritten: %q", cfg.Roots[1])
	}
}

func TestLoadWithRepo_RelativeRootsAnchoredToRepoDir(t *testing.T) {
	globalDir := t.TempDir()
	repoDir := t.TempDir()

	marker := filepath.Join(repoDir, workspace.MarkerDir)
	if err := os.MkdirAll(marker, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `{"roots": ["nested"]}`
	if err := os.WriteFile(filepath.Join(marker, "config.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithRepo(globalDir, repoDir)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}
	want := filepath.Join(repoDir, "nested")
	if len(cfg.Roots) != 1 || cfg.Roots[0] != want {
		t.Errorf("Roots = %v, want [%q]", cfg.Roots, want)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("malformed config should be an error, not silently ignored")
	}
}

func TestLoadWithRepo_Precedence(t *testing.T) {
	globalDir := t.TempDir()
	repoDir := t.TempDir()

	global := `{"web_port": 9000, "roots": ["/global/root"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(global), 0o644); err != nil {
		t.Fatal(err)
	}

	marker := filepath.Join(repoDir, workspace.MarkerDir)
	if err := os.MkdirAll(marker, 0o755); err != nil {
		t.Fatal(err)
	}
	repo := `{"web_port": 9100, "roots": ["/repo/root"]}`
	if err := os.WriteFile(filepath.Join(marker, "config.json"), []byte(repo), 0o644); err != nil {
		t.Fatal(err)
	}

	// Start from a nested directory; the upward walk finds the repo config.
	nested := filepath.Join(repoDir, "deep", "inside")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}

	if cfg.WebPort != 9100 {
		t.Errorf("WebPort = %d, want repo value 9100", cfg.WebPort)
	}
	if len(cfg.Roots) != 2 {
		t.Errorf("Roots = %v, want merged global+repo", cfg.Roots)
	}
}

func TestMerge_ArraysDeduplicate(t *testing.T) {
	got := Merge(
		&Config{Roots: []string{"/a", "/b"}},
		&Config{Roots: []string{"/b", " /c "}},
	)
	want := []string{"/a", "/b", "/c"}
	if len(got.Roots) != len(want) {
		t.Fatalf("Roots = %v, want %v", got.Roots, want)
	}
	for i := range want {
		if got.Roots[i] != want[i] {
			t.Errorf("Roots[%d] = %q, want %q", i, got.Roots[i], want[i])
		}
	}
}
