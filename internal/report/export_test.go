package report

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hpungsan/tack/internal/errors"
)

// setTestHome points the exports directory at a temp location.
func setTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestValidateExportPath_RequiresPath(t *testing.T) {
	setTestHome(t)
	if err := ValidateExportPath(""); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}

func TestValidateExportPath_RejectsTraversal(t *testing.T) {
	setTestHome(t)
	err := ValidateExportPath("../escape.md")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
	if !strings.Contains(err.Error(), "traversal") {
		t.Errorf("err = %v, want traversal message", err)
	}
}

func TestValidateExportPath_RequiresMarkdownExtension(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, ".tack", "exports", "report.txt")
	if err := ValidateExportPath(path); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}

func TestValidateExportPath_RejectsOutsideExportsDir(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, "elsewhere", "report.md")
	if err := ValidateExportPath(path); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}

func TestValidateExportPath_RejectsSubdirectory(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, ".tack", "exports", "nested", "report.md")
	if err := ValidateExportPath(path); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}

func TestValidateExportPath_AcceptsExportsFile(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, ".tack", "exports", "report.md")
	if err := ValidateExportPath(path); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestExport_WritesFile(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, ".tack", "exports", "report.md")

	if err := Export(path, "# Captured excerpts\n"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# Captured excerpts\n" {
		t.Errorf("content = %q", data)
	}
}

func TestExport_OverwritesExisting(t *testing.T) {
	home := setTestHome(t)
	path := filepath.Join(home, ".tack", "exports", "report.md")

	if err := Export(path, "first version with more text\n"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := Export(path, "second\n"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("content = %q, want truncated rewrite", data)
	}
}

func TestExport_RejectsSymlinkTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not applicable on windows")
	}
	home := setTestHome(t)
	exports := filepath.Join(home, ".tack", "exports")
	if err := os.MkdirAll(exports, 0o700); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(home, "victim.md")
	if err := os.WriteFile(target, []byte("original"), 0o600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(exports, "report.md")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	err := Export(link, "overwritten")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid_request", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "original" {
		t.Error("symlink target was written through")
	}
}
