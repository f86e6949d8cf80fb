package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "empty.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty config = %+v, want %+v", cfg, Default())
	}
	if cfg.MaxUnifyDepth != DefaultMaxUnifyDepth {
		t.Errorf("max_unify_depth = %d, want %d", cfg.MaxUnifyDepth, DefaultMaxUnifyDepth)
	}
	if want := []string{"typing", "typing_extensions"}; !reflect.DeepEqual(cfg.TypingModules, want) {
		t.Errorf("typing_modules = %v, want %v", cfg.TypingModules, want)
	}
}

func TestParseConfig_Valid(t *testing.T) {
	yaml := `
max_unify_depth: 8
typing_modules: [typing, mytyping]
diagnostics:
  color: never
  quiet: true
service:
  addr: "127.0.0.1:9000"
report:
  path: out.db
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxUnifyDepth != 8 {
		t.Errorf("max_unify_depth = %d, want 8", cfg.MaxUnifyDepth)
	}
	if cfg.TypingModules[1] != "mytyping" {
		t.Errorf("typing_modules = %v, want mytyping second", cfg.TypingModules)
	}
	if cfg.Diagnostics.Color != "never" || !cfg.Diagnostics.Quiet {
		t.Errorf("diagnostics = %+v, want never/quiet", cfg.Diagnostics)
	}
	if cfg.Service.Addr != "127.0.0.1:9000" {
		t.Errorf("service.addr = %q", cfg.Service.Addr)
	}
	if cfg.Report.Path != "out.db" {
		t.Errorf("report.path = %q, want out.db", cfg.Report.Path)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "max_depth: 3\n", "field max_depth not found"},
		{"negative depth", "max_unify_depth: -1\n", "max_unify_depth must be positive"},
		{"bad color", "diagnostics:\n  color: rainbow\n", "diagnostics.color"},
		{"empty module", "typing_modules: ['']\n", "typing_modules[0]"},
		{"bad yaml", "max_unify_depth: [\n", "parsing bad.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "bad.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadAndFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "pyhint.yaml")
	if err := os.WriteFile(path, []byte("max_unify_depth: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != path {
		t.Errorf("FindConfig = %q, want %q", found, path)
	}
	cfg, err := LoadConfig(found)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxUnifyDepth != 5 {
		t.Errorf("max_unify_depth = %d, want 5", cfg.MaxUnifyDepth)
	}

	if _, err := LoadConfig(filepath.Join(root, "missing.yaml")); err == nil {
		t.Error("LoadConfig of a missing file should fail")
	}
}

func TestIsSourceFile(t *testing.T) {
	tests := map[string]bool{
		"a.py":    true,
		"pkg.pyi": true,
		"a.pyc":   false,
		".py":     false,
		"main.go": false,
	}
	for path, want := range tests {
		if got := IsSourceFile(path); got != want {
			t.Errorf("IsSourceFile(%q) = %v, want %v", path, got, want)
		}
	}
}
