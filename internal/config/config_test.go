package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stackc/internal/lower"
	"stackc/internal/trace"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[lower]
param_scope = "caller"
jobs = 4

[trace]
level = "detail"
mode = "ring"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path || cfg.Lower.Jobs != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Lower.Validate || cfg.Output.Format != OutputText || cfg.Trace.Format != "text" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	lopts, err := cfg.LowerOptions()
	if err != nil || lopts.ParamScope != lower.ParamScopeCaller {
		t.Fatalf("lower options = %+v, %v", lopts, err)
	}
	tcfg, err := cfg.Tracing()
	if err != nil || tcfg.Level != trace.LevelDetail || tcfg.Mode != trace.ModeRing {
		t.Fatalf("trace config = %+v, %v", tcfg, err)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[lower\n", "failed to parse TOML"},
		{"unknown key", "[lower]\nspeed = 1\n", "unknown keys: lower.speed"},
		{"param scope", "[lower]\nparam_scope = \"global\"\n", "[lower].param_scope"},
		{"negative jobs", "[lower]\njobs = -1\n", "[lower].jobs"},
		{"trace level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"output format", "[output]\nformat = \"wasm\"\n", "[output].format"},
		{"empty output path", "[output]\npath = \" \"\n", "[output].path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateJoinsProblems(t *testing.T) {
	cfg := Default()
	cfg.Trace.Mode = "tape"
	cfg.Output.Format = "wasm"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	if msg := err.Error(); !strings.Contains(msg, "[trace].mode") || !strings.Contains(msg, "[output].format") {
		t.Fatalf("error = %q", msg)
	}
}

func TestDiscoverSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[output]\nformat = \"ir\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Output.Format != OutputIR || cfg.Path != filepath.Join(root, FileName) {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
