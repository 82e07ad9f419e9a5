package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultPath), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RoutineFile != "routine.json" || cfg.Scheduler.Tick != "@every 1m" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	d, err := cfg.NotifyTimeout()
	if err != nil || d != 10*time.Second {
		t.Fatalf("NotifyTimeout = %v, %v; want 10s", d, err)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "yaml",
			file: "mornify.yaml",
			body: "routine_file: my.json\nscheduler:\n  duplicate_window: 2m\n",
		},
		{
			name: "toml",
			file: "mornify.toml",
			body: "routine_file = \"my.json\"\n[scheduler]\nduplicate_window = \"2m\"\n",
		},
		{
			name: "jsonc",
			file: "mornify.json",
			body: "{\n  // where the routine lives\n  \"routine_file\": \"my.json\",\n  \"scheduler\": {\"duplicate_window\": \"2m\",},\n}\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(writeFile(t, tt.file, tt.body), true)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.RoutineFile != "my.json" {
				t.Fatalf("RoutineFile = %q, want my.json", cfg.RoutineFile)
			}
			if cfg.ThemeFile != "theme.json" {
				t.Fatalf("ThemeFile = %q, want default kept", cfg.ThemeFile)
			}
			// Partial section keeps the other defaults of that section.
			if cfg.Scheduler.Tick != "@every 1m" || !cfg.Scheduler.WatchRoutine {
				t.Fatalf("scheduler defaults lost: %+v", cfg.Scheduler)
			}
			w, err := cfg.DuplicateWindow()
			if err != nil || w != 2*time.Minute {
				t.Fatalf("DuplicateWindow = %v, %v; want 2m", w, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := Load(writeFile(t, "mornify.yaml", "routine_fil: typo.json\n"), true)
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("err = %v, want unknown field", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"backend", func(c *Config) { c.Notifications.Backend = "pager" }},
		{"timeout", func(c *Config) { c.Notifications.Timeout = "soon" }},
		{"window", func(c *Config) { c.Scheduler.DuplicateWindow = "-1m" }},
		{"driver", func(c *Config) { c.History.Driver = "postgres" }},
		{"routine", func(c *Config) { c.RoutineFile = " " }},
	}
	for _, tt := range tests {
		c := Default()
		tt.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvPath, "")
	if p, explicit := Resolve(""); p != DefaultPath || explicit {
		t.Fatalf("Resolve(\"\") = %q, %v", p, explicit)
	}
	t.Setenv(EnvPath, "/etc/mornify.toml")
	if p, explicit := Resolve(""); p != "/etc/mornify.toml" || !explicit {
		t.Fatalf("Resolve env = %q, %v", p, explicit)
	}
	if p, _ := Resolve("x.json"); p != "x.json" {
		t.Fatalf("flag should win, got %q", p)
	}
}
