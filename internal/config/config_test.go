// ABOUTME: Tests for config loading, merging, defaults, and validation
// ABOUTME: Uses temp directories and a temp HOME for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	global := &Settings{Server: ServerSettings{BaseURL: "http://global"}, Image: ImageSettings{Budget: 500}}
	project := &Settings{Server: ServerSettings{BaseURL: "http://project"}}

	result := merge(global, project)

	if result.Server.BaseURL != "http://project" {
		t.Errorf("BaseURL = %q, want %q", result.Server.BaseURL, "http://project")
	}
	if result.Image.Budget != 500 {
		t.Errorf("Budget = %d, want 500", result.Image.Budget)
	}
}

func TestMerge_Nil(t *testing.T) {
	t.Parallel()

	result := merge(nil, nil)
	if result == nil {
		t.Fatal("merge(nil, nil) should return non-nil")
	}
}

func TestMerge_QualitiesReplacedNotAppended(t *testing.T) {
	t.Parallel()

	base := Defaults()
	result := merge(base, &Settings{Image: ImageSettings{Qualities: []float64{0.5}}})

	if len(result.Image.Qualities) != 1 || result.Image.Qualities[0] != 0.5 {
		t.Errorf("Qualities = %v, want [0.5]", result.Image.Qualities)
	}
	if len(base.Image.Qualities) != 4 {
		t.Errorf("base qualities mutated: %v", base.Image.Qualities)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	d := Defaults()
	if d.Image.Budget != 1_400_000 {
		t.Errorf("Budget = %d, want 1400000", d.Image.Budget)
	}
	if d.Cache.Capacity != 16 || d.Cache.Key != "presets" {
		t.Errorf("Cache = %+v, want capacity 16 key presets", d.Cache)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestLoadFile_NotExist(t *testing.T) {
	t.Parallel()

	s, err := loadFile("/nonexistent/path/config.yml")
	if !os.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
	if s == nil {
		t.Error("expected non-nil default settings")
	}
}

func TestLoadFile_ValidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := "server:\n  base_url: http://board.test\n  timeout: 5s\nimage:\n  budget: 90000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := loadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Server.BaseURL != "http://board.test" {
		t.Errorf("BaseURL = %q", s.Server.BaseURL)
	}
	if s.Server.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", s.Server.Timeout)
	}
	if s.Image.Budget != 90000 {
		t.Errorf("Budget = %d, want 90000", s.Image.Budget)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvBaseURL, "")

	if err := EnsureDir(GlobalDir()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(GlobalConfigFile(), []byte("cache:\n  capacity: 8\nstorage:\n  backend: sqlite\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	if err := EnsureDir(ProjectDir(project)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ProjectConfigFile(project), []byte("cache:\n  capacity: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Cache.Capacity != 4 {
		t.Errorf("Capacity = %d, want 4 from project", s.Cache.Capacity)
	}
	if s.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite from global", s.Storage.Backend)
	}
	if s.Image.Budget != DefaultBudget {
		t.Errorf("Budget = %d, want default", s.Image.Budget)
	}
	if got, want := s.StoragePath(), filepath.Join(home, ".pi-post", "storage.db"); got != want {
		t.Errorf("StoragePath() = %q, want %q", got, want)
	}
}

func TestLoad_EnvBaseURLOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvBaseURL, "http://override.test")

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.BaseURL != "http://override.test" {
		t.Errorf("BaseURL = %q, want env override", s.Server.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero budget", func(s *Settings) { s.Image.Budget = 0 }},
		{"quality above one", func(s *Settings) { s.Image.Qualities = []float64{1.5} }},
		{"quality zero", func(s *Settings) { s.Image.Qualities = []float64{0} }},
		{"zero capacity", func(s *Settings) { s.Cache.Capacity = 0 }},
		{"unknown backend", func(s *Settings) { s.Storage.Backend = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Defaults()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
