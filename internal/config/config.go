// ABOUTME: Settings loading with global + project YAML config deep merge
// ABOUTME: Defaults cover the image budget, recency cache, storage backend, and server

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied before any config file is read.
const (
	DefaultBaseURL  = "http://127.0.0.1:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultBudget   = 1_400_000
	DefaultCapacity = 16
	DefaultCacheKey = "presets"
	DefaultBackend  = "file"
)

// DefaultQualities is the JPEG quality ladder tried when an image is over budget.
var DefaultQualities = []float64{0.8, 0.6, 0.4, 0.2}

// Settings holds the merged configuration.
type Settings struct {
	Server   ServerSettings  `yaml:"server"`
	Image    ImageSettings   `yaml:"image"`
	Cache    CacheSettings   `yaml:"cache"`
	Storage  StorageSettings `yaml:"storage"`
	LogLevel string          `yaml:"log_level,omitempty"`
}

// ServerSettings locates the discussion server.
type ServerSettings struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ImageSettings tunes the attachment transcoder.
type ImageSettings struct {
	Budget    int       `yaml:"budget,omitempty"`
	Qualities []float64 `yaml:"qualities,omitempty"`
}

// CacheSettings tunes the mention recency cache.
type CacheSettings struct {
	Capacity int    `yaml:"capacity,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

// StorageSettings selects the local key-value backend.
// Backend is one of "file", "sqlite", "memory". An empty Path resolves
// to a file under GlobalDir.
type StorageSettings struct {
	Backend string `yaml:"backend,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Defaults returns settings populated with built-in values.
func Defaults() *Settings {
	return &Settings{
		Server: ServerSettings{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		Image: ImageSettings{
			Budget:    DefaultBudget,
			Qualities: append([]float64(nil), DefaultQualities...),
		},
		Cache:    CacheSettings{Capacity: DefaultCapacity, Key: DefaultCacheKey},
		Storage:  StorageSettings{Backend: DefaultBackend},
		LogLevel: "info",
	}
}

// Load reads and merges defaults, global, and project-local settings.
// Project settings override global settings; env expansion runs last.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(merge(Defaults(), global), project)
	ResolveEnvVars(merged)
	return merged, nil
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero values of over onto base.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}

	result := *base

	if over.Server.BaseURL != "" {
		result.Server.BaseURL = over.Server.BaseURL
	}
	if over.Server.Timeout != 0 {
		result.Server.Timeout = over.Server.Timeout
	}
	if over.Image.Budget != 0 {
		result.Image.Budget = over.Image.Budget
	}
	if len(over.Image.Qualities) > 0 {
		result.Image.Qualities = append([]float64(nil), over.Image.Qualities...)
	}
	if over.Cache.Capacity != 0 {
		result.Cache.Capacity = over.Cache.Capacity
	}
	if over.Cache.Key != "" {
		result.Cache.Key = over.Cache.Key
	}
	if over.Storage.Backend != "" {
		result.Storage.Backend = over.Storage.Backend
	}
	if over.Storage.Path != "" {
		result.Storage.Path = over.Storage.Path
	}
	if over.LogLevel != "" {
		result.LogLevel = over.LogLevel
	}

	return &result
}

// Validate rejects settings the components cannot run with.
func (s *Settings) Validate() error {
	if s.Image.Budget <= 0 {
		return fmt.Errorf("image.budget must be positive, got %d", s.Image.Budget)
	}
	for _, q := range s.Image.Qualities {
		if q <= 0 || q > 1 {
			return fmt.Errorf("image.qualities: %v outside (0, 1]", q)
		}
	}
	if s.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", s.Cache.Capacity)
	}
	switch s.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend %q: want file, sqlite, or memory", s.Storage.Backend)
	}
	return nil
}
