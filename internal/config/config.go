package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/dshills/sectionref-mcp/internal/chunker"
)

const (
	// DefaultFileName is looked up in the base directory when no explicit
	// config path is given.
	DefaultFileName = "sectionref.json"

	// EnvConfigPath overrides config discovery with an explicit path.
	EnvConfigPath = "SECTIONREF_CONFIG"
)

// Config is the on-disk configuration. Files are glob patterns relative
// to BaseDir (absolute patterns pass through); Exclude patterns are
// matched against the base-relative slash path of each candidate.
type Config struct {
	BaseDir   string   `json:"baseDir"`
	Files     []string `json:"files"`
	Exclude   []string `json:"exclude,omitempty"`
	MaxTokens int      `json:"maxTokens,omitempty"`
	CachePath string   `json:"cachePath,omitempty"`
}

// Default returns the configuration used when no config file exists:
// every markdown file directly under the base directory.
func Default(baseDir string) *Config {
	cfg := &Config{
		BaseDir: baseDir,
		Files:   []string{"*.md"},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration for baseDir. The SECTIONREF_CONFIG
// environment variable overrides discovery; otherwise sectionref.json in
// the base directory is used, and a missing file falls back to Default.
func Load(baseDir string) (*Config, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	path := os.Getenv(EnvConfigPath)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(abs, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(abs), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = abs
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(abs, cfg.BaseDir)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Files) == 0 {
		c.Files = []string{"*.md"}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = chunker.DefaultMaxTokens
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(c.BaseDir, ".sectionref", "index.db")
	} else if !filepath.IsAbs(c.CachePath) {
		c.CachePath = filepath.Join(c.BaseDir, c.CachePath)
	}
}

func (c *Config) validate() error {
	for _, pattern := range c.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// ResolveFiles expands the configured patterns into an ordered,
// de-duplicated list of absolute paths. Order follows the Files list,
// then each pattern's glob order, so the index's duplicate reporting is
// deterministic across runs.
func (c *Config) ResolveFiles() ([]string, error) {
	excludes := make([]glob.Glob, 0, len(c.Exclude))
	for _, pattern := range c.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}

	var files []string
	seen := make(map[string]bool)
	for _, pattern := range c.Files {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.BaseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			abs, err := filepath.Abs(match)
			if err != nil {
				return nil, err
			}
			if seen[abs] || c.excluded(excludes, abs) {
				continue
			}
			seen[abs] = true
			files = append(files, abs)
		}
	}
	return files, nil
}

func (c *Config) excluded(excludes []glob.Glob, path string) bool {
	rel, err := filepath.Rel(c.BaseDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, g := range excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
