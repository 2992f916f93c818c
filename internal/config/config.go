// Package config loads and merges tack configuration.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/tack/internal/workspace"
)

// Config holds application configuration.
type Config struct {
	// Roots is an extra list of workspace root directories indexed in
	// addition to the roots given on the command line. Relative paths are
	// resolved at load time against the directory holding the config file,
	// or against the repository directory for a repo config.
	Roots []string `json:"roots,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely. All tools
	// belonging to disabled types are excluded from registration. Known
	// types: "part".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebBind is the address the web viewer listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the port the web viewer listens on.
	WebPort int `json:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WebBind: "127.0.0.1",
		WebPort: 7518,
	}
}

// Load loads configuration from baseDir/config.json. Returns default config
// if the file doesn't exist. The baseDir parameter allows tests to use
// t.TempDir() instead of ~/.tack.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo loads configuration from both the global base directory and
// the nearest repo marker directory found by walking upward from startDir.
// Repo config takes precedence for scalar values; arrays are merged and
// deduplicated. Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest marker
// directory config. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, workspace.MarkerDir, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path. Returns
// zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Anchor relative roots to the file that declared them. A repo config
	// lives inside the marker directory, so its roots anchor to the
	// repository directory above it.
	baseDir := filepath.Dir(configPath)
	if filepath.Base(baseDir) == workspace.MarkerDir {
		baseDir = filepath.Dir(baseDir)
	}
	for i, root := range cfg.Roots {
		if root != "" && !filepath.IsAbs(root) {
			cfg.Roots[i] = filepath.Join(baseDir, root)
		}
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.WebBind = overlay.WebBind
	if result.WebBind == "" {
		result.WebBind = base.WebBind
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	result.Roots = mergeStringSlice(base.Roots, overlay.Roots)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
