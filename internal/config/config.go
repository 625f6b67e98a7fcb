// Package config loads the TOML configuration controlling where the
// asset vault and logs live and how imports batch their writes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	Paths  Paths  `toml:"paths"`
	Import Import `toml:"import"`
	Log    Log    `toml:"log"`
}

// Paths contains directory configuration.
type Paths struct {
	VaultDir string `toml:"vault_dir"`
	LogDir   string `toml:"log_dir"`
}

// Import tunes the import pipeline.
type Import struct {
	// BatchSize is the number of assets persisted per vault write.
	BatchSize int `toml:"batch_size"`
}

// Log configures structured logging output.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration rooted under the user's
// data directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".local", "share", "reliquary")
	return &Config{
		Paths: Paths{
			VaultDir: filepath.Join(dataDir, "vault"),
			LogDir:   filepath.Join(dataDir, "logs"),
		},
		Import: Import{BatchSize: 64},
		Log:    Log{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "reliquary", "config.toml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error; defaults apply and exists
// reports false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultPath()
	}
	resolved = expandHome(resolved)

	cfg = Default()
	data, readErr := os.ReadFile(resolved)
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config: %w", readErr)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}
	return cfg, resolved, true, nil
}

func (c *Config) normalize() {
	c.Paths.VaultDir = expandHome(c.Paths.VaultDir)
	c.Paths.LogDir = expandHome(c.Paths.LogDir)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Paths.VaultDir == "" {
		return errors.New("config: vault_dir must be set")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.Import.BatchSize)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	return nil
}

// CreateSample writes a commented default configuration to path.
func CreateSample(path string) error {
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode sample config: %w", err)
	}
	header := "# reliquary configuration\n# Values shown are the built-in defaults.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the vault and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.VaultDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
