package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Catalog contains configuration for the local catalog API.
type Catalog struct {
	BaseURL        string  `toml:"base_url"`
	YearID         int64   `toml:"year_id"`
	Categories     []int64 `toml:"categories"`
	RequestTimeout int     `toml:"request_timeout"`
}

// Bank contains configuration for the third-party question bank API.
type Bank struct {
	BaseURL           string  `toml:"base_url"`
	TeachingType      string  `toml:"teaching_type"`
	MinSimilarity     float64 `toml:"min_similarity"`
	OfficialThreshold float64 `toml:"official_threshold"`
	RequestTimeout    int     `toml:"request_timeout"`
	ConnectTimeout    int     `toml:"connect_timeout"`
}

// Auth contains configuration for the interactive credential helper.
type Auth struct {
	// Command is invoked when the stored credential is absent or expired.
	// It must print {"token": ..., "issued_at": ..., "expires_at": ...} on stdout.
	Command        []string `toml:"command"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Cache contains configuration for the local bank response cache.
type Cache struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// Agent contains configuration for the extraction loop.
type Agent struct {
	Workers              int `toml:"workers"`
	MaxQuestions         int `toml:"max_questions"`
	DelayMinMillis       int `toml:"delay_min_millis"`
	DelayMaxMillis       int `toml:"delay_max_millis"`
	MaxConsecutiveErrors int `toml:"max_consecutive_errors"`
	LongPauseSeconds     int `toml:"long_pause_seconds"`
	MaxServerDownRounds  int `toml:"max_server_down_rounds"`
	EmptySweepSeconds    int `toml:"empty_sweep_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for taglift.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Catalog: the local catalog API that owns pending questions
//   - Bank: the third-party question bank searched for matches
//   - Auth: the interactive login helper that mints bearer credentials
//   - Cache: local cache of bank responses
//   - Agent: concurrency, politeness delays, and circuit-breaker limits
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Bank    Bank    `toml:"bank"`
	Auth    Auth    `toml:"auth"`
	Cache   Cache   `toml:"cache"`
	Agent   Agent   `toml:"agent"`
	Logging Logging `toml:"logging"`
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/taglift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("taglift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the agent needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	return nil
}

// CredentialPath returns the path of the persisted bearer credential.
func (c *Config) CredentialPath() string {
	return filepath.Join(c.Paths.StateDir, "credential.json")
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "taglift.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
