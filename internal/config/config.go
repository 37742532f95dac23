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

// Profile is one named backend connection as it appears in the config file.
type Profile struct {
	APIBase        string `toml:"api_base"`
	ClientID       string `toml:"client_id"`
	CredentialsDir string `toml:"credentials_dir"`
	DefaultProject string `toml:"default_project"`
}

// Config is the resolved configuration for the active profile. All path
// fields are expanded and normalized.
type Config struct {
	Profile        string
	Path           string
	APIBase        string
	ClientID       string
	CredentialsDir string
	DefaultProject string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.accomplish/config.toml")
}

// Load locates and parses the configuration file and resolves the requested
// profile. An empty profile falls back to ACCOMPLISH_PROFILE, then "default".
// A missing file yields built-in defaults for the default profile; the
// returned bool reports whether a file existed.
func Load(path, profile string) (*Config, bool, error) {
	if strings.TrimSpace(profile) == "" {
		profile = os.Getenv(envProfile)
	}
	if strings.TrimSpace(profile) == "" {
		profile = defaultProfileName
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, false, err
	}

	profiles := map[string]Profile{}
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&profiles); err != nil {
			return nil, false, fmt.Errorf("parse config: %w", err)
		}
	}

	selected, ok := profiles[profile]
	if !ok {
		if profile != defaultProfileName {
			return nil, false, fmt.Errorf("profile %q not found in %s", profile, resolvedPath)
		}
		selected = Default()
	}

	cfg := &Config{
		Profile:        profile,
		Path:           resolvedPath,
		APIBase:        selected.APIBase,
		ClientID:       selected.ClientID,
		CredentialsDir: selected.CredentialsDir,
		DefaultProject: selected.DefaultProject,
	}

	if err := cfg.normalize(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, !info.IsDir(), nil
}

// TokenPath returns where the active profile's access token is stored.
func (c *Config) TokenPath() string {
	return filepath.Join(c.CredentialsDir, c.Profile, "token")
}

// CreateSample writes a commented sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
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
