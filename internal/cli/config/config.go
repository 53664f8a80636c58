package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirName   = "driveclone"
	fileName  = "config.json"
	dirPerms  = 0700
	filePerms = 0600

	// PathEnv overrides the config file location.
	PathEnv    = "DRIVECLONE_CONFIG"
	DefaultURL = "http://localhost:5000"
)

// Config holds persisted CLI state.
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Email     string `json:"email,omitempty"`
}

// Path returns the config file location, honouring DRIVECLONE_CONFIG.
func Path() (string, error) {
	if custom := strings.TrimSpace(os.Getenv(PathEnv)); custom != "" {
		return custom, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads the config from disk. A missing file yields defaults, not an error.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return &Config{ServerURL: DefaultURL}, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{ServerURL: DefaultURL}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	return &cfg, nil
}

// Save writes the config with owner-only permissions.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, filePerms)
}

// Clear forgets the stored session but keeps the server URL.
func Clear() error {
	cfg, err := Load()
	if err != nil {
		return Remove()
	}
	if cfg.Token == "" && cfg.Email == "" {
		return nil
	}
	cfg.Token = ""
	cfg.Email = ""
	return Save(cfg)
}

// Remove deletes the config file.
func Remove() error {
	p, err := Path()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) HasToken() bool {
	return c.Token != ""
}
