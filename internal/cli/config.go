package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the file at ~/.carteira/config.toml.
type Config struct {
	DatabasePath string `toml:"database_path"`
	UserID       string `toml:"user_id"`
}

// homeDir is $CARTEIRA_HOME, or ~/.carteira.
func homeDir() string {
	if env := os.Getenv("CARTEIRA_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".carteira")
}

// DefaultConfigPath returns ~/.carteira/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), "config.toml")
}

// DefaultConfig points the database next to the config file.
func DefaultConfig() Config {
	return Config{DatabasePath: filepath.Join(homeDir(), "carteira.db")}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
