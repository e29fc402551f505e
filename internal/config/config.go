package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config carries the dataset-specific settings. Operator aliases and the
// placeholder topic live here rather than in code: both change with the
// dataset year.
type Config struct {
	DBPath           string   `toml:"db_path"`
	TranscriptColumn string   `toml:"transcript_column"`
	OperatorAliases  []string `toml:"operator_aliases"`
	DefaultTopic     string   `toml:"default_topic"`
	Source           string   `toml:"source"`
	Strict           bool     `toml:"strict"`
	Workers          int      `toml:"workers"`
}

// Load returns defaults overlaid with ~/.config/aicb/config.toml when it
// exists.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfg := defaults(home)

	cfgPath := filepath.Join(home, ".config", "aicb", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	return cfg, nil
}

// LoadFile loads an explicit config file over the defaults.
func LoadFile(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfg := defaults(home)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.DBPath = expandHome(cfg.DBPath, home)
	return cfg, nil
}

func defaults(home string) *Config {
	return &Config{
		DBPath:           filepath.Join(home, ".config", "aicb", "aicb.db"),
		TranscriptColumn: "gesprek anoniem",
		OperatorAliases:  []string{"Awel", "Awel wachtrij"},
		DefaultTopic:     "Conflict with friends",
		Source:           "awel_chat",
		Strict:           false,
		Workers:          1,
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
