// Package config resolves the data directory and reads optional settings
// stored alongside the task file.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	YAMLFile = "config.yaml"
	TOMLFile = "config.toml"

	DefaultLogLevel = "warn"
)

// Config holds everything a command needs before touching the task file.
type Config struct {
	Dir      string `yaml:"-" toml:"-"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
	Indent   bool   `yaml:"indent" toml:"indent"`
	// Level is LogLevel parsed by Load.
	Level log.Level `yaml:"-" toml:"-"`
	// Source is the settings file that was read, empty when defaults apply.
	Source string `yaml:"-" toml:"-"`
}

// DefaultDir returns the per-user data directory for goos.
func DefaultDir(goos, username, home string) string {
	if goos == "windows" {
		return strings.TrimRight(home, `\`) + `\AppData\Local\tdr`
	}
	return "/home/" + username + "/.tdr"
}

// ResolveDir returns dirFlag when set, otherwise the default directory for
// the current user.
func ResolveDir(dirFlag string) (string, error) {
	if d := strings.TrimSpace(dirFlag); d != "" {
		return expandHome(d), nil
	}
	var username string
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		if home == "" {
			return "", errors.New("cannot determine home directory")
		}
	} else if username == "" {
		return "", errors.New("cannot determine user name")
	}
	return DefaultDir(runtime.GOOS, username, home), nil
}

func Default() Config {
	return Config{LogLevel: DefaultLogLevel, Level: log.WarnLevel}
}

// Load reads settings from dir. config.yaml takes precedence over
// config.toml; with neither present the defaults are returned.
func Load(dir string) (Config, error) {
	cfg := Default()
	cfg.Dir = dir

	yamlPath := filepath.Join(dir, YAMLFile)
	if b, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		cfg.Source = yamlPath
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	} else {
		tomlPath := filepath.Join(dir, TOMLFile)
		if _, err := toml.DecodeFile(tomlPath, &cfg); err == nil {
			cfg.Source = tomlPath
		} else if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("parse %s: %w", tomlPath, err)
		}
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil {
		return cfg, fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	cfg.Level = lvl
	return cfg, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
