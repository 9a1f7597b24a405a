// Package config loads the hoist host configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration.
type Config struct {
	// PluginDirs lists the directories scanned for plugin libraries.
	PluginDirs []string `yaml:"plugin_dirs"`
	// Recursive scans subdirectories too.
	Recursive bool `yaml:"recursive"`
	// TryToContinue keeps loading other plugins when one fails its
	// dependency check.
	TryToContinue *bool `yaml:"try_to_continue"`
	// MainPlugin names the plugin whose Main entry point runs after
	// everything is loaded. Optional.
	MainPlugin string `yaml:"main_plugin"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	yes := true
	return Config{
		PluginDirs:    []string{"./plugins"},
		TryToContinue: &yes,
		Log:           LogConfig{Level: "info"},
	}
}

// Load reads path into a Config on top of Defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.PluginDirs) == 0 {
		cfg.PluginDirs = Defaults().PluginDirs
	}
	if cfg.TryToContinue == nil {
		cfg.TryToContinue = Defaults().TryToContinue
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = Defaults().Log.Level
	}
	return cfg, nil
}
