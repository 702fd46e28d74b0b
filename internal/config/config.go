// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for merge-queue with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags (applied by the caller)
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a file and the environment. If
// configPath is provided, it loads from that specific file. Otherwise, it
// searches standard locations:
//   - .merge-queue.yaml (current directory)
//   - .merge-queue.yml (current directory)
//   - ~/.config/merge-queue/config.yaml
//   - ~/.config/merge-queue/config.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".merge-queue.yaml",
			".merge-queue.yml",
			filepath.Join(homeDir(), ".config", "merge-queue", "config.yaml"),
			filepath.Join(homeDir(), ".config", "merge-queue", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Launchpad.CredentialsDir = ExpandPath(cfg.Launchpad.CredentialsDir)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if instance := os.Getenv("MERGE_QUEUE_LP_INSTANCE"); instance != "" {
		cfg.Launchpad.Instance = instance
	}
	if version := os.Getenv("MERGE_QUEUE_API_VERSION"); version != "" {
		cfg.Launchpad.APIVersion = version
	}
	if dir := os.Getenv("MERGE_QUEUE_CREDENTIALS_DIR"); dir != "" {
		cfg.Launchpad.CredentialsDir = dir
	}
	if anonymous := os.Getenv("MERGE_QUEUE_ANONYMOUS"); anonymous != "" {
		cfg.Launchpad.Anonymous = parseBool(anonymous)
	}
	if pretty := os.Getenv("MERGE_QUEUE_PRETTY"); pretty != "" {
		cfg.Output.Pretty = parseBool(pretty)
	}
	if level := os.Getenv("MERGE_QUEUE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// ExpandPath expands ~ and environment variables in paths
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"none":  true,
}

// Validate checks if the configuration contains valid values. Instance names
// are checked later, when the service root is resolved.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Launchpad.Instance) == "" {
		return fmt.Errorf("launchpad instance cannot be empty")
	}
	if strings.TrimSpace(c.Launchpad.APIVersion) == "" {
		return fmt.Errorf("launchpad API version cannot be empty")
	}
	if strings.TrimSpace(c.Launchpad.AppName) == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Launchpad.CredentialsDir == "" && !c.Launchpad.Anonymous {
		return fmt.Errorf("credentials directory cannot be empty unless running anonymously")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("unknown log level %q (want debug, info, warn, error or none)", c.Log.Level)
	}
	return nil
}
