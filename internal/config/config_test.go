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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Launchpad.Instance != "production" {
		t.Errorf("Instance = %s, want production", cfg.Launchpad.Instance)
	}
	if cfg.Launchpad.APIVersion != "devel" {
		t.Errorf("APIVersion = %s, want devel", cfg.Launchpad.APIVersion)
	}
	if cfg.Launchpad.AppName != "get-merge-queue" {
		t.Errorf("AppName = %s, want get-merge-queue", cfg.Launchpad.AppName)
	}
	if cfg.Launchpad.CredentialsDir != "~/.launchpadlib/cache" {
		t.Errorf("CredentialsDir = %s, want ~/.launchpadlib/cache", cfg.Launchpad.CredentialsDir)
	}
	if cfg.Launchpad.Anonymous {
		t.Error("Anonymous = true, want false")
	}
	if cfg.Output.Pretty {
		t.Error("Pretty = true, want false")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %s, want warn", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
launchpad:
  instance: staging
  api_version: "1.0"
  app_name: landing-bot
  credentials_dir: /custom/creds
  anonymous: true

output:
  pretty: true

log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Launchpad.Instance != "staging" {
		t.Errorf("Instance = %s, want staging", cfg.Launchpad.Instance)
	}
	if cfg.Launchpad.APIVersion != "1.0" {
		t.Errorf("APIVersion = %s, want 1.0", cfg.Launchpad.APIVersion)
	}
	if cfg.Launchpad.AppName != "landing-bot" {
		t.Errorf("AppName = %s, want landing-bot", cfg.Launchpad.AppName)
	}
	if cfg.Launchpad.CredentialsDir != "/custom/creds" {
		t.Errorf("CredentialsDir = %s, want /custom/creds", cfg.Launchpad.CredentialsDir)
	}
	if !cfg.Launchpad.Anonymous {
		t.Error("Anonymous = false, want true")
	}
	if !cfg.Output.Pretty {
		t.Error("Pretty = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %s, want debug", cfg.Log.Level)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadConfig succeeded for a missing explicit file")
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("launchpad: [not, a, map"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	_, err := LoadConfig(configPath)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("LoadConfig error = %v, want parse failure", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MERGE_QUEUE_LP_INSTANCE", "qastaging")
	t.Setenv("MERGE_QUEUE_API_VERSION", "beta")
	t.Setenv("MERGE_QUEUE_CREDENTIALS_DIR", "/env/creds")
	t.Setenv("MERGE_QUEUE_ANONYMOUS", "yes")
	t.Setenv("MERGE_QUEUE_PRETTY", "on")
	t.Setenv("MERGE_QUEUE_LOG_LEVEL", "info")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Launchpad.Instance != "qastaging" {
		t.Errorf("Instance = %s, want qastaging", cfg.Launchpad.Instance)
	}
	if cfg.Launchpad.APIVersion != "beta" {
		t.Errorf("APIVersion = %s, want beta", cfg.Launchpad.APIVersion)
	}
	if cfg.Launchpad.CredentialsDir != "/env/creds" {
		t.Errorf("CredentialsDir = %s, want /env/creds", cfg.Launchpad.CredentialsDir)
	}
	if !cfg.Launchpad.Anonymous {
		t.Error("Anonymous = false, want true")
	}
	if !cfg.Output.Pretty {
		t.Error("Pretty = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %s, want info", cfg.Log.Level)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("launchpad:\n  instance: staging\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("MERGE_QUEUE_LP_INSTANCE", "dogfood")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Launchpad.Instance != "dogfood" {
		t.Errorf("Instance = %s, want dogfood (env beats file)", cfg.Launchpad.Instance)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Launchpad.APIVersion != "devel" {
		t.Errorf("APIVersion = %s, want devel", cfg.Launchpad.APIVersion)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "empty instance",
			mutate:  func(c *Config) { c.Launchpad.Instance = " " },
			wantErr: "instance cannot be empty",
		},
		{
			name:    "empty api version",
			mutate:  func(c *Config) { c.Launchpad.APIVersion = "" },
			wantErr: "API version cannot be empty",
		},
		{
			name:    "empty app name",
			mutate:  func(c *Config) { c.Launchpad.AppName = "" },
			wantErr: "application name cannot be empty",
		},
		{
			name:    "no credentials dir",
			mutate:  func(c *Config) { c.Launchpad.CredentialsDir = "" },
			wantErr: "credentials directory cannot be empty",
		},
		{
			name: "no credentials dir when anonymous",
			mutate: func(c *Config) {
				c.Launchpad.CredentialsDir = ""
				c.Launchpad.Anonymous = true
			},
			wantErr: "",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "chatty" },
			wantErr: "unknown log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() error = nil, want %s", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Validate() error = %v, want containing %s", err, tt.wantErr)
				}
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"1", true},
		{"on", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"random", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.input); got != tt.want {
			t.Errorf("parseBool(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
