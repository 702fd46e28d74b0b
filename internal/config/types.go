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

// Package config types define the configuration structures used throughout
// merge-queue. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

// Config represents the complete configuration for merge-queue.
type Config struct {
	Launchpad LaunchpadConfig `yaml:"launchpad"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// LaunchpadConfig selects the Launchpad deployment and where login
// credentials are cached between runs.
type LaunchpadConfig struct {
	// Instance is a named service root ("production", "staging", ...) or an
	// explicit service root URL.
	Instance string `yaml:"instance"`

	// APIVersion is the web service version appended to the service root.
	APIVersion string `yaml:"api_version"`

	// AppName identifies this program to Launchpad as the OAuth consumer key.
	AppName string `yaml:"app_name"`

	// CredentialsDir holds cached OAuth credentials.
	CredentialsDir string `yaml:"credentials_dir"`

	// Anonymous skips OAuth and reads only public data.
	Anonymous bool `yaml:"anonymous"`
}

// OutputConfig controls how the JSON document is rendered.
type OutputConfig struct {
	Pretty bool `yaml:"pretty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config matching launchpadlib's defaults for a
// desktop application talking to production Launchpad.
func DefaultConfig() *Config {
	return &Config{
		Launchpad: LaunchpadConfig{
			Instance:       "production",
			APIVersion:     "devel",
			AppName:        "get-merge-queue",
			CredentialsDir: "~/.launchpadlib/cache",
		},
		Output: OutputConfig{
			Pretty: false,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
