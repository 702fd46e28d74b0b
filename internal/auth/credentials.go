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

package auth

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
	"github.com/spf13/afero"
)

// credentialsSection is the INI section launchpadlib stores tokens under.
const credentialsSection = "1"

// Credentials are the OAuth consumer and access tokens for one application.
type Credentials struct {
	ConsumerKey    string `ini:"consumer_key"`
	ConsumerSecret string `ini:"consumer_secret"`
	AccessToken    string `ini:"access_token"`
	AccessSecret   string `ini:"access_secret"`
}

// Authorized reports whether the credentials carry an access token.
func (c *Credentials) Authorized() bool {
	return c != nil && c.AccessToken != ""
}

// Store reads and writes cached credentials below a directory:
// <dir>/<service host>/credentials/<app name>.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a Store rooted at dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the credential file for an application on a service root.
func (s *Store) Path(serviceRoot, appName string) (string, error) {
	u, err := url.Parse(serviceRoot)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid service root %q", serviceRoot)
	}
	return filepath.Join(s.dir, u.Host, "credentials", appName), nil
}

// Load returns the cached credentials, or (nil, nil) if none are cached.
func (s *Store) Load(serviceRoot, appName string) (*Credentials, error) {
	path, err := s.Path(serviceRoot, appName)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s is corrupted: %w", path, err)
	}
	if !file.HasSection(credentialsSection) {
		return nil, fmt.Errorf("credentials file %s has no [%s] section", path, credentialsSection)
	}

	creds := &Credentials{}
	if err := file.Section(credentialsSection).MapTo(creds); err != nil {
		return nil, fmt.Errorf("credentials file %s is corrupted: %w", path, err)
	}
	return creds, nil
}

// Save atomically writes credentials, readable by the owner only.
func (s *Store) Save(serviceRoot, appName string, creds *Credentials) error {
	path, err := s.Path(serviceRoot, appName)
	if err != nil {
		return err
	}

	file := ini.Empty()
	section, err := file.NewSection(credentialsSection)
	if err != nil {
		return fmt.Errorf("failed to build credentials: %w", err)
	}
	if err := section.ReflectFrom(creds); err != nil {
		return fmt.Errorf("failed to build credentials: %w", err)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := afero.WriteFile(s.fs, tempFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temporary credentials file: %w", err)
	}
	if err := s.fs.Rename(tempFile, path); err != nil {
		_ = s.fs.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
