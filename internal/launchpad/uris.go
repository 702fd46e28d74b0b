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

package launchpad

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	mqerrors "github.com/sirseerhq/merge-queue/internal/errors"
)

// ServiceRoots maps deployment names to web service roots.
var ServiceRoots = map[string]string{
	"production": "https://api.launchpad.net/",
	"qastaging":  "https://api.qastaging.launchpad.net/",
	"staging":    "https://api.staging.launchpad.net/",
	"dogfood":    "https://api.dogfood.paddev.net/",
	"dev":        "https://api.launchpad.test/",
	"test_dev":   "http://api.launchpad.test:8085/",
}

// WebRoots maps deployment names to the browser-facing site, where OAuth
// tokens are requested and authorized.
var WebRoots = map[string]string{
	"production": "https://launchpad.net/",
	"qastaging":  "https://qastaging.launchpad.net/",
	"staging":    "https://staging.launchpad.net/",
	"dogfood":    "https://dogfood.paddev.net/",
	"dev":        "https://launchpad.test/",
	"test_dev":   "http://launchpad.test:8085/",
}

// InstanceNames returns the known deployment names, sorted.
func InstanceNames() []string {
	names := make([]string, 0, len(ServiceRoots))
	for name := range ServiceRoots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupServiceRoot resolves a deployment name or an explicit http(s) URL
// to a service root ending in "/".
func LookupServiceRoot(instance string) (string, error) {
	if root, ok := ServiceRoots[instance]; ok {
		return root, nil
	}
	u, err := url.Parse(instance)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", mqerrors.NewUserError(mqerrors.ErrInvalidInstance,
			"unknown Launchpad instance %q (want one of %s, or a service root URL)",
			instance, strings.Join(InstanceNames(), ", "))
	}
	return ensureSlash(u.String()), nil
}

// WebRootFor returns the web root paired with a service root. Known
// deployments use WebRoots; other roots drop the path and a leading "api."
// from the host name.
func WebRootFor(serviceRoot string) (string, error) {
	for name, root := range ServiceRoots {
		if root == serviceRoot {
			return WebRoots[name], nil
		}
	}
	u, err := url.Parse(serviceRoot)
	if err != nil {
		return "", fmt.Errorf("parse service root %q: %w", serviceRoot, err)
	}
	u.Path = "/"
	u.RawQuery = ""
	u.Host = strings.Replace(u.Host, "api.", "", 1)
	return u.String(), nil
}

// VersionedRoot joins a service root and a web service version, for
// example "https://api.launchpad.net/devel/".
func VersionedRoot(serviceRoot, apiVersion string) string {
	return ensureSlash(serviceRoot) + strings.Trim(apiVersion, "/") + "/"
}

func ensureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
