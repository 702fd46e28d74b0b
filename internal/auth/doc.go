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

// Package auth acquires a Launchpad session.
//
// Anonymous sessions identify the application by consumer key only and can
// read public data. Authenticated sessions use OAuth 1.0 with the PLAINTEXT
// signature method, the desktop flow Launchpad supports for command-line
// tools: a request token is obtained, the user approves it in a browser, and
// it is exchanged for an access token. Access tokens are cached on disk in
// launchpadlib's credential file format so later runs skip the browser step.
package auth
