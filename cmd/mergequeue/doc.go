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

// Package main implements the merge-queue command-line interface.
// It lists the merge proposals targeting a Launchpad branch, with their
// votes, reviewers and source branch expanded inline, as one JSON document
// on standard output.
//
// Usage:
//
//	merge-queue [flags] <branch>
//
// Example:
//
//	merge-queue --pretty lp:~user/project/trunk
//	merge-queue --anonymous --lp-instance staging https://code.launchpad.net/~user/project/trunk
//
// The first authenticated run prints a Launchpad authorization URL and waits
// for the user to approve it; the resulting token is cached under
// --credentials-dir for later runs.
//
// Exit codes:
//   - 0: Success
//   - 1: Unexpected error
//   - 2: Invalid input, unknown branch, or a failure talking to Launchpad
package main
