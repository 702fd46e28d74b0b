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

// Package launchpad provides a small read-only client for the Launchpad web
// service. Every resource comes back as a JSON representation in which
// linked resources appear as URLs ("source_branch_link") and linked
// collections as collection URLs ("votes_collection_link"). Entry exposes
// such a representation as a resource.Object so it can be flattened.
//
// The package includes:
//   - Service root lookup for the public deployments (production, staging, ...)
//   - A Client for entries, collections and the branches.getByUrl operation
//   - An HTTP transport adding identification headers and response limits
//
// Basic usage:
//
//	client, err := launchpad.NewClient(
//	    launchpad.VersionedRoot(launchpad.ServiceRoots["production"], "devel"),
//	    launchpad.NewHTTPClient(session.Transport(launchpad.DefaultTransport())),
//	)
//	branch, err := client.BranchByURL(ctx, "lp:~user/project/branch")
//	if branch == nil {
//	    // No such branch
//	}
package launchpad
