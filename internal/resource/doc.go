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

// Package resource turns remote objects into plain records suitable for JSON
// serialization. A remote object exposes a flat representation in which
// linked resources appear only as reference tokens (URLs). Flatten walks a
// caller-supplied Expansion and replaces the tokens it names with the
// fetched, recursively flattened resources.
//
// An Expansion is a static tree, so flattening always terminates even when
// the remote object graph contains back-references:
//
//	exp := resource.Expansion{
//	    "votes": resource.Many(resource.Expansion{
//	        "comment":  resource.One(nil),
//	        "reviewer": resource.One(nil),
//	    }),
//	    "source_branch": resource.One(nil),
//	}
//	record, err := resource.Flatten(ctx, proposal, exp)
//
// Attributes missing from the Expansion pass through exactly as the server
// provided them.
package resource
