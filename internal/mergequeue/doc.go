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

// Package mergequeue answers the one question this tool exists for: which
// merge proposals target a branch, and how have they been reviewed.
//
// A proposal is returned as a flattened resource.Record. Its votes, each
// vote's comment and reviewer, and its source branch are expanded inline,
// and a "reviews" summary pairs each reviewer's display name with the vote
// recorded in their comment:
//
//	[{"reviewer": "Alice", "vote": "Approve"}, {"reviewer": "Bob", "vote": "Needs Fixing"}]
package mergequeue
