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
// Package metadata types define the structures used for recording what a
// query asked for and what it found.
package metadata

import (
	"time"
)

// QueryMetadata is the record written for one run.
type QueryMetadata struct {
	ToolVersion string       `json:"tool_version"`
	QueryID     string       `json:"query_id"`
	Parameters  QueryParams  `json:"parameters"`
	Results     QueryResults `json:"results"`
}

// QueryParams captures the inputs of a query so a run can be reproduced.
type QueryParams struct {
	Branch      string `json:"branch"`
	Instance    string `json:"instance"`
	ServiceRoot string `json:"service_root"`
	APIVersion  string `json:"api_version"`
	Anonymous   bool   `json:"anonymous"`
	Pretty      bool   `json:"pretty"`
}

// QueryResults holds counts and timings of a completed query.
type QueryResults struct {
	Proposals    int       `json:"proposals"`
	Votes        int       `json:"votes"`
	Reviews      int       `json:"reviews"`
	APICallCount int       `json:"api_calls_made"`
	Duration     string    `json:"query_duration"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}
