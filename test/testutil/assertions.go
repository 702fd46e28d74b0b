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

package testutil

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// AssertProposalsOutput decodes stdout as a JSON array of merge proposals,
// checks each has the flattened shape and returns them.
func AssertProposalsOutput(t *testing.T, stdout string, expectedCount int) []map[string]any {
	t.Helper()

	if !strings.HasSuffix(stdout, "\n") {
		t.Errorf("Expected output to end with a newline, got: %q", stdout)
	}

	var proposals []map[string]any
	if err := json.Unmarshal([]byte(stdout), &proposals); err != nil {
		t.Fatalf("Output is not a JSON array: %v\nOutput: %s", err, stdout)
	}

	for i, p := range proposals {
		for _, field := range []string{"self_link", "votes", "source_branch", "reviews"} {
			if _, ok := p[field]; !ok {
				t.Errorf("Proposal %d: missing field %q", i, field)
			}
		}
		for _, raw := range []string{"votes_collection_link", "source_branch_link"} {
			if _, ok := p[raw]; ok {
				t.Errorf("Proposal %d: unexpanded reference %q left in output", i, raw)
			}
		}
	}

	if len(proposals) != expectedCount {
		t.Errorf("Expected %d proposals, got %d", expectedCount, len(proposals))
	}
	return proposals
}

// AssertSingleErrorLine checks stderr holds exactly one "ERROR: " line
// containing expected.
func AssertSingleErrorLine(t *testing.T, stderr, expected string) {
	t.Helper()

	lines := strings.Split(strings.TrimRight(stderr, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected a single stderr line, got %d:\n%s", len(lines), stderr)
	}
	if !strings.HasPrefix(lines[0], "ERROR: ") {
		t.Errorf("Expected stderr to start with %q, got: %s", "ERROR: ", lines[0])
	}
	if !strings.Contains(lines[0], expected) {
		t.Errorf("Expected error to contain %q, got: %s", expected, lines[0])
	}
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertFilePermissions checks file has expected permissions
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}

	mode := info.Mode().Perm()
	if mode != expectedMode {
		t.Errorf("Expected file mode %v, got %v", expectedMode, mode)
	}
}
