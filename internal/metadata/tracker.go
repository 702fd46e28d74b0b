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
// Package metadata records statistics about a query run: how many merge
// proposals, votes and reviews were returned, how many web service requests
// it took and how long it ran. The record can be saved as JSON next to the
// query output for troubleshooting.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sirseerhq/merge-queue/internal/resource"
)

// Tracker collects statistics during a query. Create one per run.
type Tracker struct {
	mu           sync.Mutex
	startTime    time.Time
	apiCallCount int
	proposals    int
	votes        int
	reviews      int
	now          func() time.Time
}

// New creates a tracker and starts its clock.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
		now:       time.Now,
	}
}

// IncrementAPICall records one web service request. Its signature matches
// launchpad.WithRequestHook.
func (t *Tracker) IncrementAPICall(_, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount++
}

// APICalls returns the number of requests recorded so far.
func (t *Tracker) APICalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apiCallCount
}

// RecordProposals counts the proposals, their votes and their reviews.
func (t *Tracker) RecordProposals(proposals []resource.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.proposals += len(proposals)
	for _, p := range proposals {
		t.votes += len(p.Records("votes"))
		reviews, _ := p["reviews"].([]resource.Record)
		t.reviews += len(reviews)
	}
}

// GenerateMetadata builds the record for a finished query.
func (t *Tracker) GenerateMetadata(toolVersion string, params QueryParams) *QueryMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := t.now()
	return &QueryMetadata{
		ToolVersion: toolVersion,
		QueryID:     uuid.NewString(),
		Parameters:  params,
		Results: QueryResults{
			Proposals:    t.proposals,
			Votes:        t.votes,
			Reviews:      t.reviews,
			APICallCount: t.apiCallCount,
			Duration:     completedAt.Sub(t.startTime).String(),
			StartedAt:    t.startTime,
			CompletedAt:  completedAt,
		},
	}
}

// SaveMetadata writes metadata to path atomically through a temporary file
// and rename, creating the parent directory if needed.
func SaveMetadata(fs afero.Fs, metadata *QueryMetadata, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmpFile := path + ".tmp"
	file, err := fs.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = fs.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = fs.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := fs.Rename(tmpFile, path); err != nil {
		_ = fs.Remove(tmpFile)
		return fmt.Errorf("failed to save metadata file: %w", err)
	}

	return nil
}

// LoadMetadata reads a record written by SaveMetadata.
func LoadMetadata(fs afero.Fs, path string) (*QueryMetadata, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var metadata QueryMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &metadata, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON.
func WriteMetadataToWriter(metadata *QueryMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
