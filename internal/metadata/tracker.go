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

// Package metadata tracks and persists information about collection runs:
// how many API attempts were made and what happened to each repository.
// Metadata is saved as one JSON file per run in the metadata directory.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/sirseer-survey/internal/output"
)

// QueryVersion identifies the query documents used to collect the data.
const QueryVersion = "graphql-search-stars-v1"

// Tracker collects statistics during a run. It is safe for concurrent use by
// the workers and the executor.
type Tracker struct {
	mu           sync.Mutex
	runID        string
	startTime    time.Time
	apiCallCount int
	candidates   int
	repositories []RepositoryResult
}

// New creates a tracker with a fresh run id and the current time.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
	}
}

// RunID returns the identifier of the run.
func (t *Tracker) RunID() string {
	return t.runID
}

// IncrementAPICall records one HTTP attempt.
func (t *Tracker) IncrementAPICall() {
	t.mu.Lock()
	t.apiCallCount++
	t.mu.Unlock()
}

// APICalls returns the number of attempts recorded so far.
func (t *Tracker) APICalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apiCallCount
}

// SetCandidates records how many repositories were selected.
func (t *Tracker) SetCandidates(n int) {
	t.mu.Lock()
	t.candidates = n
	t.mu.Unlock()
}

// RecordRepository records the outcome for one repository.
func (t *Tracker) RecordRepository(res RepositoryResult) {
	t.mu.Lock()
	t.repositories = append(t.repositories, res)
	t.mu.Unlock()
}

// GenerateMetadata builds the run record. Repositories are sorted by name.
func (t *Tracker) GenerateMetadata(surveyVersion string, params RunParams) *RunMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	repos := make([]RepositoryResult, len(t.repositories))
	copy(repos, t.repositories)
	sort.Slice(repos, func(i, j int) bool { return repos[i].Repository < repos[j].Repository })

	results := RunResults{
		Candidates:   t.candidates,
		APICallCount: t.apiCallCount,
		Duration:     completedAt.Sub(t.startTime).String(),
		StartedAt:    t.startTime,
		CompletedAt:  completedAt,
		Repositories: repos,
	}
	for _, r := range repos {
		switch r.Outcome {
		case OutcomeWritten:
			results.Written++
		case OutcomeSkipped:
			results.Skipped++
		case OutcomeFailed:
			results.Failed++
		}
		results.TotalRecords += r.Records
	}

	return &RunMetadata{
		SurveyVersion: surveyVersion,
		QueryVersion:  QueryVersion,
		RunID:         t.runID,
		Parameters:    params,
		Results:       results,
	}
}

// FileName returns the file name metadata for runID is saved under.
func FileName(runID string) string {
	return "run-" + runID + ".json"
}

// SaveMetadata atomically writes metadata to dir and returns the file path.
func SaveMetadata(metadata *RunMetadata, dir string) (string, error) {
	path := filepath.Join(dir, FileName(metadata.RunID))
	err := output.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		if err := WriteMetadataToWriter(metadata, w); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// LoadLatestMetadata loads the most recently completed run from dir.
// Returns nil if no metadata exists.
func LoadLatestMetadata(dir string) (*RunMetadata, error) {
	files, err := filepath.Glob(filepath.Join(dir, "run-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	var latest *RunMetadata
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var m RunMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		if latest == nil || m.Results.CompletedAt.After(latest.Results.CompletedAt) {
			latest = &m
		}
	}
	return latest, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
