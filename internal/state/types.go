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

package state

import (
	"time"
)

// CurrentVersion is the current state schema version.
// Increment this when making breaking changes to the CandidateState structure.
const CurrentVersion = 1

// CandidateState is the persisted outcome of the repository selection stage.
type CandidateState struct {
	// Version indicates the schema version of this state file.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the state content (excluding this field).
	Checksum string `json:"checksum"`

	// RunID is the run that performed the search.
	RunID string `json:"run_id"`

	// TargetRepositories and MinPullRequests are the selection parameters.
	// A state is only reused when both match the current configuration.
	TargetRepositories int `json:"target_repositories"`
	MinPullRequests    int `json:"min_pull_requests"`

	FetchedAt  time.Time   `json:"fetched_at"`
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one selected repository.
type Candidate struct {
	Owner        string `json:"owner"`
	Name         string `json:"name"`
	PullRequests int    `json:"pull_requests"`
}

// Matches reports whether the state was produced with the given selection
// parameters.
func (s *CandidateState) Matches(target, minPullRequests int) bool {
	return s.TargetRepositories == target && s.MinPullRequests == minPullRequests
}
