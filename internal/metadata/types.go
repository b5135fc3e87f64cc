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

// Package metadata types define the structures recorded for each collection
// run.
package metadata

import (
	"time"
)

// Outcome of processing one repository.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// RunMetadata is the record written at the end of a collection run.
type RunMetadata struct {
	SurveyVersion string     `json:"survey_version"`
	QueryVersion  string     `json:"query_version"`
	RunID         string     `json:"run_id"`
	Parameters    RunParams  `json:"parameters"`
	Results       RunResults `json:"results"`
}

// RunParams captures the configuration a run was started with.
type RunParams struct {
	Endpoint           string `json:"endpoint"`
	TargetRepositories int    `json:"target_repositories"`
	MinPullRequests    int    `json:"min_pull_requests"`
	PullRequestCap     int    `json:"pull_request_cap"`
	Workers            int    `json:"workers"`
	OutputDir          string `json:"output_dir"`
	DatasetFile        string `json:"dataset_file"`
}

// RunResults holds the counters of a completed run.
type RunResults struct {
	Candidates   int                `json:"candidates"`
	Written      int                `json:"written"`
	Skipped      int                `json:"skipped"`
	Failed       int                `json:"failed"`
	TotalRecords int                `json:"total_records"`
	APICallCount int                `json:"api_calls_made"`
	Duration     string             `json:"duration"`
	StartedAt    time.Time          `json:"started_at"`
	CompletedAt  time.Time          `json:"completed_at"`
	Repositories []RepositoryResult `json:"repositories"`
}

// RepositoryResult is the outcome for one repository.
type RepositoryResult struct {
	Repository string `json:"repository"`
	Outcome    string `json:"outcome"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
}
