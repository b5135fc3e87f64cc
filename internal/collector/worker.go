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

// Package collector turns selected repositories into per-repository dataset
// files using a fixed pool of workers.
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
	"github.com/sirseerhq/sirseer-survey/internal/github"
	"github.com/sirseerhq/sirseer-survey/internal/metadata"
	"github.com/sirseerhq/sirseer-survey/internal/output"
)

// PullRequestFetcher fetches the pull requests of one repository.
type PullRequestFetcher interface {
	FetchPullRequests(ctx context.Context, owner, name string, limit int) ([]*github.PullRequestNode, error)
}

// Recorder receives the outcome of every repository.
type Recorder interface {
	RecordRepository(res metadata.RepositoryResult)
}

// Processor handles one repository and returns the number of records saved.
type Processor interface {
	Process(ctx context.Context, c github.RepositoryCandidate) int
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	OutputDir string
	// Limit caps pull requests per repository; <= 0 fetches all of them.
	Limit    int
	Recorder Recorder
}

// Worker processes a repository end to end: fetch, derive, write.
type Worker struct {
	fetcher   PullRequestFetcher
	outputDir string
	limit     int
	recorder  Recorder
	log       *zap.SugaredLogger
}

// NewWorker creates a Worker.
func NewWorker(fetcher PullRequestFetcher, opts WorkerOptions, log *zap.SugaredLogger) *Worker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Worker{
		fetcher:   fetcher,
		outputDir: opts.OutputDir,
		limit:     opts.Limit,
		recorder:  opts.Recorder,
		log:       log.Named("worker"),
	}
}

// Process implements Processor. A repository whose dataset file already
// exists is skipped without touching the network. Every failure, including
// a panic, is logged and reported as zero records so sibling repositories
// keep going.
func (w *Worker) Process(ctx context.Context, c github.RepositoryCandidate) (saved int) {
	repo := c.FullName()
	log := w.log.With("repository", repo)

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic while processing repository", "panic", r)
			w.record(metadata.RepositoryResult{Repository: repo, Outcome: metadata.OutcomeFailed, Error: fmt.Sprint(r)})
			saved = 0
		}
	}()

	path := output.ArtifactPath(w.outputDir, c.Owner, c.Name)
	if output.ArtifactExists(path) {
		log.Infow("dataset file exists, skipping", "file", path)
		w.record(metadata.RepositoryResult{Repository: repo, Outcome: metadata.OutcomeSkipped})
		return 0
	}

	n, err := w.process(ctx, c, path)
	if err != nil {
		log.Errorw("failed to process repository", "error", err)
		w.record(metadata.RepositoryResult{Repository: repo, Outcome: metadata.OutcomeFailed, Error: err.Error()})
		return 0
	}

	log.Infow("saved pull requests", "records", n, "file", path)
	w.record(metadata.RepositoryResult{Repository: repo, Outcome: metadata.OutcomeWritten, Records: n})
	return n
}

func (w *Worker) process(ctx context.Context, c github.RepositoryCandidate, path string) (int, error) {
	nodes, err := w.fetcher.FetchPullRequests(ctx, c.Owner, c.Name, w.limit)
	if err != nil {
		return 0, err
	}

	records, err := dataset.DeriveAll(c.FullName(), nodes)
	if err != nil {
		return 0, err
	}

	if err := output.WriteArtifact(path, records); err != nil {
		return 0, fmt.Errorf("write dataset file: %w", err)
	}
	return len(records), nil
}

func (w *Worker) record(res metadata.RepositoryResult) {
	if w.recorder != nil {
		w.recorder.RecordRepository(res)
	}
}
