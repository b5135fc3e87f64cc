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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/collector"
	"github.com/sirseerhq/sirseer-survey/internal/config"
	"github.com/sirseerhq/sirseer-survey/internal/github"
	"github.com/sirseerhq/sirseer-survey/internal/metadata"
	"github.com/sirseerhq/sirseer-survey/internal/output"
	"github.com/sirseerhq/sirseer-survey/internal/state"
	"github.com/sirseerhq/sirseer-survey/pkg/version"
)

func newCollectCommand(opts *rootOptions) *cobra.Command {
	var reuseCandidates bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect pull request records from the top starred repositories",
		Long: `Search the most starred public repositories, keep those with enough
closed and merged pull requests, and write one CSV dataset per repository
followed by the aggregate dataset.

Repositories whose dataset file already exists are skipped, so an
interrupted run can simply be started again.

Authentication is required via GitHub token:
  - Set GITHUB_TOKEN in the environment or in a .env file
  - Or point github.token_env in the configuration at another variable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return runCollect(cmd.Context(), cfg, log, cmd.OutOrStdout(), reuseCandidates)
		},
	}

	cmd.Flags().BoolVar(&reuseCandidates, "reuse-candidates", false, "Reuse the repository selection saved by a previous run instead of searching again")

	return cmd
}

// runCollect executes the full pipeline: select, process, combine, record.
func runCollect(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, out io.Writer, reuseCandidates bool) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	tracker := metadata.New()
	log = log.With("run_id", tracker.RunID())

	exec, err := github.NewExecutor(github.ExecutorOptions{
		Endpoint: cfg.GitHub.GraphQLEndpoint,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.RequestTimeout,
		Policy:   github.NewRetryPolicy(cfg.Retry),
		Observer: tracker,
	}, log)
	if err != nil {
		return err
	}
	fetcher := github.NewFetcher(exec, github.FetcherOptions{
		RepositoryPause:  cfg.Collect.RepositoryPause,
		PullRequestPause: cfg.Collect.PullRequestPause,
	}, log)

	candidates, err := selectCandidates(ctx, cfg, fetcher, tracker.RunID(), reuseCandidates, log)
	if err != nil {
		return err
	}
	tracker.SetCandidates(len(candidates))

	if err := os.MkdirAll(cfg.Collect.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	worker := collector.NewWorker(fetcher, collector.WorkerOptions{
		OutputDir: cfg.Collect.OutputDir,
		Limit:     cfg.Collect.EffectiveCap(),
		Recorder:  tracker,
	}, log)
	results, err := collector.NewPool(cfg.Collect.Workers, worker, log).Run(ctx, candidates)
	if err != nil {
		return fmt.Errorf("collection interrupted: %w", err)
	}

	combined, err := output.Combine(cfg.Collect.OutputDir, cfg.Collect.DatasetFile, log)
	if err != nil {
		return fmt.Errorf("failed to write aggregate dataset: %w", err)
	}

	meta := tracker.GenerateMetadata(version.Version, metadata.RunParams{
		Endpoint:           cfg.GitHub.GraphQLEndpoint,
		TargetRepositories: cfg.Collect.TargetRepositories,
		MinPullRequests:    cfg.Collect.MinPullRequests,
		PullRequestCap:     cfg.Collect.EffectiveCap(),
		Workers:            cfg.Collect.Workers,
		OutputDir:          cfg.Collect.OutputDir,
		DatasetFile:        cfg.Collect.DatasetFile,
	})
	if path, err := metadata.SaveMetadata(meta, cfg.Collect.MetadataDir); err != nil {
		log.Warnw("failed to save run metadata", "error", err)
	} else {
		log.Infow("run metadata saved", "path", path)
	}

	fmt.Fprintf(out, "Saved %d pull requests from %d repositories (%d skipped, %d failed) in %s\n",
		collector.Total(results), meta.Results.Written, meta.Results.Skipped, meta.Results.Failed, meta.Results.Duration)
	if combined.Records > 0 {
		fmt.Fprintf(out, "Aggregate dataset: %s (%d records from %d files)\n",
			cfg.Collect.DatasetFile, combined.Records, combined.Files-combined.Skipped)
	} else {
		fmt.Fprintln(out, "No pull requests qualified; aggregate dataset not written")
	}
	return nil
}

// selectCandidates returns the repositories to process, either from the
// saved selection or from a fresh search. A fresh search is always saved.
func selectCandidates(ctx context.Context, cfg *config.Config, fetcher *github.Fetcher, runID string, reuse bool, log *zap.SugaredLogger) ([]github.RepositoryCandidate, error) {
	stateFile := state.GetStateFilePath(cfg.Collect.MetadataDir)

	if reuse {
		saved, err := state.LoadState(stateFile)
		switch {
		case err == nil && saved.Matches(cfg.Collect.TargetRepositories, cfg.Collect.MinPullRequests):
			log.Infow("reusing saved repository selection",
				"candidates", len(saved.Candidates), "fetched_at", saved.FetchedAt.Format(time.RFC3339))
			return fromState(saved), nil
		case err == nil:
			log.Infow("saved repository selection has different parameters; searching again")
		case errors.Is(err, state.ErrNoState):
			log.Infow("no saved repository selection; searching")
		default:
			log.Warnw("ignoring unreadable repository selection", "error", err)
		}
	}

	candidates, err := fetcher.FetchTopRepositories(ctx, cfg.Collect.TargetRepositories, cfg.Collect.MinPullRequests)
	if err != nil {
		return nil, fmt.Errorf("repository search failed: %w", err)
	}

	if err := state.SaveState(toState(candidates, cfg, runID), stateFile); err != nil {
		log.Warnw("failed to save repository selection", "error", err)
	}
	return candidates, nil
}

func toState(candidates []github.RepositoryCandidate, cfg *config.Config, runID string) *state.CandidateState {
	s := &state.CandidateState{
		RunID:              runID,
		TargetRepositories: cfg.Collect.TargetRepositories,
		MinPullRequests:    cfg.Collect.MinPullRequests,
		FetchedAt:          time.Now().UTC(),
		Candidates:         make([]state.Candidate, 0, len(candidates)),
	}
	for _, c := range candidates {
		s.Candidates = append(s.Candidates, state.Candidate{Owner: c.Owner, Name: c.Name, PullRequests: c.PullRequestCount})
	}
	return s
}

func fromState(s *state.CandidateState) []github.RepositoryCandidate {
	out := make([]github.RepositoryCandidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		out = append(out, github.RepositoryCandidate{Owner: c.Owner, Name: c.Name, PullRequestCount: c.PullRequests})
	}
	return out
}
