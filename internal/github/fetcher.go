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

package github

import (
	"time"

	"go.uber.org/zap"
)

// FetcherOptions holds the pauses between page requests.
type FetcherOptions struct {
	RepositoryPause  time.Duration
	PullRequestPause time.Duration

	// Sleep replaces the pause implementation. Defaults to a context-aware timer.
	Sleep SleepFunc
}

// Fetcher walks paginated connections through a QueryExecutor.
type Fetcher struct {
	exec             QueryExecutor
	repositoryPause  time.Duration
	pullRequestPause time.Duration
	sleep            SleepFunc
	log              *zap.SugaredLogger
}

// NewFetcher creates a Fetcher on top of exec.
func NewFetcher(exec QueryExecutor, opts FetcherOptions, log *zap.SugaredLogger) *Fetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Fetcher{
		exec:             exec,
		repositoryPause:  opts.RepositoryPause,
		pullRequestPause: opts.PullRequestPause,
		sleep:            sleep,
		log:              log.Named("fetcher"),
	}
}
