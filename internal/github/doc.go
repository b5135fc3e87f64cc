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

// Package github talks to GitHub's GraphQL API for the survey. It has two
// clients:
//
//   - Executor posts raw query documents and returns the undecoded data
//     payload, retrying transport failures and gateway statuses (502, 504)
//     with exponential backoff and jitter. Fetcher builds the paginated
//     repository search and pull request walks on top of it.
//   - GraphQLClient runs typed queries through shurcooL/graphql for single
//     repository lookups, sharing the same RetryPolicy via retryTransport.
//
// Basic usage:
//
//	exec, err := github.NewExecutor(github.ExecutorOptions{
//	    Endpoint: "https://api.github.com/graphql",
//	    Token:    token,
//	    Policy:   github.DefaultRetryPolicy(),
//	}, log)
//	if err != nil {
//	    // Handle error
//	}
//	fetcher := github.NewFetcher(exec, github.FetcherOptions{PullRequestPause: 500 * time.Millisecond}, log)
//	prs, err := fetcher.FetchPullRequests(ctx, "golang", "go", 200)
package github
