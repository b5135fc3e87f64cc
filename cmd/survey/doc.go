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

// Package main implements the sirseer-survey command-line interface.
// This tool selects the most starred public GitHub repositories, collects
// their closed and merged pull requests through the GraphQL API, and writes
// a CSV dataset of reviewed pull requests for analysis.
//
// The CLI supports:
//   - collect: search, fetch and write per-repository datasets, then combine
//   - combine: rebuild the aggregate dataset from existing files
//   - summarize: medians by status and Spearman correlations
//   - inspect: check whether given repositories qualify
//   - export: load the aggregate dataset into SQLite
//   - status: show the outcome of the last run
//
// Usage:
//
//	survey collect [--reuse-candidates]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	survey collect && survey summarize --correlations
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Configuration or authentication error
//   - 3: Network error
package main
