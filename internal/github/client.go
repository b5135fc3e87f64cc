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

import "context"

// QueryExecutor runs a single raw GraphQL request. Executor is the
// production implementation; MockExecutor scripts responses in tests.
type QueryExecutor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// RepositoryInspector looks up metadata for a single repository.
type RepositoryInspector interface {
	// GetRepositoryInfo returns the star count, archive flag and the number
	// of closed or merged pull requests of owner/repo.
	GetRepositoryInfo(ctx context.Context, owner, repo string) (*RepositoryInfo, error)
}
