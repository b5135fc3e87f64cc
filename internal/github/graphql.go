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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/graphql"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
	"github.com/sirseerhq/sirseer-survey/internal/giterror"
)

// GraphQLClient runs typed queries through shurcooL/graphql. Requests go
// through the retry transport and then the auth transport.
type GraphQLClient struct {
	client    *graphql.Client
	inspector giterror.Inspector
}

// NewGraphQLClient creates a client for endpoint. timeout bounds each
// attempt from sending the request to closing the response body.
func NewGraphQLClient(token, endpoint string, policy RetryPolicy, timeout time.Duration) *GraphQLClient {
	return newGraphQLClient(token, endpoint, policy, timeout, newPooledTransport())
}

func newGraphQLClient(token, endpoint string, policy RetryPolicy, timeout time.Duration, base http.RoundTripper) *GraphQLClient {
	httpClient := &http.Client{
		Transport: newRetryTransport(newAuthTransport(token, base), policy, timeout),
	}
	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		inspector: giterror.NewInspector(),
	}
}

// GetRepositoryInfo implements RepositoryInspector.
func (c *GraphQLClient) GetRepositoryInfo(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	var query struct {
		Repository struct {
			NameWithOwner  graphql.String
			StargazerCount graphql.Int
			IsArchived     graphql.Boolean
			PullRequests   struct {
				TotalCount graphql.Int
			} `graphql:"pullRequests(states: [MERGED, CLOSED])"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"repo":  graphql.String(repo),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	return &RepositoryInfo{
		NameWithOwner:     string(query.Repository.NameWithOwner),
		Stars:             int(query.Repository.StargazerCount),
		IsArchived:        bool(query.Repository.IsArchived),
		TotalPullRequests: int(query.Repository.PullRequests.TotalCount),
	}, nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, owner, repo string) error {
	if err == nil {
		return nil
	}

	// Rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", surveyerrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Check the token environment variable: %w", surveyerrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("repository '%s/%s' not found. Please check the repository name and your access permissions: %w", owner, repo, surveyerrors.ErrRepoNotFound)
	}

	if errors.Is(err, surveyerrors.ErrRetriesExhausted) || c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API: %v: %w", err, surveyerrors.ErrNetworkFailure)
	}

	return fmt.Errorf("failed to query repository %s/%s: %w", owner, repo, err)
}
