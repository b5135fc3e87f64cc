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

// Page sizes fixed by the query documents below.
const (
	RepositoryPageSize  = 100
	PullRequestPageSize = 40
)

// TopRepositoriesQuery pages through public repositories ordered by stars,
// selecting the closed+merged pull request count of each.
const TopRepositoriesQuery = `query ($afterCursor: String) {
  search(query: "sort:stars-desc is:public", type: REPOSITORY, first: 100, after: $afterCursor) {
    nodes {
      ... on Repository {
        name
        owner { login }
        pullRequests(states: [MERGED, CLOSED]) { totalCount }
      }
    }
    pageInfo { endCursor hasNextPage }
  }
}`

// PullRequestsQuery pages through the merged and closed pull requests of one
// repository, newest first.
const PullRequestsQuery = `query ($owner: String!, $name: String!, $afterCursor: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(first: 40, after: $afterCursor, states: [MERGED, CLOSED], orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes {
        state
        createdAt
        closedAt
        mergedAt
        additions
        deletions
        changedFiles
        bodyText
        participants(first: 1) { totalCount }
        comments(first: 1) { totalCount }
        reviews(first: 1) { totalCount }
      }
      pageInfo { endCursor hasNextPage }
    }
  }
}`
