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
	"encoding/json"
	"fmt"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
)

type searchData struct {
	Search *struct {
		Nodes    []json.RawMessage `json:"nodes"`
		PageInfo *PageInfo         `json:"pageInfo"`
	} `json:"search"`
}

type repositoryNode struct {
	Name  string `json:"name"`
	Owner *struct {
		Login string `json:"login"`
	} `json:"owner"`
	PullRequests *TotalCount `json:"pullRequests"`
}

// FetchTopRepositories pages through the stars-ordered search until target
// repositories have been requested or the server runs out of pages, and
// returns those with at least minPullRequests closed or merged pull
// requests. Any executor failure is returned as is.
func (f *Fetcher) FetchTopRepositories(ctx context.Context, target, minPullRequests int) ([]RepositoryCandidate, error) {
	pages := (target + RepositoryPageSize - 1) / RepositoryPageSize

	var nodes []json.RawMessage
	var cursor *string
	for page := 1; page <= pages; page++ {
		if page > 1 {
			if err := f.sleep(ctx, f.repositoryPause); err != nil {
				return nil, err
			}
		}

		resp, err := f.exec.Execute(ctx, NewRequest(TopRepositoriesQuery, map[string]any{
			"afterCursor": cursor,
		}))
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		var data searchData
		if !resp.HasData() {
			return nil, fmt.Errorf("search page %d: no data: %w", page, surveyerrors.ErrMalformedResponse)
		}
		if err := resp.Decode(&data); err != nil {
			return nil, fmt.Errorf("search page %d: %v: %w", page, err, surveyerrors.ErrMalformedResponse)
		}
		if data.Search == nil {
			return nil, fmt.Errorf("search page %d: missing search: %w", page, surveyerrors.ErrMalformedResponse)
		}

		nodes = append(nodes, data.Search.Nodes...)
		f.log.Infow("fetched repository page", "page", page, "pages", pages, "nodes", len(data.Search.Nodes))

		info := data.Search.PageInfo
		if info == nil || !info.HasNextPage {
			break
		}
		if !advances(cursor, info.EndCursor) {
			f.log.Warnw("next page without a new cursor, stopping", "page", page, "fetched", len(nodes))
			break
		}
		cursor = info.EndCursor
	}

	candidates := FilterCandidates(nodes, minPullRequests)
	f.log.Infow("selected repositories",
		"fetched", len(nodes),
		"selected", len(candidates),
		"min_pull_requests", minPullRequests)
	return candidates, nil
}

// FilterCandidates decodes raw search nodes and keeps repositories whose
// closed+merged pull request count is at least min. Null and malformed
// nodes are skipped; a missing count reads as zero.
func FilterCandidates(nodes []json.RawMessage, min int) []RepositoryCandidate {
	var out []RepositoryCandidate
	for _, raw := range nodes {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var n repositoryNode
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		if n.Owner == nil || n.Owner.Login == "" || n.Name == "" {
			continue
		}
		count := 0
		if n.PullRequests != nil {
			count = n.PullRequests.TotalCount
		}
		if count < min {
			continue
		}
		out = append(out, RepositoryCandidate{
			Owner:            n.Owner.Login,
			Name:             n.Name,
			PullRequestCount: count,
		})
	}
	return out
}
