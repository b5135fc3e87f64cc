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
	"fmt"
)

type pullRequestData struct {
	Repository *struct {
		PullRequests *struct {
			Nodes    []*PullRequestNode `json:"nodes"`
			PageInfo *PageInfo          `json:"pageInfo"`
		} `json:"pullRequests"`
	} `json:"repository"`
}

// FetchPullRequests returns the merged and closed pull requests of
// owner/name, newest first. With limit > 0 it stops after the page that
// reaches limit and truncates to exactly limit; limit <= 0 walks every page.
//
// A response without data, repository, pull requests or page info ends the
// walk and the pull requests gathered so far are returned. So does a page
// that claims a successor but carries a null or unchanged end cursor.
func (f *Fetcher) FetchPullRequests(ctx context.Context, owner, name string, limit int) ([]*PullRequestNode, error) {
	log := f.log.With("repository", owner+"/"+name)

	var all []*PullRequestNode
	var cursor *string
	for page := 1; ; page++ {
		if page > 1 {
			if err := f.sleep(ctx, f.pullRequestPause); err != nil {
				return nil, err
			}
		}

		resp, err := f.exec.Execute(ctx, NewRequest(PullRequestsQuery, map[string]any{
			"owner":       owner,
			"name":        name,
			"afterCursor": cursor,
		}))
		if err != nil {
			return nil, fmt.Errorf("pull request page %d of %s/%s: %w", page, owner, name, err)
		}

		if !resp.HasData() {
			log.Warnw("empty response, stopping", "page", page, "collected", len(all))
			break
		}
		var data pullRequestData
		if err := resp.Decode(&data); err != nil {
			log.Warnw("malformed response, stopping", "page", page, "collected", len(all), "error", err)
			break
		}
		if data.Repository == nil || data.Repository.PullRequests == nil {
			log.Warnw("repository missing from response, stopping", "page", page, "collected", len(all))
			break
		}

		prs := data.Repository.PullRequests
		all = append(all, prs.Nodes...)
		log.Debugw("fetched pull request page", "page", page, "nodes", len(prs.Nodes), "collected", len(all))

		if limit > 0 && len(all) >= limit {
			log.Infow("pull request limit reached", "limit", limit, "pages", page)
			break
		}
		if prs.PageInfo == nil {
			log.Warnw("page info missing, stopping", "page", page, "collected", len(all))
			break
		}
		if !prs.PageInfo.HasNextPage {
			break
		}
		if !advances(cursor, prs.PageInfo.EndCursor) {
			log.Warnw("next page without a new cursor, stopping", "page", page, "collected", len(all))
			break
		}
		cursor = prs.PageInfo.EndCursor
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// advances reports whether next is a usable cursor after prev.
func advances(prev, next *string) bool {
	if next == nil {
		return false
	}
	return prev == nil || *prev != *next
}
