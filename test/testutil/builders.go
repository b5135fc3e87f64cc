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

package testutil

import (
	"time"
)

// baseTime anchors every generated timestamp so fixtures are deterministic.
var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// PullRequestBuilder provides a fluent API for creating pull request nodes
// shaped like the GraphQL pull request query.
type PullRequestBuilder struct {
	state        string
	createdAt    time.Time
	closedAt     *time.Time
	mergedAt     *time.Time
	additions    int
	deletions    int
	changedFiles int
	body         *string
	participants *int
	comments     *int
	reviews      *int
}

// NewPullRequestBuilder creates a merged, reviewed pull request that stayed
// open for two days. The index shifts its creation time so nodes differ.
func NewPullRequestBuilder(index int) *PullRequestBuilder {
	created := baseTime.Add(-time.Duration(index) * time.Hour)
	merged := created.Add(48 * time.Hour)
	body := "Fixes the thing"
	participants, comments, reviews := 2, 3, 1
	return &PullRequestBuilder{
		state:        "MERGED",
		createdAt:    created,
		closedAt:     &merged,
		mergedAt:     &merged,
		additions:    10,
		deletions:    5,
		changedFiles: 2,
		body:         &body,
		participants: &participants,
		comments:     &comments,
		reviews:      &reviews,
	}
}

// Merged marks the pull request merged after the given duration.
func (b *PullRequestBuilder) Merged(after time.Duration) *PullRequestBuilder {
	t := b.createdAt.Add(after)
	b.state = "MERGED"
	b.mergedAt = &t
	b.closedAt = &t
	return b
}

// Closed marks the pull request closed without merge after the given duration.
func (b *PullRequestBuilder) Closed(after time.Duration) *PullRequestBuilder {
	t := b.createdAt.Add(after)
	b.state = "CLOSED"
	b.mergedAt = nil
	b.closedAt = &t
	return b
}

// WithSize sets the diff size.
func (b *PullRequestBuilder) WithSize(files, additions, deletions int) *PullRequestBuilder {
	b.changedFiles = files
	b.additions = additions
	b.deletions = deletions
	return b
}

// WithBody sets the description text.
func (b *PullRequestBuilder) WithBody(body string) *PullRequestBuilder {
	b.body = &body
	return b
}

// WithReviews sets the review count. A negative count omits the object.
func (b *PullRequestBuilder) WithReviews(n int) *PullRequestBuilder {
	if n < 0 {
		b.reviews = nil
		return b
	}
	b.reviews = &n
	return b
}

// WithInteractions sets the participant and comment counts.
func (b *PullRequestBuilder) WithInteractions(participants, comments int) *PullRequestBuilder {
	b.participants = &participants
	b.comments = &comments
	return b
}

// Build returns the node as the server would encode it.
func (b *PullRequestBuilder) Build() map[string]interface{} {
	node := map[string]interface{}{
		"state":        b.state,
		"createdAt":    b.createdAt.Format(time.RFC3339),
		"closedAt":     formatOptional(b.closedAt),
		"mergedAt":     formatOptional(b.mergedAt),
		"additions":    b.additions,
		"deletions":    b.deletions,
		"changedFiles": b.changedFiles,
		"bodyText":     nil,
		"participants": totalCount(b.participants),
		"comments":     totalCount(b.comments),
		"reviews":      totalCount(b.reviews),
	}
	if b.body != nil {
		node["bodyText"] = *b.body
	}
	return node
}

// BuildPullRequests creates n reviewed pull requests, of which every
// unreviewedEvery-th has no reviews and is therefore dropped by derivation.
// unreviewedEvery <= 0 keeps all of them reviewed.
func BuildPullRequests(n, unreviewedEvery int) []map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		b := NewPullRequestBuilder(i).WithSize(1+i%5, 10*i, i)
		if i%2 == 0 {
			b.Closed(6 * time.Hour)
		}
		if unreviewedEvery > 0 && i%unreviewedEvery == 0 {
			b.WithReviews(0)
		}
		nodes = append(nodes, b.Build())
	}
	return nodes
}

func formatOptional(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func totalCount(n *int) interface{} {
	if n == nil {
		return nil
	}
	return map[string]interface{}{"totalCount": *n}
}
