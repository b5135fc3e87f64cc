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
	"sync"
)

// MockExecutor is a scripted QueryExecutor for tests. Each call consumes the
// next entry of Results; Handler, when set, takes precedence.
type MockExecutor struct {
	mu sync.Mutex

	Results []MockResult
	Handler func(req Request) (*Response, error)

	// Track calls for verification
	Requests []Request
}

// MockResult is one scripted outcome.
type MockResult struct {
	Response *Response
	Err      error
}

// Execute implements QueryExecutor.
func (m *MockExecutor) Execute(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.Handler != nil {
		return m.Handler(req)
	}
	if len(m.Results) == 0 {
		return nil, fmt.Errorf("mock executor: unexpected call %d", len(m.Requests))
	}
	next := m.Results[0]
	m.Results = m.Results[1:]
	return next.Response, next.Err
}

// CallCount returns the number of Execute calls so far.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// DataResponse wraps v as the data payload of a Response. It panics if v
// cannot be encoded, which only happens on a broken test fixture.
func DataResponse(v any) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock executor: encode data: %v", err))
	}
	return &Response{Data: data}
}

// SearchPage builds a search response with the given nodes.
func SearchPage(nodes []any, endCursor string, hasNext bool) *Response {
	return DataResponse(map[string]any{
		"search": map[string]any{
			"nodes":    nodes,
			"pageInfo": map[string]any{"endCursor": endCursor, "hasNextPage": hasNext},
		},
	})
}

// RepositoryNode builds one search node.
func RepositoryNode(owner, name string, pullRequests int) map[string]any {
	return map[string]any{
		"name":         name,
		"owner":        map[string]any{"login": owner},
		"pullRequests": map[string]any{"totalCount": pullRequests},
	}
}

// PullRequestPage builds a pull request response with the given nodes.
func PullRequestPage(nodes []*PullRequestNode, endCursor string, hasNext bool) *Response {
	if nodes == nil {
		nodes = []*PullRequestNode{}
	}
	return DataResponse(map[string]any{
		"repository": map[string]any{
			"pullRequests": map[string]any{
				"nodes":    nodes,
				"pageInfo": map[string]any{"endCursor": endCursor, "hasNextPage": hasNext},
			},
		},
	})
}
