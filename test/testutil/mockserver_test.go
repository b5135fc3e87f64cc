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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/sirseerhq/sirseer-survey/internal/github"
)

func post(t *testing.T, url, token string, req github.Request) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func manyRepositories(n int) []MockRepository {
	repos := make([]MockRepository, n)
	for i := range repos {
		repos[i] = MockRepository{Owner: fmt.Sprintf("org%d", i), Name: "repo", TotalCount: 150}
	}
	return repos
}

func TestSurveyServer_SearchPaging(t *testing.T) {
	server := NewSurveyServer(t, manyRepositories(250)...)

	tests := []struct {
		cursor    interface{}
		wantNodes int
		wantNext  bool
		wantEnd   string
	}{
		{cursor: nil, wantNodes: 100, wantNext: true, wantEnd: "100"},
		{cursor: "100", wantNodes: 100, wantNext: true, wantEnd: "200"},
		{cursor: "200", wantNodes: 50, wantNext: false, wantEnd: "250"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.cursor), func(t *testing.T) {
			status, body := post(t, server.Endpoint(), "token", github.NewRequest(github.TopRepositoriesQuery, map[string]any{"afterCursor": tt.cursor}))
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}

			search := body["data"].(map[string]interface{})["search"].(map[string]interface{})
			nodes := search["nodes"].([]interface{})
			if len(nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(nodes), tt.wantNodes)
			}
			info := search["pageInfo"].(map[string]interface{})
			if info["hasNextPage"] != tt.wantNext {
				t.Errorf("hasNextPage = %v, want %v", info["hasNextPage"], tt.wantNext)
			}
			if info["endCursor"] != tt.wantEnd {
				t.Errorf("endCursor = %v, want %s", info["endCursor"], tt.wantEnd)
			}
		})
	}

	if got := len(server.Requests("search")); got != 3 {
		t.Errorf("recorded search requests = %d, want 3", got)
	}
}

func TestSurveyServer_PullRequestPaging(t *testing.T) {
	server := NewSurveyServer(t, MockRepository{Owner: "acme", Name: "widgets", PullRequests: BuildPullRequests(45, 0)})

	vars := map[string]any{"owner": "acme", "name": "widgets"}
	_, first := post(t, server.Endpoint(), "token", github.NewRequest(github.PullRequestsQuery, vars))
	prs := first["data"].(map[string]interface{})["repository"].(map[string]interface{})["pullRequests"].(map[string]interface{})
	if n := len(prs["nodes"].([]interface{})); n != github.PullRequestPageSize {
		t.Errorf("first page = %d nodes, want %d", n, github.PullRequestPageSize)
	}

	vars["afterCursor"] = prs["pageInfo"].(map[string]interface{})["endCursor"]
	_, second := post(t, server.Endpoint(), "token", github.NewRequest(github.PullRequestsQuery, vars))
	prs = second["data"].(map[string]interface{})["repository"].(map[string]interface{})["pullRequests"].(map[string]interface{})
	if n := len(prs["nodes"].([]interface{})); n != 5 {
		t.Errorf("second page = %d nodes, want 5", n)
	}
	if prs["pageInfo"].(map[string]interface{})["hasNextPage"] != false {
		t.Error("expected last page")
	}
}

func TestSurveyServer_RequiresBearerToken(t *testing.T) {
	server := NewSurveyServer(t)

	status, _ := post(t, server.Endpoint(), "", github.NewRequest(github.TopRepositoriesQuery, nil))
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if server.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", server.RequestCount())
	}
}

func TestSurveyServer_FailPullRequests(t *testing.T) {
	server := NewSurveyServer(t, MockRepository{Owner: "acme", Name: "widgets"})
	server.FailPullRequests("acme/widgets", http.StatusBadGateway)

	status, _ := post(t, server.Endpoint(), "token", github.NewRequest(github.PullRequestsQuery, map[string]any{"owner": "acme", "name": "widgets"}))
	if status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", status)
	}
}

func TestSurveyServer_UnknownRepository(t *testing.T) {
	server := NewSurveyServer(t)

	_, body := post(t, server.Endpoint(), "token", github.NewRequest(github.PullRequestsQuery, map[string]any{"owner": "no", "name": "such"}))
	if body["data"].(map[string]interface{})["repository"] != nil {
		t.Error("expected null repository")
	}
	if errs, ok := body["errors"].([]interface{}); !ok || len(errs) != 1 {
		t.Errorf("errors = %v, want one entry", body["errors"])
	}
}

func TestBuildPullRequests(t *testing.T) {
	nodes := BuildPullRequests(10, 5)
	if len(nodes) != 10 {
		t.Fatalf("len = %d, want 10", len(nodes))
	}

	unreviewed := 0
	for _, n := range nodes {
		if n["reviews"].(map[string]interface{})["totalCount"] == 0 {
			unreviewed++
		}
	}
	if unreviewed != 2 {
		t.Errorf("unreviewed = %d, want 2", unreviewed)
	}
	if nodes[1]["state"] != "CLOSED" || nodes[1]["mergedAt"] != nil {
		t.Errorf("even nodes should be closed without merge: %v", nodes[1])
	}
}

func TestNewTransientErrorServer(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := NewTransientErrorServer(t, 2, http.StatusGatewayTimeout, ok)

	want := []int{http.StatusGatewayTimeout, http.StatusGatewayTimeout, http.StatusOK}
	for i, code := range want {
		resp, err := http.Post(server.URL, "application/json", nil)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != code {
			t.Errorf("request %d status = %d, want %d", i, resp.StatusCode, code)
		}
	}
}
