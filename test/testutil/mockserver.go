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

// Package testutil provides common test helpers for sirseer-survey
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirseerhq/sirseer-survey/internal/github"
)

// GraphQLRequest represents a parsed GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Kind classifies the request by the query document it carries.
func (r GraphQLRequest) Kind() string {
	switch {
	case strings.Contains(r.Query, "search("):
		return "search"
	case strings.Contains(r.Query, "stargazerCount"):
		return "info"
	default:
		return "pulls"
	}
}

// MockRepository is one repository served by SurveyServer.
type MockRepository struct {
	Owner        string
	Name         string
	Stars        int
	Archived     bool
	PullRequests []map[string]interface{}

	// TotalCount is the closed+merged count the search reports. Zero means
	// len(PullRequests).
	TotalCount int
}

// FullName returns owner/name.
func (r MockRepository) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r MockRepository) count() int {
	if r.TotalCount > 0 {
		return r.TotalCount
	}
	return len(r.PullRequests)
}

// SurveyServer is a fake GitHub GraphQL endpoint that answers the repository
// search, the pull request query and the repository lookup from a fixed set
// of repositories. Cursors are decimal offsets.
type SurveyServer struct {
	*httptest.Server

	mu           sync.Mutex
	repositories []MockRepository
	failures     map[string]int
	requests     []GraphQLRequest
	requestCount int32
}

// NewSurveyServer starts a server ranked in the order repositories are given.
// It is closed when the test ends.
func NewSurveyServer(t *testing.T, repositories ...MockRepository) *SurveyServer {
	t.Helper()

	s := &SurveyServer{
		repositories: repositories,
		failures:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the GraphQL URL of the server.
func (s *SurveyServer) Endpoint() string {
	return s.URL + "/graphql"
}

// FailPullRequests makes every pull request query for owner/name answer with
// statusCode.
func (s *SurveyServer) FailPullRequests(fullName string, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fullName] = statusCode
}

// RequestCount returns the number of requests received.
func (s *SurveyServer) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

// Requests returns the requests received of the given kind ("" for all).
func (s *SurveyServer) Requests(kind string) []GraphQLRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []GraphQLRequest
	for _, r := range s.requests {
		if kind == "" || r.Kind() == kind {
			out = append(out, r)
		}
	}
	return out
}

func (s *SurveyServer) handle(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)

	if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
		http.NotFound(w, r)
		return
	}
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Authorization")), "bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	switch req.Kind() {
	case "search":
		s.searchPage(w, req)
	case "info":
		s.repositoryInfo(w, req)
	default:
		s.pullRequestPage(w, req)
	}
}

func (s *SurveyServer) searchPage(w http.ResponseWriter, req GraphQLRequest) {
	offset := cursorOffset(req.Variables["afterCursor"])
	end := min(offset+github.RepositoryPageSize, len(s.repositories))

	nodes := make([]interface{}, 0, github.RepositoryPageSize)
	for _, repo := range s.repositories[min(offset, end):end] {
		nodes = append(nodes, github.RepositoryNode(repo.Owner, repo.Name, repo.count()))
	}

	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"search": map[string]interface{}{
				"nodes":    nodes,
				"pageInfo": pageInfo(end, end < len(s.repositories)),
			},
		},
	})
}

func (s *SurveyServer) pullRequestPage(w http.ResponseWriter, req GraphQLRequest) {
	owner, _ := req.Variables["owner"].(string)
	name, _ := req.Variables["name"].(string)

	s.mu.Lock()
	status, failing := s.failures[owner+"/"+name]
	s.mu.Unlock()
	if failing {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
		return
	}

	repo, ok := s.find(owner, name)
	if !ok {
		writeNotFound(w, owner, name)
		return
	}

	offset := cursorOffset(req.Variables["afterCursor"])
	end := min(offset+github.PullRequestPageSize, len(repo.PullRequests))
	nodes := repo.PullRequests[min(offset, end):end]
	if nodes == nil {
		nodes = []map[string]interface{}{}
	}

	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"pullRequests": map[string]interface{}{
					"nodes":    nodes,
					"pageInfo": pageInfo(end, end < len(repo.PullRequests)),
				},
			},
		},
	})
}

func (s *SurveyServer) repositoryInfo(w http.ResponseWriter, req GraphQLRequest) {
	owner, _ := req.Variables["owner"].(string)
	name, _ := req.Variables["repo"].(string)

	repo, ok := s.find(owner, name)
	if !ok {
		writeNotFound(w, owner, name)
		return
	}

	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"nameWithOwner":  repo.FullName(),
				"stargazerCount": repo.Stars,
				"isArchived":     repo.Archived,
				"pullRequests":   map[string]interface{}{"totalCount": repo.count()},
			},
		},
	})
}

func (s *SurveyServer) find(owner, name string) (MockRepository, bool) {
	for _, repo := range s.repositories {
		if strings.EqualFold(repo.Owner, owner) && strings.EqualFold(repo.Name, name) {
			return repo, true
		}
	}
	return MockRepository{}, false
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	t.Cleanup(server.Close)
	return server
}

// NewTransientErrorServer creates a mock server that fails failCount times
// with errorCode and then hands every request to next.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, next http.Handler) *httptest.Server {
	t.Helper()
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&requestCount, 1)

		if count <= int32(failCount) {
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		next.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// AssertGraphQLRequest validates a GraphQL request structure
func AssertGraphQLRequest(t *testing.T, r *http.Request) {
	t.Helper()
	if r.URL.Path != "/graphql" {
		t.Errorf("Unexpected path: %s", r.URL.Path)
	}
	if r.Method != "POST" {
		t.Errorf("Expected POST method, got: %s", r.Method)
	}
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type: application/json, got: %s", ct)
	}
}

func cursorOffset(v interface{}) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func pageInfo(end int, hasNext bool) map[string]interface{} {
	return map[string]interface{}{
		"endCursor":   strconv.Itoa(end),
		"hasNextPage": hasNext,
	}
}

func writeNotFound(w http.ResponseWriter, owner, name string) {
	writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{"repository": nil},
		"errors": []map[string]interface{}{{
			"type":    "NOT_FOUND",
			"path":    []string{"repository"},
			"message": fmt.Sprintf("Could not resolve to a Repository with the name '%s/%s'.", owner, name),
		}},
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
