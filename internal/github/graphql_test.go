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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
)

func TestNewGraphQLClient(t *testing.T) {
	client := NewGraphQLClient("test-token", "https://api.github.com/graphql", DefaultRetryPolicy(), 90*time.Second)
	if client == nil {
		t.Fatal("expected non-nil client")
	}

	var _ RepositoryInspector = client
}

func TestGraphQLClient_GetRepositoryInfo(t *testing.T) {
	var gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"repository":{"nameWithOwner":"golang/go","stargazerCount":125000,"isArchived":false,"pullRequests":{"totalCount":5321}}}}`))
	}))
	defer server.Close()

	client := newGraphQLClient("test-token", server.URL, noWaitPolicy(), 0, http.DefaultTransport)
	info, err := client.GetRepositoryInfo(context.Background(), "golang", "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.NameWithOwner != "golang/go" || info.Stars != 125000 || info.TotalPullRequests != 5321 || info.IsArchived {
		t.Errorf("info = %+v", info)
	}
	if !strings.Contains(gotQuery, "pullRequests(states: [MERGED, CLOSED])") {
		t.Errorf("query does not select closed and merged pull requests: %s", gotQuery)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestGraphQLClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantCalls int64
	}{
		{
			name:      "unauthorized",
			status:    http.StatusUnauthorized,
			body:      `{"message":"Bad credentials"}`,
			wantErr:   surveyerrors.ErrInvalidToken,
			wantCalls: 1,
		},
		{
			name:      "repository not found",
			status:    http.StatusOK,
			body:      `{"data":{"repository":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a Repository with the name 'nope/nope'."}]}`,
			wantErr:   surveyerrors.ErrRepoNotFound,
			wantCalls: 1,
		},
		{
			name:      "rate limited",
			status:    http.StatusOK,
			body:      `{"errors":[{"type":"RATE_LIMITED","message":"API rate limit exceeded for user ID 1."}]}`,
			wantErr:   surveyerrors.ErrRateLimit,
			wantCalls: 1,
		},
		{
			name:      "gateway timeouts exhaust retries",
			status:    http.StatusGatewayTimeout,
			wantErr:   surveyerrors.ErrNetworkFailure,
			wantCalls: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newGraphQLClient("test-token", server.URL, noWaitPolicy(), 0, http.DefaultTransport)
			_, err := client.GetRepositoryInfo(context.Background(), "nope", "nope")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestGraphQLClient_RetriesGatewayErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"repository":{"nameWithOwner":"a/b","stargazerCount":1,"isArchived":true,"pullRequests":{"totalCount":2}}}}`))
	}))
	defer server.Close()

	client := newGraphQLClient("test-token", server.URL, noWaitPolicy(), 0, http.DefaultTransport)
	info, err := client.GetRepositoryInfo(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if !info.IsArchived || info.TotalPullRequests != 2 {
		t.Errorf("info = %+v", info)
	}
}
