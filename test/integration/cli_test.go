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

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirseerhq/sirseer-survey/test/testutil"
)

func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func TestCLI_Help(t *testing.T) {
	requireIntegration(t)

	result := testutil.RunCLI(t, t.TempDir(), []string{"--help"}, nil)
	testutil.AssertCLISuccess(t, result)

	for _, sub := range []string{"collect", "combine", "summarize", "inspect", "export", "status"} {
		testutil.AssertContainsString(t, result.Stdout, sub)
	}
}

func TestCLI_Version(t *testing.T) {
	requireIntegration(t)

	result := testutil.RunCLI(t, t.TempDir(), []string{"--version"}, nil)
	testutil.AssertCLISuccess(t, result)
	testutil.AssertContainsString(t, result.Stdout, "survey version")
}

func TestCLI_MissingToken(t *testing.T) {
	requireIntegration(t)

	server := testutil.NewSurveyServer(t)
	ws := testutil.NewWorkspace(t, server.Endpoint())

	for _, args := range [][]string{{"collect"}, {"inspect", "acme/widgets"}} {
		t.Run(args[0], func(t *testing.T) {
			result := testutil.RunCLI(t, ws.Root, append([]string{"--config", ws.ConfigFile}, args...), nil)
			testutil.AssertCLIError(t, result, "GITHUB_TOKEN")
			testutil.AssertExitCode(t, result, 2)
		})
	}

	if server.RequestCount() != 0 {
		t.Errorf("expected no network calls without a token, got %d", server.RequestCount())
	}
}

func TestCLI_TokenFromDotEnv(t *testing.T) {
	requireIntegration(t)

	server := testutil.NewSurveyServer(t, testutil.MockRepository{Owner: "acme", Name: "widgets", Stars: 10, TotalCount: 120})
	ws := testutil.NewWorkspace(t, server.Endpoint())
	if err := os.WriteFile(filepath.Join(ws.Root, ".env"), []byte("GITHUB_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	result := testutil.RunCLI(t, ws.Root, []string{"--config", ws.ConfigFile, "inspect", "acme/widgets"}, nil)
	testutil.AssertCLISuccess(t, result)
	testutil.AssertContainsString(t, result.Stdout, "acme/widgets")
}

func TestCLI_InvalidRepoFormat(t *testing.T) {
	requireIntegration(t)

	server := testutil.NewSurveyServer(t)
	ws := testutil.NewWorkspace(t, server.Endpoint())

	tests := []struct {
		name string
		repo string
	}{
		{name: "missing slash", repo: "invalid-repo-format"},
		{name: "too many slashes", repo: "org/repo/extra"},
		{name: "empty owner", repo: "/repo"},
		{name: "empty repo", repo: "org/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.RunInWorkspace(t, ws, "inspect", tt.repo)
			testutil.AssertCLIError(t, result, "invalid repository format")
			testutil.AssertExitCode(t, result, 1)
		})
	}
}

func TestCLI_InvalidLogLevel(t *testing.T) {
	requireIntegration(t)

	ws := testutil.NewWorkspace(t, "http://127.0.0.1:1/graphql")
	result := testutil.RunInWorkspace(t, ws, "--log-level", "loud", "combine")
	testutil.AssertCLIError(t, result, "unknown log level")
	testutil.AssertExitCode(t, result, 1)
}
