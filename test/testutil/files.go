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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirseerhq/sirseer-survey/internal/output"
)

// Workspace is a per-test directory layout for a collection run.
type Workspace struct {
	Root        string
	OutputDir   string
	DatasetFile string
	MetadataDir string
	ConfigFile  string
}

// NewWorkspace creates the layout under t.TempDir and writes a configuration
// file pointing at endpoint with no page pauses and millisecond retry waits.
func NewWorkspace(t *testing.T, endpoint string) Workspace {
	t.Helper()

	root := t.TempDir()
	ws := Workspace{
		Root:        root,
		OutputDir:   filepath.Join(root, "results_csv"),
		DatasetFile: filepath.Join(root, "dataset.csv"),
		MetadataDir: filepath.Join(root, "meta"),
		ConfigFile:  filepath.Join(root, "survey.yaml"),
	}

	content := fmt.Sprintf(`github:
  graphql_endpoint: %q
  request_timeout: 5s
collect:
  target_repositories: 200
  min_pull_requests: 100
  pull_request_cap: 200
  workers: 3
  output_dir: %q
  dataset_file: %q
  metadata_dir: %q
  repository_pause: 0s
  pull_request_pause: 0s
retry:
  max_attempts: 7
  base_delay: 1ms
  jitter_bound: 1ms
export:
  database_path: %q
`, endpoint, ws.OutputDir, ws.DatasetFile, ws.MetadataDir, filepath.Join(root, "survey.db"))

	if err := os.WriteFile(ws.ConfigFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return ws
}

// ArtifactPath returns the per-repository dataset path inside the workspace.
func (ws Workspace) ArtifactPath(owner, name string) string {
	return output.ArtifactPath(ws.OutputDir, owner, name)
}

// CreateTempFile creates a temporary file with the given content
func CreateTempFile(t *testing.T, dir, pattern, content string) string {
	t.Helper()

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if err := file.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return file.Name()
}
