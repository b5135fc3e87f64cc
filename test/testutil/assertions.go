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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
	"github.com/sirseerhq/sirseer-survey/internal/metadata"
	"github.com/sirseerhq/sirseer-survey/internal/output"
)

// AssertDatasetFile validates that a CSV dataset parses with the expected
// header and holds wantRecords rows. It returns the parsed records.
func AssertDatasetFile(t *testing.T, path string, wantRecords int) []dataset.Record {
	t.Helper()

	records, err := output.ReadRecords(path)
	if err != nil {
		t.Fatalf("Failed to read dataset %s: %v", path, err)
	}
	if len(records) != wantRecords {
		t.Errorf("Expected %d records in %s, got %d", wantRecords, path, len(records))
	}
	return records
}

// AssertEmptyMarker checks that path exists and is zero bytes long, which
// marks a repository processed with nothing to keep.
func AssertEmptyMarker(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected empty marker %s: %v", path, err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected %s to be empty, got %d bytes", path, info.Size())
	}
}

// AssertRunMetadata loads the most recent run metadata from dir.
func AssertRunMetadata(t *testing.T, dir string) *metadata.RunMetadata {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "run-*.json"))
	if err != nil {
		t.Fatalf("Failed to glob metadata files: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("No metadata file found")
	}

	meta, err := metadata.LoadLatestMetadata(dir)
	if err != nil {
		t.Fatalf("Failed to load metadata: %v", err)
	}
	if meta == nil {
		t.Fatal("Metadata files present but none readable")
	}
	if meta.RunID == "" || meta.QueryVersion == "" {
		t.Errorf("Metadata missing identifiers: %+v", meta)
	}
	return meta
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}

// AssertFileExists checks that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected file to not exist: %s", path)
	}
}
