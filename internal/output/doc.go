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

// Package output reads and writes the survey's CSV datasets.
//
// Each repository gets its own file named owner-name.csv holding the
// dataset header and one row per kept pull request. A zero-byte file marks a
// repository that was processed but had nothing worth keeping. All files are
// written to a temporary name and renamed into place, so a file that exists
// is always complete.
//
// Combine merges the per-repository files into a single dataset.
//
// Example usage:
//
//	path := output.ArtifactPath("results_csv", "golang", "go")
//	if !output.ArtifactExists(path) {
//	    if err := output.WriteArtifact(path, records); err != nil {
//	        return err
//	    }
//	}
//	res, err := output.Combine("results_csv", "dataset.csv", log)
package output
