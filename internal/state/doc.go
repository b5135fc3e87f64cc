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

// Package state persists the repository selection of a collection run.
//
// The search stage is the only part of a run that is not resumable by file
// presence, and GitHub's star ordering drifts between calls. Saving the
// selected candidates lets a restarted run feed the workers the same queue.
// State files carry a schema version and a SHA256 checksum and are written
// atomically.
//
// Example usage:
//
//	path := state.GetStateFilePath(cfg.Collect.MetadataDir)
//	saved, err := state.LoadState(path)
//	if err == nil && saved.Matches(200, 100) {
//	    // reuse saved.Candidates
//	}
package state
