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

package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirseerhq/sirseer-survey/internal/output"
)

// ErrNoState is returned by LoadState when no state file exists.
var ErrNoState = errors.New("no saved candidate state")

// GetStateFilePath returns the candidate state file inside dir.
func GetStateFilePath(dir string) string {
	return filepath.Join(dir, "candidates.state")
}

// SaveState atomically saves the candidate state with integrity validation.
func SaveState(state *CandidateState, stateFile string) error {
	state.Version = CurrentVersion

	checksum, err := calculateChecksum(state)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	state.Checksum = checksum

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return output.WriteFileAtomic(stateFile, 0o600, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write temporary state file: %w", err)
		}
		return nil
	})
}

// LoadState reads and validates the candidate state.
// It verifies the checksum and version compatibility.
func LoadState(stateFile string) (*CandidateState, error) {
	data, err := os.ReadFile(stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", stateFile, err)
	}

	var state CandidateState
	if unmarshalErr := json.Unmarshal(data, &state); unmarshalErr != nil {
		return nil, fmt.Errorf("state file is corrupted (invalid JSON): %w", unmarshalErr)
	}

	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("state file version (%d) is incompatible with current version (%d)",
			state.Version, CurrentVersion)
	}

	calculatedChecksum, err := calculateChecksum(&state)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum for validation: %w", err)
	}
	if state.Checksum != calculatedChecksum {
		return nil, fmt.Errorf("state file is corrupted (checksum mismatch)")
	}

	return &state, nil
}

// DeleteState removes the state file. A missing file is not an error.
func DeleteState(stateFile string) error {
	err := os.Remove(stateFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// calculateChecksum computes the SHA256 hash of the state content.
// The checksum field itself is excluded from the calculation.
func calculateChecksum(state *CandidateState) (string, error) {
	stateCopy := *state
	stateCopy.Checksum = ""

	data, err := json.Marshal(stateCopy)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
