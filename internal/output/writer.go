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

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
)

// Writer writes records as CSV rows under the dataset header. The header is
// emitted with the first record, so a Writer that never receives a record
// leaves its output empty.
type Writer struct {
	mu    sync.Mutex
	csv   *csv.Writer
	count int
}

// NewWriter creates a new CSV writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write writes a single record.
func (w *Writer) Write(record dataset.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count == 0 {
		if err := w.csv.Write(dataset.Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.csv.Write(record.Row()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes pending rows. The underlying io.Writer is left open.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	return nil
}
