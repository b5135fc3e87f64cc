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

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
)

// RecordStore persists dataset records.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a RecordStore backed by db.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// ReplaceRecords stores records in one transaction. Existing rows of every
// repository present in records are deleted first, so importing the same
// dataset twice leaves one copy. sourceFile is logged in the imports table.
func (s *RecordStore) ReplaceRecords(ctx context.Context, sourceFile string, records []dataset.Record) error {
	tx, err := s.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	seen := map[string]bool{}
	for _, r := range records {
		if seen[r.Repository] {
			continue
		}
		seen[r.Repository] = true
		if _, err := tx.ExecContext(ctx, `DELETE FROM pull_requests WHERE repository = ?`, r.Repository); err != nil {
			return fmt.Errorf("clear repository %s: %w", r.Repository, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pull_requests (
			repository, status, analysis_time_hours, size_files, size_additions,
			size_deletions, description_chars, interaction_participants,
			interaction_comments, reviews_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Repository, r.Status, r.AnalysisTimeHours, r.SizeFiles, r.SizeAdditions,
			r.SizeDeletions, r.DescriptionChars, r.InteractionParticipants,
			r.InteractionComments, r.ReviewsCount,
		); err != nil {
			return fmt.Errorf("insert record for %s: %w", r.Repository, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source_file, records, imported_at) VALUES (?, ?, ?)`,
		sourceFile, len(records), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByRepository returns the stored records of repository in insertion order.
func (s *RecordStore) ListByRepository(ctx context.Context, repository string) ([]dataset.Record, error) {
	rows, err := s.db.Reader.QueryContext(ctx, `
		SELECT repository, status, analysis_time_hours, size_files, size_additions,
			size_deletions, description_chars, interaction_participants,
			interaction_comments, reviews_count
		FROM pull_requests
		WHERE repository = ?
		ORDER BY id
	`, repository)
	if err != nil {
		return nil, fmt.Errorf("query records for %s: %w", repository, err)
	}
	defer rows.Close()

	var out []dataset.Record
	for rows.Next() {
		var r dataset.Record
		if err := rows.Scan(
			&r.Repository, &r.Status, &r.AnalysisTimeHours, &r.SizeFiles, &r.SizeAdditions,
			&r.SizeDeletions, &r.DescriptionChars, &r.InteractionParticipants,
			&r.InteractionComments, &r.ReviewsCount,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of stored records per status.
func (s *RecordStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Reader.QueryContext(ctx, `SELECT status, COUNT(*) FROM pull_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
