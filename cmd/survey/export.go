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

package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/output"
	"github.com/sirseerhq/sirseer-survey/internal/storage/sqlite"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		inputFile string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Load the aggregate dataset into a SQLite database",
		Long: `Load the aggregate dataset into the pull_requests table of a SQLite
database, creating and migrating the database as needed. Rows of every
repository present in the dataset are replaced, so exporting twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if inputFile == "" {
				inputFile = cfg.Collect.DatasetFile
			}
			if dbPath == "" {
				dbPath = cfg.Export.DatabasePath
			}
			return runExport(cmd.Context(), inputFile, dbPath, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "", "Aggregate dataset path (default: collect.dataset_file)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: export.database_path)")

	return cmd
}

func runExport(ctx context.Context, inputFile, dbPath string, log *zap.SugaredLogger, out io.Writer) error {
	records, err := output.ReadRecords(inputFile)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("dataset %s has no records", inputFile)
	}

	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := sqlite.RunMigrations(db.Writer); err != nil {
		return err
	}

	store := sqlite.NewRecordStore(db)
	if err := store.ReplaceRecords(ctx, inputFile, records); err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}
	log.Infow("dataset exported", "input", inputFile, "database", db.Path(), "records", len(records))

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		return err
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	fmt.Fprintf(out, "Exported %d records to %s\n", len(records), db.Path())
	for _, s := range statuses {
		fmt.Fprintf(out, "  %s: %d\n", s, counts[s])
	}
	return nil
}
