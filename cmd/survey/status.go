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
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-survey/internal/metadata"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var (
		asJSON bool
		failed bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the most recent collection run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return runStatus(cfg.Collect.MetadataDir, cmd.OutOrStdout(), asJSON, failed)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw run metadata")
	cmd.Flags().BoolVar(&failed, "failed", false, "List only repositories that failed")

	return cmd
}

func runStatus(metadataDir string, out io.Writer, asJSON, failedOnly bool) error {
	meta, err := metadata.LoadLatestMetadata(metadataDir)
	if err != nil {
		return err
	}
	if meta == nil {
		fmt.Fprintf(out, "No runs recorded in %s\n", metadataDir)
		return nil
	}
	if asJSON {
		return metadata.WriteMetadataToWriter(meta, out)
	}

	r := meta.Results
	fmt.Fprintf(out, "Run %s (survey %s) completed %s in %s\n",
		meta.RunID, meta.SurveyVersion, r.CompletedAt.Format("2006-01-02 15:04:05"), r.Duration)
	fmt.Fprintf(out, "Candidates: %d  written: %d  skipped: %d  failed: %d  records: %d  API calls: %d\n",
		r.Candidates, r.Written, r.Skipped, r.Failed, r.TotalRecords, r.APICallCount)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"repository", "outcome", "records", "error"})
	table.SetAutoFormatHeaders(false)
	for _, repo := range r.Repositories {
		if failedOnly && repo.Outcome != metadata.OutcomeFailed {
			continue
		}
		table.Append([]string{repo.Repository, repo.Outcome, strconv.Itoa(repo.Records), repo.Error})
	}
	table.Render()
	return nil
}
