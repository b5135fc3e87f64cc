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

	"github.com/sirseerhq/sirseer-survey/internal/dataset"
	"github.com/sirseerhq/sirseer-survey/internal/output"
	"github.com/sirseerhq/sirseer-survey/internal/stats"
)

func newSummarizeCommand(opts *rootOptions) *cobra.Command {
	var (
		inputFile    string
		describe     bool
		correlations bool
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print summary statistics of the aggregate dataset",
		Long: `Print the median of the size, timing and interaction columns for each
pull request status. Use --describe for per-column statistics and
--correlations for the Spearman rank correlation matrix.`,
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
			records, err := output.ReadRecords(inputFile)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("dataset %s has no records", inputFile)
			}
			log.Debugw("dataset loaded", "path", inputFile, "records", len(records))

			return runSummarize(records, cmd.OutOrStdout(), describe, correlations)
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "", "Aggregate dataset path (default: collect.dataset_file)")
	cmd.Flags().BoolVar(&describe, "describe", false, "Also print count, mean, deviation and range of every numeric column")
	cmd.Flags().BoolVar(&correlations, "correlations", false, "Also print the Spearman correlation matrix")

	return cmd
}

func runSummarize(records []dataset.Record, out io.Writer, describe, correlations bool) error {
	fmt.Fprintf(out, "Medians by status (%d pull requests)\n", len(records))
	renderMedians(out, stats.MediansByStatus(records))

	if describe {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Column statistics")
		renderDescriptions(out, stats.Describe(records))
	}
	if correlations {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Spearman rank correlation")
		renderMatrix(out, stats.SpearmanMatrix(records))
	}
	return nil
}

func renderMedians(out io.Writer, groups []stats.StatusMedians) {
	header := []string{"status", "count"}
	for _, m := range stats.MedianMetrics {
		header = append(header, m.Name)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	for _, g := range groups {
		row := []string{g.Status, strconv.Itoa(g.Count)}
		for _, v := range g.Medians {
			row = append(row, formatFloat(v))
		}
		table.Append(row)
	}
	table.Render()
}

func renderDescriptions(out io.Writer, descs []stats.Description) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"column", "count", "mean", "std", "min", "median", "max"})
	table.SetAutoFormatHeaders(false)
	for _, d := range descs {
		table.Append([]string{
			d.Name,
			strconv.Itoa(d.Count),
			formatFloat(d.Mean),
			formatFloat(d.StdDev),
			formatFloat(d.Min),
			formatFloat(d.Median),
			formatFloat(d.Max),
		})
	}
	table.Render()
}

func renderMatrix(out io.Writer, m stats.Matrix) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(append([]string{""}, m.Labels...))
	table.SetAutoFormatHeaders(false)
	for i, label := range m.Labels {
		row := []string{label}
		for _, v := range m.Values[i] {
			row = append(row, formatFloat(v))
		}
		table.Append(row)
	}
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
