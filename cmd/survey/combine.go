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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/output"
)

func newCombineCommand(opts *rootOptions) *cobra.Command {
	var (
		inputDir   string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Rebuild the aggregate dataset from the per-repository files",
		Long: `Concatenate every non-empty per-repository CSV file, in file name order,
into the aggregate dataset. No network access is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if inputDir == "" {
				inputDir = cfg.Collect.OutputDir
			}
			if outputFile == "" {
				outputFile = cfg.Collect.DatasetFile
			}
			return runCombine(inputDir, outputFile, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "Directory of per-repository CSV files (default: collect.output_dir)")
	cmd.Flags().StringVar(&outputFile, "output", "", "Aggregate dataset path (default: collect.dataset_file)")

	return cmd
}

func runCombine(inputDir, outputFile string, log *zap.SugaredLogger, out io.Writer) error {
	res, err := output.Combine(inputDir, outputFile, log)
	if err != nil {
		return err
	}
	if res.Records == 0 {
		fmt.Fprintf(out, "No records found in %s; nothing written\n", inputDir)
		return nil
	}
	fmt.Fprintf(out, "Wrote %d records from %d files to %s (%d empty files skipped)\n",
		res.Records, res.Files-res.Skipped, outputFile, res.Skipped)
	return nil
}
