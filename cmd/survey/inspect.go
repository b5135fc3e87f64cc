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
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-survey/internal/github"
)

func newInspectCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <owner>/<repo> [<owner>/<repo>...]",
		Short: "Show whether repositories qualify for the survey",
		Long: `Look up the star count and closed plus merged pull request count of one
or more repositories, and report whether each meets the minimum pull
request threshold used by collect.

The repository must be specified in the format: <owner>/<repo>
For example: golang/go, kubernetes/kubernetes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := cfg.RequireToken(); err != nil {
				return err
			}

			client := github.NewGraphQLClient(
				cfg.GitHub.Token,
				cfg.GitHub.GraphQLEndpoint,
				github.NewRetryPolicy(cfg.Retry),
				cfg.GitHub.RequestTimeout,
			)
			return runInspect(cmd.Context(), client, args, cfg.Collect.MinPullRequests, cmd.OutOrStdout())
		},
	}

	return cmd
}

// runInspect validates every argument before making any request.
func runInspect(ctx context.Context, client github.RepositoryInspector, repoArgs []string, minPullRequests int, out io.Writer) error {
	type target struct{ owner, repo string }
	targets := make([]target, 0, len(repoArgs))
	for _, arg := range repoArgs {
		owner, repo, err := parseRepository(arg)
		if err != nil {
			return err
		}
		targets = append(targets, target{owner, repo})
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"repository", "stars", "archived", "closed+merged prs", "eligible"})
	table.SetAutoFormatHeaders(false)

	for _, t := range targets {
		info, err := client.GetRepositoryInfo(ctx, t.owner, t.repo)
		if err != nil {
			return err
		}
		eligible := "no"
		if info.TotalPullRequests >= minPullRequests {
			eligible = "yes"
		}
		table.Append([]string{
			info.NameWithOwner,
			strconv.Itoa(info.Stars),
			strconv.FormatBool(info.IsArchived),
			strconv.Itoa(info.TotalPullRequests),
			eligible,
		})
	}
	table.Render()

	fmt.Fprintf(out, "Eligibility threshold: %d closed or merged pull requests\n", minPullRequests)
	return nil
}
