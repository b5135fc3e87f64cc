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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-survey/internal/config"
	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
	"github.com/sirseerhq/sirseer-survey/internal/github"
	"github.com/sirseerhq/sirseer-survey/internal/logger"
	"github.com/sirseerhq/sirseer-survey/pkg/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "survey",
		Short: "Survey pull request review activity across popular GitHub repositories",
		Long: `SirSeer Survey collects closed and merged pull requests from the most
starred public GitHub repositories, derives one record per reviewed pull
request, and writes a CSV dataset per repository plus an aggregate file.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides configuration)")

	rootCmd.AddCommand(
		newCollectCommand(opts),
		newCombineCommand(opts),
		newSummarizeCommand(opts),
		newInspectCommand(opts),
		newExportCommand(opts),
		newStatusCommand(opts),
	)

	return rootCmd
}

// load resolves configuration and builds the logger for a subcommand.
func (o *rootOptions) load() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// parseRepository parses an owner/repo string into owner and repo components
func parseRepository(repoArg string) (owner, repo string, err error) {
	parts := strings.Split(repoArg, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	return owner, repo, nil
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, surveyerrors.ErrMissingToken) ||
		errors.Is(err, surveyerrors.ErrInvalidToken) ||
		errors.Is(err, surveyerrors.ErrRepoNotFound) ||
		errors.Is(err, surveyerrors.ErrRateLimit) {
		return 2 // Configuration/authentication errors
	}

	var statusErr *github.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return 2
		}
	}

	if errors.Is(err, surveyerrors.ErrNetworkFailure) ||
		errors.Is(err, surveyerrors.ErrRetriesExhausted) {
		return 3 // Network errors
	}

	return 1 // General error
}
