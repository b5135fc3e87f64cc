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

// Package config types define the configuration structures used throughout
// sirseer-survey. These types represent settings that can be loaded from
// YAML configuration files, a .env file, or environment variables.
package config

import "time"

// Config represents the complete configuration for sirseer-survey.
// It is resolved once at startup and handed to each component at
// construction time; nothing reads the environment mid-run.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Collect CollectConfig `yaml:"collect"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`
}

// GitHubConfig contains GitHub-specific settings including the GraphQL
// endpoint and where the credential comes from.
type GitHubConfig struct {
	GraphQLEndpoint string        `yaml:"graphql_endpoint"`
	TokenEnv        string        `yaml:"token_env"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	// Token is resolved from TokenEnv and never read from a file.
	Token string `yaml:"-"`
}

// CollectConfig controls the collection pipeline. These values are fixed
// for a study and deliberately have no command-line flags.
type CollectConfig struct {
	// TargetRepositories is how many ranked repositories to request.
	TargetRepositories int `yaml:"target_repositories"`
	// MinPullRequests is the closed+merged PR count a repository needs.
	MinPullRequests int `yaml:"min_pull_requests"`
	// PullRequestCap bounds PRs fetched per repository. Ignored when Uncapped.
	PullRequestCap int  `yaml:"pull_request_cap"`
	Uncapped       bool `yaml:"uncapped"`
	// Workers is the size of the repository worker pool.
	Workers     int    `yaml:"workers"`
	OutputDir   string `yaml:"output_dir"`
	DatasetFile string `yaml:"dataset_file"`
	MetadataDir string `yaml:"metadata_dir"`

	RepositoryPause  time.Duration `yaml:"repository_pause"`
	PullRequestPause time.Duration `yaml:"pull_request_pause"`
}

// RetryConfig parameterizes the backoff applied to transient API failures.
// The wait before retry i is BaseDelay*2^i plus up to JitterBound.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	JitterBound time.Duration `yaml:"jitter_bound"`
}

// LoggingConfig selects the log level (debug, info, warn, error).
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ExportConfig locates the SQLite database written by the export command.
type ExportConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// EffectiveCap returns the per-repository PR cap, or 0 in uncapped mode.
func (c CollectConfig) EffectiveCap() int {
	if c.Uncapped {
		return 0
	}
	return c.PullRequestCap
}

// DefaultConfig returns a Config with the study's fixed parameters.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
			RequestTimeout:  90 * time.Second,
		},
		Collect: CollectConfig{
			TargetRepositories: 200,
			MinPullRequests:    100,
			PullRequestCap:     200,
			Workers:            3,
			OutputDir:          "results_csv",
			DatasetFile:        "dataset.csv",
			MetadataDir:        "~/.sirseer/survey",
			RepositoryPause:    time.Second,
			PullRequestPause:   500 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts: 7,
			BaseDelay:   time.Second,
			JitterBound: time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			DatabasePath: "survey.db",
		},
	}
}
