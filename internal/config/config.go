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

// Package config provides configuration management for sirseer-survey with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Environment variables
//  2. A .env file in the working directory (never overrides real variables)
//  3. YAML configuration file
//  4. Built-in defaults
//
// The GitHub credential is only ever taken from the environment. It is
// resolved once here and passed explicitly to the components that need it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
)

// legacyTokenEnv is consulted when the configured variable is unset.
const legacyTokenEnv = "TOKEN"

// envFile is loaded from the working directory when present.
const envFile = ".env"

// MaxRetryAttempts bounds Retry.MaxAttempts. The last wait before the final
// attempt is then at most BaseDelay*2^18.
const MaxRetryAttempts = 20

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-survey.yaml (current directory)
//   - .sirseer-survey.yml (current directory)
//   - ~/.sirseer/survey.yaml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
// A missing token is not an error here; see RequireToken.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-survey.yaml",
			".sirseer-survey.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "survey.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.GitHub.Token = resolveToken(cfg.GitHub.TokenEnv)

	cfg.Collect.OutputDir = expandPath(cfg.Collect.OutputDir)
	cfg.Collect.DatasetFile = expandPath(cfg.Collect.DatasetFile)
	cfg.Collect.MetadataDir = expandPath(cfg.Collect.MetadataDir)
	cfg.Export.DatabasePath = expandPath(cfg.Export.DatabasePath)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadEnvFile exports the variables of a dotenv file that are not already set.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The study constants (counts, pool size, cap) have no overrides.
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}
	if dir := os.Getenv("SURVEY_OUTPUT_DIR"); dir != "" {
		cfg.Collect.OutputDir = dir
	}
	if file := os.Getenv("SURVEY_DATASET_FILE"); file != "" {
		cfg.Collect.DatasetFile = file
	}
	if dir := os.Getenv("SURVEY_METADATA_DIR"); dir != "" {
		cfg.Collect.MetadataDir = dir
	}
	if uncapped := os.Getenv("SURVEY_UNCAPPED"); uncapped != "" {
		cfg.Collect.Uncapped = parseBool(uncapped)
	}
	if level := os.Getenv("SURVEY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if db := os.Getenv("SURVEY_DATABASE"); db != "" {
		cfg.Export.DatabasePath = db
	}
}

// resolveToken reads the credential from the configured variable, falling
// back to TOKEN for older setups.
func resolveToken(tokenEnv string) string {
	if tokenEnv != "" {
		if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv(legacyTokenEnv))
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// RequireToken returns ErrMissingToken when no credential was resolved.
// Commands that talk to the API call it before building any client.
func (c *Config) RequireToken() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("set %s in the environment or .env file: %w", c.GitHub.TokenEnv, surveyerrors.ErrMissingToken)
	}
	return nil
}

// Validate checks if the configuration contains valid values. This should be
// called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	if c.GitHub.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %s", c.GitHub.RequestTimeout)
	}
	if c.Collect.TargetRepositories <= 0 {
		return fmt.Errorf("target repositories must be positive, got: %d", c.Collect.TargetRepositories)
	}
	if c.Collect.MinPullRequests < 0 {
		return fmt.Errorf("minimum pull requests cannot be negative, got: %d", c.Collect.MinPullRequests)
	}
	if !c.Collect.Uncapped && c.Collect.PullRequestCap <= 0 {
		return fmt.Errorf("pull request cap must be positive unless uncapped, got: %d", c.Collect.PullRequestCap)
	}
	if c.Collect.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got: %d", c.Collect.Workers)
	}
	if c.Collect.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Collect.RepositoryPause < 0 || c.Collect.PullRequestPause < 0 {
		return fmt.Errorf("page pauses cannot be negative")
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("retry max attempts must be between 1 and %d, got: %d", MaxRetryAttempts, c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.JitterBound < 0 {
		return fmt.Errorf("retry delays cannot be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
