package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
	"github.com/sirseerhq/sirseer-survey/internal/github"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			input:     "golang/go",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			input:     " kubernetes / kubernetes ",
			wantOwner: "kubernetes",
			wantRepo:  "kubernetes",
		},
		{input: "invalid", wantErr: true},
		{input: "too/many/slashes", wantErr: true},
		{input: "/repo", wantErr: true},
		{input: "owner/", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		owner, repo, err := parseRepository(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr {
			if owner != tt.wantOwner {
				t.Errorf("parseRepository(%q) owner = %q, want %q", tt.input, owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("parseRepository(%q) repo = %q, want %q", tt.input, repo, tt.wantRepo)
			}
		}
	}
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "generic", err: errors.New("boom"), want: 1},
		{name: "missing token", err: fmt.Errorf("set GITHUB_TOKEN: %w", surveyerrors.ErrMissingToken), want: 2},
		{name: "invalid token", err: surveyerrors.ErrInvalidToken, want: 2},
		{name: "not found", err: surveyerrors.ErrRepoNotFound, want: 2},
		{name: "rate limit", err: surveyerrors.ErrRateLimit, want: 2},
		{name: "unauthorized status", err: fmt.Errorf("search: %w", &github.StatusError{Code: http.StatusUnauthorized}), want: 2},
		{name: "forbidden status", err: &github.StatusError{Code: http.StatusForbidden}, want: 2},
		{name: "server error status", err: &github.StatusError{Code: http.StatusInternalServerError}, want: 1},
		{name: "network", err: surveyerrors.ErrNetworkFailure, want: 3},
		{
			name: "retries exhausted",
			err:  fmt.Errorf("%w after %d attempts: %w", surveyerrors.ErrRetriesExhausted, 7, &github.StatusError{Code: http.StatusBadGateway}),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToExitCode(tt.err); got != tt.want {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"collect", "combine", "summarize", "inspect", "export", "status"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s not registered: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}
