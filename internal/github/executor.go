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

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
)

// CallObserver is notified of every HTTP attempt the executor makes.
type CallObserver interface {
	IncrementAPICall()
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Endpoint string
	Token    string

	// Timeout bounds each attempt, not the whole retry sequence.
	Timeout time.Duration

	Policy   RetryPolicy
	Observer CallObserver

	// Transport replaces the pooled base transport. Auth is still applied.
	Transport http.RoundTripper
}

// Executor posts raw GraphQL documents to the endpoint and retries transient
// failures according to its RetryPolicy.
type Executor struct {
	endpoint   string
	token      string
	timeout    time.Duration
	policy     RetryPolicy
	observer   CallObserver
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewExecutor returns an Executor. It fails with ErrMissingToken when no
// token is configured.
func NewExecutor(opts ExecutorOptions, log *zap.SugaredLogger) (*Executor, error) {
	if opts.Token == "" {
		return nil, surveyerrors.ErrMissingToken
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	base := opts.Transport
	if base == nil {
		base = newPooledTransport()
	}

	e := &Executor{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		observer: opts.Observer,
		httpClient: &http.Client{
			Transport: newAuthTransport(opts.Token, base),
		},
		log: log.Named("executor"),
	}
	if e.policy.OnRetry == nil {
		e.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			e.log.Warnw("request failed, retrying",
				"attempt", attempt,
				"max_attempts", e.policy.MaxAttempts,
				"wait", wait.Round(time.Millisecond),
				"error", err)
		}
	}
	return e, nil
}

// Execute sends req and returns the decoded envelope. A response carrying an
// errors list is logged and still returned; callers inspect Response.Errors.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	if e.token == "" {
		return nil, surveyerrors.ErrMissingToken
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp *Response
	err = e.policy.Do(ctx, func(ctx context.Context, _ int) error {
		if e.observer != nil {
			e.observer.IncrementAPICall()
		}
		r, err := e.attempt(ctx, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		e.log.Errorw("request failed", "error", err)
		return nil, err
	}

	if len(resp.Errors) > 0 {
		e.log.Warnw("graphql errors in response",
			"count", len(resp.Errors),
			"first", resp.Errors[0].Message,
			"has_data", resp.HasData())
	}
	return resp, nil
}

func (e *Executor) attempt(ctx context.Context, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	res, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("read response body: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Code: res.StatusCode, Body: truncate(string(data), 200)}
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &transportError{err: fmt.Errorf("decode response: %w", err)}
	}
	return &resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
