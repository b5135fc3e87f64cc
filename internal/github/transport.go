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
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sirseerhq/sirseer-survey/internal/giterror"
	"github.com/sirseerhq/sirseer-survey/pkg/version"
)

// maxResponseBytes caps the size of a single response body.
const maxResponseBytes = 10 * 1024 * 1024

// newPooledTransport returns the base transport shared by all clients.
func newPooledTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// authTransport adds the bearer token, the User-Agent and a response size
// limit to every request.
type authTransport struct {
	base http.RoundTripper
}

func newAuthTransport(token string, base http.RoundTripper) http.RoundTripper {
	return &authTransport{
		base: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		},
	}
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-survey/%s", version.Version))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		resp.Body = &limitedReader{ReadCloser: resp.Body, limit: maxResponseBytes}
	}
	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}
	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)
	return n, err
}

// retryTransport repeats requests that fail in transport or come back with a
// gateway status, following the same RetryPolicy as the Executor. A positive
// timeout bounds each attempt, body read included.
type retryTransport struct {
	base    http.RoundTripper
	policy  RetryPolicy
	timeout time.Duration
}

func newRetryTransport(base http.RoundTripper, policy RetryPolicy, timeout time.Duration) http.RoundTripper {
	return &retryTransport{base: base, policy: policy, timeout: timeout}
}

// RoundTrip implements http.RoundTripper with retry logic.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := t.policy.Do(req.Context(), func(ctx context.Context, attempt int) error {
		cancel := context.CancelFunc(func() {})
		if t.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, t.timeout)
		}

		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				cancel()
				return fmt.Errorf("rewind request body: %w", err)
			}
			attemptReq.Body = body
		}

		res, err := t.base.RoundTrip(attemptReq)
		if err != nil {
			cancel()
			return err
		}
		if giterror.IsRetryableStatus(res.StatusCode) {
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
			res.Body.Close()
			cancel()
			return &StatusError{Code: res.StatusCode}
		}
		res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
		resp = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// cancelOnClose releases an attempt's context once its body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
