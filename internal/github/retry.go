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
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirseerhq/sirseer-survey/internal/config"
	surveyerrors "github.com/sirseerhq/sirseer-survey/internal/errors"
	"github.com/sirseerhq/sirseer-survey/internal/giterror"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy describes how a failed request is repeated. The wait before
// retry i (counting from 0) is BaseDelay*2^i + JitterBound*U[0,1), saturating
// at the largest time.Duration.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	BaseDelay   time.Duration
	JitterBound time.Duration

	// Retryable decides whether a failed attempt is repeated. Defaults to
	// giterror's transient classification.
	Retryable func(error) bool

	// Sleep and Rand are replaceable so tests run without real waits.
	Sleep SleepFunc
	Rand  func() float64

	// OnRetry is called before each wait with the number of the attempt that
	// just failed.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy returns 7 attempts with 1s base delay and up to 1s of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(config.DefaultConfig().Retry)
}

// NewRetryPolicy builds a policy from configuration.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		JitterBound: cfg.JitterBound,
	}
}

// Backoff returns the wait before retry number attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	r := p.Rand
	if r == nil {
		r = rand.Float64
	}
	wait := float64(p.BaseDelay)*math.Pow(2, float64(attempt)) + float64(p.JitterBound)*r()
	if wait >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(wait)
}

// Do runs op until it succeeds, fails with a non-retryable error, the parent
// context ends, or the attempts are used up. In the last case the final error
// is returned wrapped with ErrRetriesExhausted.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = giterror.NewInspector().IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return err
		}
		if attempt+1 >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", surveyerrors.ErrRetriesExhausted, attempts, err)
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// sleepContext waits for d, returning early with the context error.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
