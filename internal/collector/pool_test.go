package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-survey/internal/github"
	"github.com/sirseerhq/sirseer-survey/internal/output"
)

type countingProcessor struct {
	active  atomic.Int64
	peak    atomic.Int64
	handled sync.Map
	delay   time.Duration
}

func (p *countingProcessor) Process(ctx context.Context, c github.RepositoryCandidate) int {
	n := p.active.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(p.delay)
	p.active.Add(-1)
	p.handled.Store(c.FullName(), true)
	return c.PullRequestCount
}

func TestPool_ResultsInInputOrder(t *testing.T) {
	var candidates []github.RepositoryCandidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, github.RepositoryCandidate{Owner: "o", Name: fmt.Sprintf("r%d", i), PullRequestCount: i})
	}
	proc := &countingProcessor{delay: 5 * time.Millisecond}

	results, err := NewPool(3, proc, nil).Run(context.Background(), candidates)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for i, n := range results {
		assert.Equal(t, i, n)
	}
	assert.Equal(t, 45, Total(results))
	assert.LessOrEqual(t, proc.peak.Load(), int64(3))
}

func TestPool_Empty(t *testing.T) {
	results, err := NewPool(3, &countingProcessor{}, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, Total(results))
}

func TestPool_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := []github.RepositoryCandidate{candidate("a", "b"), candidate("c", "d")}
	_, err := NewPool(1, &countingProcessor{}, nil).Run(ctx, candidates)
	assert.True(t, err == nil || errors.Is(err, context.Canceled))
}

func TestPool_FailureIsolation(t *testing.T) {
	dir := t.TempDir()
	fetcher := &fakeFetcher{
		nodes: map[string][]*github.PullRequestNode{
			"a/one":   {reviewedNode(1)},
			"c/three": {reviewedNode(1), reviewedNode(2)},
		},
		errs: map[string]error{"b/two": errors.New("network down")},
	}
	worker := NewWorker(fetcher, WorkerOptions{OutputDir: dir, Limit: 200}, nil)

	results, err := NewPool(3, worker, nil).Run(context.Background(), []github.RepositoryCandidate{
		candidate("a", "one"), candidate("b", "two"), candidate("c", "three"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, results)
}

func TestPool_ResumeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	fetcher := &fakeFetcher{nodes: map[string][]*github.PullRequestNode{
		"a/one": {reviewedNode(1)},
		"b/two": {reviewedNode(2), reviewedNode(3)},
	}}
	candidates := []github.RepositoryCandidate{candidate("a", "one"), candidate("b", "two")}

	first, err := NewPool(3, NewWorker(fetcher, WorkerOptions{OutputDir: dir}, nil), nil).Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, first)
	assert.Len(t, fetcher.calls, 2)

	before, err := os.ReadFile(filepath.Join(dir, "b-two.csv"))
	require.NoError(t, err)

	second, err := NewPool(3, NewWorker(fetcher, WorkerOptions{OutputDir: dir}, nil), nil).Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, second)
	assert.Len(t, fetcher.calls, 2, "second run must not fetch")

	after, err := os.ReadFile(filepath.Join(dir, "b-two.csv"))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	res, err := output.Combine(dir, filepath.Join(t.TempDir(), "dataset.csv"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
}
