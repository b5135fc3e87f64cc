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

package collector

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sirseerhq/sirseer-survey/internal/github"
)

// Pool runs a fixed number of workers over a queue of repositories.
type Pool struct {
	size      int
	processor Processor
	log       *zap.SugaredLogger
}

// NewPool creates a pool of size workers sharing processor.
func NewPool(size int, processor Processor, log *zap.SugaredLogger) *Pool {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pool{size: size, processor: processor, log: log.Named("pool")}
}

type task struct {
	index     int
	candidate github.RepositoryCandidate
}

// Run processes every candidate and returns the per-candidate record counts
// in input order. It returns early only when ctx is canceled; individual
// repository failures show up as zero counts.
func (p *Pool) Run(ctx context.Context, candidates []github.RepositoryCandidate) ([]int, error) {
	results := make([]int, len(candidates))
	queue := make(chan task)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for i, c := range candidates {
			select {
			case queue <- task{index: i, candidate: c}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < p.size; i++ {
		g.Go(func() error {
			for t := range queue {
				results[t.index] = p.processor.Process(gctx, t.candidate)
			}
			return nil
		})
	}

	p.log.Infow("processing repositories", "repositories", len(candidates), "workers", p.size)
	err := g.Wait()
	p.log.Infow("workers finished", "repositories", len(candidates), "records", Total(results))
	return results, err
}

// Total sums per-repository counts.
func Total(results []int) int {
	total := 0
	for _, n := range results {
		total += n
	}
	return total
}
