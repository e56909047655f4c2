// Package collector fans collection out across all source adapters and merges
// their results into one deterministic observation sequence.
package collector

import (
	"context"
	"sort"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/sources"
)

const defaultDeadline = 2 * time.Minute

// Orchestrator runs one collection task per adapter on a bounded worker pool.
// Adapter failures are isolated; tasks still running at the deadline are
// abandoned and contribute nothing.
type Orchestrator struct {
	sources  []sources.Source
	deadline time.Duration
	pool     gopool.Pool
	logger   *zap.Logger
}

// New creates an orchestrator with a pool sized to the adapter count.
func New(srcs []sources.Source, deadline time.Duration, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deadline <= 0 {
		deadline = defaultDeadline
	}

	cap := int32(len(srcs))
	if cap < 1 {
		cap = 1
	}
	pool := gopool.NewPool("collector", cap, gopool.NewConfig())
	pool.SetPanicHandler(func(ctx context.Context, r interface{}) {
		logger.Error("collection task panicked", zap.Any("panic", r))
	})

	return &Orchestrator{
		sources:  srcs,
		deadline: deadline,
		pool:     pool,
		logger:   logger,
	}
}

// CollectAll gathers observations from every adapter concurrently and merges
// completed results, sorted ascending by timestamp with source-name ties
// broken lexically. It always returns whatever arrived before the deadline.
func (o *Orchestrator) CollectAll(ctx context.Context, query domain.Query) []domain.Observation {
	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	// each task delivers its result exactly once; abandoned tasks may still
	// send, the buffer keeps them from leaking
	results := make(chan domain.SourceResult, len(o.sources))
	for _, src := range o.sources {
		src := src
		o.pool.CtxGo(ctx, func() {
			res, err := src.Collect(ctx, query)
			if err != nil {
				o.logger.Warn("source collection failed",
					zap.String("source", src.Name()), zap.Error(err))
			}
			results <- res
		})
	}

	completed := make([]domain.SourceResult, 0, len(o.sources))
	for remaining := len(o.sources); remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			o.logger.Warn("collection deadline elapsed, abandoning outstanding sources",
				zap.Int("outstanding", remaining),
				zap.Int("completed", len(completed)))
			return merge(completed)
		case res := <-results:
			o.logger.Info("source completed",
				zap.String("source", res.Source),
				zap.Int("observations", len(res.Observations)),
				zap.Bool("synthetic", res.Synthetic))
			completed = append(completed, res)
		}
	}

	return merge(completed)
}

// merge flattens results into a single chronologically sorted sequence. The
// order is fully deterministic regardless of task completion order.
func merge(results []domain.SourceResult) []domain.Observation {
	total := 0
	for _, r := range results {
		total += len(r.Observations)
	}

	obs := make([]domain.Observation, 0, total)
	for _, r := range results {
		obs = append(obs, r.Observations...)
	}

	sort.Slice(obs, func(i, j int) bool {
		if !obs[i].Timestamp.Equal(obs[j].Timestamp) {
			return obs[i].Timestamp.Before(obs[j].Timestamp)
		}
		if obs[i].Source != obs[j].Source {
			return obs[i].Source < obs[j].Source
		}
		return obs[i].Price.LessThan(obs[j].Price)
	})

	return obs
}
