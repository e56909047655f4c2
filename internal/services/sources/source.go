// Package sources contains the per-marketplace price adapters. Every adapter
// implements the same Collect capability; the orchestrator only ever sees the
// Source interface, never a concrete marketplace.
package sources

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/fetcher"
)

const defaultMaxResults = 50

// Parser turns a raw payload into observations. Implementations skip
// malformed records individually instead of failing the whole payload.
type Parser func(payload []byte, query domain.Query) ([]domain.Observation, error)

// Source is the capability every concrete adapter provides.
type Source interface {
	Name() string
	// Collect returns price observations for the query. The returned error is
	// non-nil only when real collection failed and the fallback is disabled;
	// otherwise degraded collections are topped up with synthetic data.
	Collect(ctx context.Context, query domain.Query) (domain.SourceResult, error)
}

// FallbackPolicy is the explicit policy deciding when an adapter switches to
// the synthetic generator. It is a completeness guarantee for downstream
// stages, not incidental error recovery.
type FallbackPolicy struct {
	// MinUsableRecords is the minimum number of usable real records below
	// which the adapter tops the result up with synthetic observations.
	MinUsableRecords int
	// Disabled turns the synthetic fallback off entirely.
	Disabled bool
}

// DefaultFallbackPolicy tops up below ten usable records.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{MinUsableRecords: 10}
}

// adapter is the shared implementation behind every concrete source: fetch,
// parse, validate, then apply the fallback policy.
type adapter struct {
	name     string
	fetcher  fetcher.Fetcher
	parser   Parser
	buildURL func(query domain.Query) string
	synth    *Generator
	policy   FallbackPolicy
	logger   *zap.Logger
}

func (a *adapter) Name() string {
	return a.name
}

func (a *adapter) Collect(ctx context.Context, query domain.Query) (domain.SourceResult, error) {
	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	obs, ok, err := a.collectReal(ctx, query, maxResults)

	if ok && len(obs) >= a.policy.MinUsableRecords {
		return domain.SourceResult{Source: a.name, Observations: obs}, nil
	}

	if a.policy.Disabled {
		a.logger.Warn("fallback disabled, returning degraded result",
			zap.Int("usable", len(obs)), zap.Bool("collected", ok))
		return domain.SourceResult{Source: a.name, Observations: obs}, err
	}

	need := maxResults - len(obs)
	if need < a.policy.MinUsableRecords-len(obs) {
		need = a.policy.MinUsableRecords - len(obs)
	}
	a.logger.Info("topping up with synthetic observations",
		zap.Int("usable", len(obs)), zap.Int("synthetic", need))

	obs = append(obs, a.synth.Generate(timeNow(), need)...)
	return domain.SourceResult{Source: a.name, Observations: obs, Synthetic: true}, nil
}

// collectReal fetches and parses the marketplace payload. The ok flag is
// false when the fetch or the whole-payload parse failed; individual bad
// records are dropped silently by the parser.
func (a *adapter) collectReal(ctx context.Context, query domain.Query, maxResults int) ([]domain.Observation, bool, error) {
	payload, err := a.fetcher.Fetch(ctx, a.buildURL(query))
	if err != nil {
		a.logger.Warn("fetch failed", zap.Error(err))
		return nil, false, err
	}

	parsed, err := a.parser(payload, query)
	if err != nil {
		a.logger.Warn("payload unparseable", zap.Error(err))
		return nil, false, err
	}

	obs := make([]domain.Observation, 0, len(parsed))
	for _, o := range parsed {
		if err := o.Validate(); err != nil {
			a.logger.Debug("dropping invalid observation", zap.Error(err))
			continue
		}
		obs = append(obs, o)
		if len(obs) == maxResults {
			break
		}
	}
	return obs, true, nil
}

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now() }
