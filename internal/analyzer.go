package internal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmikhr/cardtrend/config"
	"github.com/dmikhr/cardtrend/internal/cache"
	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/aggregator"
	"github.com/dmikhr/cardtrend/internal/services/backtest"
	"github.com/dmikhr/cardtrend/internal/services/grading"
	"github.com/dmikhr/cardtrend/internal/services/signals"
	"github.com/dmikhr/cardtrend/internal/services/trend"
)

// Collector gathers observations for one card across every source.
type Collector interface {
	CollectAll(ctx context.Context, query domain.Query) []domain.Observation
}

// ReportStore persists analysis reports between runs.
type ReportStore interface {
	Save(report domain.AnalysisReport) error
	LatestFor(cardName string) (*domain.AnalysisReport, error)
}

// Analyzer wires the full pipeline: collection, aggregation, trend scoring,
// backtesting, strategy simulation and grading economics. One instance serves
// any number of cards.
type Analyzer struct {
	collector  Collector
	backtester *backtest.Engine
	grader     *grading.Analyzer
	store      ReportStore
	cache      *cache.Cache[string, domain.AnalysisReport]
	cfg        config.Config
	logger     *zap.Logger
}

// NewAnalyzer creates the pipeline. The store may be nil; history-dependent
// features (signal-change alerts) are skipped then.
func NewAnalyzer(cfg config.Config, collector Collector, store ReportStore, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		collector:  collector,
		backtester: backtest.New(cfg.RiskFreeRate),
		grader:     grading.New(cfg.GradingCost, cfg.GradingAuthority),
		store:      store,
		cache:      cache.New[string, domain.AnalysisReport](cfg.CacheTTL, cfg.CacheEntries),
		cfg:        cfg,
		logger:     logger,
	}
}

// Analyze runs the pipeline for one card. The only error condition is zero
// observations after every adapter's fallback; everything else degrades to
// neutral metrics. A non-nil alert means the latest signal changed since the
// previous stored analysis.
func (a *Analyzer) Analyze(ctx context.Context, cardName string) (domain.AnalysisReport, *domain.Alert, error) {
	if cached, ok := a.cache.Get(cardName); ok {
		a.logger.Debug("serving cached analysis", zap.String("card", cardName))
		return cached, nil, nil
	}

	obs := a.collector.CollectAll(ctx, domain.Query{
		CardName:   cardName,
		MaxResults: a.cfg.MaxResults,
	})
	if len(obs) == 0 {
		return domain.AnalysisReport{}, nil, &domain.AnalysisFailedError{
			CardName: cardName,
			Reason:   "no observations from any source, including fallbacks",
		}
	}

	snapshot := aggregator.Aggregate(cardName, obs)
	trendReport := trend.Score(snapshot, obs)
	metrics, stream := a.backtester.Run(obs)
	strategy := signals.SimulateStrategy(obs, stream, a.cfg.InitialCapital)
	assessment := a.grader.Analyze(obs)

	report := domain.AnalysisReport{
		ID:          uuid.NewString(),
		CardName:    cardName,
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snapshot,
		Trend:       trendReport,
		Backtest:    metrics,
		Signals:     stream,
		Strategy:    strategy,
		Grading:     assessment,
		SuccessRate: a.grader.EstimateSuccessRate(obs),
	}

	alert := a.detectSignalChange(report)
	a.persist(report)
	a.cache.Set(cardName, report)

	a.logger.Info("analysis complete",
		zap.String("card", cardName),
		zap.Int("observations", len(obs)),
		zap.Float64("trend_score", trendReport.Score.Total),
		zap.String("recommendation", string(trendReport.Prediction.Recommendation)))

	return report, alert, nil
}

// AnalyzeAll runs every card concurrently and returns the successful reports
// sorted by trend score, best first. Per-card failures do not abort the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, cards []string) ([]domain.AnalysisReport, []domain.Alert) {
	reports := make([]*domain.AnalysisReport, len(cards))
	var (
		mu     sync.Mutex
		alerts []domain.Alert
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, card := range cards {
		i, card := i, card
		g.Go(func() error {
			report, alert, err := a.Analyze(ctx, card)
			if err != nil {
				a.logger.Error("card analysis failed", zap.String("card", card), zap.Error(err))
				return nil
			}
			reports[i] = &report
			if alert != nil {
				mu.Lock()
				alerts = append(alerts, *alert)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.AnalysisReport, 0, len(cards))
	for _, r := range reports {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Trend.Score.Total > out[j].Trend.Score.Total
	})
	return out, alerts
}

func (a *Analyzer) detectSignalChange(report domain.AnalysisReport) *domain.Alert {
	if a.store == nil {
		return nil
	}
	current := report.LatestSignal()
	if current == nil {
		return nil
	}

	previous, err := a.store.LatestFor(report.CardName)
	if err != nil {
		a.logger.Warn("could not load previous analysis", zap.String("card", report.CardName), zap.Error(err))
		return nil
	}
	if previous == nil {
		return nil
	}
	prevSignal := previous.LatestSignal()
	if prevSignal == nil {
		return nil
	}

	return signals.DetectAlert(report.CardName, *prevSignal, *current)
}

// persist failures are logged, never surfaced: history is a convenience, the
// analysis itself already succeeded.
func (a *Analyzer) persist(report domain.AnalysisReport) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(report); err != nil {
		a.logger.Warn("could not persist analysis report",
			zap.String("card", report.CardName), zap.Error(err))
	}
}
