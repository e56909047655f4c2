// Command cardtrend analyzes collectible card prices across several
// marketplaces: it collects recent sales, scores the price trend, backtests
// the history into BUY/SELL/HOLD signals, and prices the grading decision.
//
// Usage:
//
//	cardtrend --config config.yaml
//	cardtrend --cards "Charizard Base Set,Pikachu Illustrator"
//	cardtrend --setup   (interactive configuration wizard)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/config"
	"github.com/dmikhr/cardtrend/internal"
	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/collector"
	"github.com/dmikhr/cardtrend/internal/services/fetcher"
	"github.com/dmikhr/cardtrend/internal/services/sources"
	"github.com/dmikhr/cardtrend/internal/setup"
	"github.com/dmikhr/cardtrend/internal/storage/analyses"
)

func main() {
	setupFlag := flag.Bool("setup", false, "run the interactive configuration wizard")

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if *setupFlag {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		cfg, err = config.FromFile("config.gen.yaml")
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := analyses.NewWALStore(cfg.WalDir)
	if err != nil {
		logger.Warn("analysis history unavailable", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	srcs, err := buildSources(cfg, logger)
	if err != nil {
		logger.Fatal("source setup failed", zap.Error(err))
	}

	orchestrator := collector.New(srcs, cfg.CollectDeadline, logger)

	var reportStore internal.ReportStore
	if store != nil {
		reportStore = store
	}
	analyzer := internal.NewAnalyzer(cfg, orchestrator, reportStore, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, alerts := analyzer.AnalyzeAll(ctx, cfg.Cards)
	for _, report := range reports {
		printReport(report)
	}
	for _, alert := range alerts {
		fmt.Printf("\n!! ALERT [%s] %s\n", alert.Priority, alert.Message)
	}

	if len(reports) == 0 {
		logger.Fatal("no card could be analyzed")
	}
}

func buildSources(cfg config.Config, logger *zap.Logger) ([]sources.Source, error) {
	policy := sources.FallbackPolicy{
		MinUsableRecords: cfg.FallbackMinRecords,
		Disabled:         cfg.FallbackDisabled,
	}

	newFetcher := func(name string) fetcher.Fetcher {
		return fetcher.NewRateLimited(name, logger,
			fetcher.WithDelayWindow(cfg.DelayMin, cfg.DelayMax),
			fetcher.WithMaxRetries(int(cfg.MaxRetries)),
			fetcher.WithBackoffStep(cfg.BackoffStep),
			fetcher.WithTimeout(cfg.FetchTimeout),
		)
	}

	srcs := make([]sources.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case "eBay":
			srcs = append(srcs, sources.NewEbay(newFetcher(name), policy, cfg.SyntheticSeed, logger))
		case "PriceCharting":
			srcs = append(srcs, sources.NewPriceCharting(newFetcher(name), policy, cfg.SyntheticSeed, logger))
		case "TCGPlayer":
			srcs = append(srcs, sources.NewTCGPlayer(newFetcher(name), policy, cfg.SyntheticSeed, logger))
		case "PokeData":
			srcs = append(srcs, sources.NewPokeData(newFetcher(name), policy, cfg.SyntheticSeed, logger))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return srcs, nil
}

func printReport(r domain.AnalysisReport) {
	fmt.Printf("\n=== %s ===\n", r.CardName)
	fmt.Printf("Sources: %s (%d observations, %s to %s)\n",
		strings.Join(r.Snapshot.Sources, ", "),
		r.Snapshot.TotalDataPoints,
		r.Snapshot.From.Format("2006-01-02"),
		r.Snapshot.To.Format("2006-01-02"))

	fmt.Printf("Trend score: %.1f/100 (%s, confidence %s)\n",
		r.Trend.Score.Total, r.Trend.Prediction.Direction, r.Trend.ConfidenceLevel)
	fmt.Printf("Recommendation: %s over %s\n",
		r.Trend.Prediction.Recommendation, r.Trend.Prediction.Timeframe)
	for _, factor := range r.Trend.Prediction.KeyFactors {
		fmt.Printf("  - %s\n", factor)
	}

	if r.Trend.Divergence.HasDivergence {
		fmt.Printf("Divergence: buy on %s at %.2f, sell on %s at %.2f (%.0f%% spread)\n",
			r.Trend.Divergence.MinSource, r.Trend.Divergence.MinPrice,
			r.Trend.Divergence.MaxSource, r.Trend.Divergence.MaxPrice,
			r.Trend.Divergence.Pct)
	}

	b := r.Backtest
	fmt.Printf("Backtest: %.2f current, %.2f mean, %+.1f%% total return, %+.1f%% annualized, Sharpe %.2f, trend %s\n",
		b.CurrentPrice, b.MeanPrice, b.TotalReturnPct, b.AnnualizedReturnPct, b.SharpeRatio, b.Trend)
	fmt.Printf("Levels: support %.2f / resistance %.2f, 95%% interval [%.2f, %.2f]\n",
		b.SupportLevel, b.ResistanceLevel, b.Confidence95.Lower, b.Confidence95.Upper)

	if latest := r.LatestSignal(); latest != nil {
		fmt.Printf("Latest signal: %s (%.0f%% confidence) - %s\n",
			latest.Kind, latest.Confidence, latest.Reason)
	}

	s := r.Strategy
	fmt.Printf("Strategy: %.2f -> %.2f (%+.1f%%), %d sells, %.0f%% win rate\n",
		s.InitialCapital, s.FinalValue, s.TotalReturnPct, s.TotalSells, s.WinRate)

	g := r.Grading
	if g.Sufficient {
		fmt.Printf("Grading: %.1fx multiplier, net %.2f after %.0f fee (ROI %.0f%%)\n  %s\n",
			g.Multiplier, g.NetProfit, g.GradingCost, g.ROIPct, g.Recommendation)
		if g.BreakEvenPrice > 0 {
			fmt.Printf("  Break-even purchase price: %.2f\n", g.BreakEvenPrice)
		}
	} else {
		fmt.Printf("Grading: %s\n", g.Recommendation)
	}
	if sr := r.SuccessRate; sr.TotalGraded > 0 {
		fmt.Printf("Top-grade success rate: %.0f%% (%d of %d graded sales, %s confidence)\n",
			sr.TopGradeRate, sr.TopGradeCount, sr.TotalGraded, sr.Confidence)
	}
}
