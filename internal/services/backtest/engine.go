// Package backtest computes inception-to-date performance metrics over a
// price history and derives a rolling BUY/SELL/HOLD signal stream. Every
// metric degrades to a neutral zero on short input; the engine never fails.
package backtest

import (
	"math"
	"sort"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/signals"
	"github.com/dmikhr/cardtrend/internal/stats"
)

const (
	// DefaultRiskFreeRate is the annual risk-free rate used in the Sharpe
	// ratio when none is configured.
	DefaultRiskFreeRate = 0.03

	tradingDaysPerYear = 252

	// regressionWindow bounds the trend regression and momentum lookback.
	regressionWindow = 30

	// minTrendPoints is the floor below which the trend reads insufficient_data.
	minTrendPoints = 10

	// signalWindow is the rolling window for the signal stream; the first
	// window-ful of points is a cold start and produces no signals.
	signalWindow = 30
)

// Engine runs inception-to-date backtests. Zero value is not usable; construct
// with New.
type Engine struct {
	riskFreeRate float64
}

// New creates an engine. A non-positive rate falls back to the default 3%.
func New(riskFreeRate float64) *Engine {
	if riskFreeRate <= 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	return &Engine{riskFreeRate: riskFreeRate}
}

// Run computes the full metric set and the rolling signal stream for one
// card's history. Price-level statistics (StdDev and the bands derived from
// it) use the population standard deviation, treating the history as the
// complete record rather than a sample. Zero observations yield the all-zero
// no_data result.
func (e *Engine) Run(obs []domain.Observation) (domain.BacktestMetrics, []domain.Signal) {
	if len(obs) == 0 {
		return domain.BacktestMetrics{Trend: domain.TrendLabelNoData}, nil
	}

	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	prices := make([]float64, len(sorted))
	for i, o := range sorted {
		prices[i] = o.PriceFloat()
	}

	m := domain.BacktestMetrics{
		InceptionDate: sorted[0].Timestamp,
		CurrentDate:   sorted[len(sorted)-1].Timestamp,

		MeanPrice:    stats.Mean(prices),
		MedianPrice:  stats.Median(prices),
		StdDev:       stats.PopulationStd(prices),
		MinPrice:     stats.Min(prices),
		MaxPrice:     stats.Max(prices),
		CurrentPrice: prices[len(prices)-1],
	}
	m.DaysTracked = int(m.CurrentDate.Sub(m.InceptionDate).Hours() / 24)

	if first := prices[0]; first > 0 && len(prices) > 1 {
		m.TotalReturnPct = (prices[len(prices)-1] - first) / first * 100
	}
	if m.DaysTracked > 0 {
		m.AnnualizedReturnPct = (math.Pow(1+m.TotalReturnPct/100, 365.25/float64(m.DaysTracked)) - 1) * 100
	}
	if m.MeanPrice != 0 {
		m.VolatilityPct = m.StdDev / m.MeanPrice * 100
	}
	m.SharpeRatio = e.sharpe(prices)

	m.Trend = classifyTrend(prices, m.MeanPrice)
	m.MomentumPct = momentum(prices)

	m.SupportLevel = stats.Percentile(prices, 0.25)
	m.ResistanceLevel = stats.Percentile(prices, 0.75)
	m.UpperBand = m.MeanPrice + m.StdDev
	m.LowerBand = m.MeanPrice - m.StdDev
	m.Confidence95 = domain.ConfidenceInterval{
		Lower: m.MeanPrice - 1.96*m.StdDev,
		Upper: m.MeanPrice + 1.96*m.StdDev,
	}

	return m, rollingSignals(sorted, prices, m.Trend)
}

// sharpe annualizes the mean of successive percentage changes against their
// dispersion. Zero when the history has fewer than two points or no variance.
func (e *Engine) sharpe(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(changes) == 0 {
		return 0
	}

	std := stats.PopulationStd(changes)
	if std == 0 {
		return 0
	}
	return (stats.Mean(changes)*tradingDaysPerYear - e.riskFreeRate) / (std * math.Sqrt(tradingDaysPerYear))
}

// classifyTrend fits a regression over the last 30 points and buckets the
// slope, normalized by the overall mean price, into five classes.
func classifyTrend(prices []float64, meanPrice float64) domain.TrendLabel {
	if len(prices) < minTrendPoints {
		return domain.TrendLabelInsufficientData
	}

	window := prices
	if len(window) > regressionWindow {
		window = window[len(window)-regressionWindow:]
	}

	if meanPrice == 0 {
		return domain.TrendLabelStable
	}
	normalized := stats.Slope(window) / meanPrice * 100

	switch {
	case normalized > 2:
		return domain.TrendLabelStrongUpward
	case normalized > 0.5:
		return domain.TrendLabelUpward
	case normalized > -0.5:
		return domain.TrendLabelStable
	case normalized > -2:
		return domain.TrendLabelDownward
	default:
		return domain.TrendLabelStrongDownward
	}
}

// momentum is the percent change across the most recent 30 points.
func momentum(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	window := prices
	if len(window) > regressionWindow {
		window = window[len(window)-regressionWindow:]
	}
	if window[0] == 0 {
		return 0
	}
	return (window[len(window)-1] - window[0]) / window[0] * 100
}

// rollingSignals classifies each point after the cold start against the
// rolling mean and std of the trailing window.
func rollingSignals(sorted []domain.Observation, prices []float64, trend domain.TrendLabel) []domain.Signal {
	if len(prices) <= signalWindow {
		return nil
	}

	stream := make([]domain.Signal, 0, len(prices)-signalWindow)
	for i := signalWindow; i < len(prices); i++ {
		window := prices[i-signalWindow+1 : i+1]
		s := signals.Classify(
			sorted[i].Timestamp,
			prices[i],
			stats.Mean(window),
			stats.PopulationStd(window),
			trend,
		)
		stream = append(stream, s)
	}
	return stream
}
