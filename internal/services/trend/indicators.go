package trend

import (
	"sort"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	cinartrend "github.com/cinar/indicator/v2/trend"

	"github.com/dmikhr/cardtrend/internal/domain"
)

// minIndicatorPoints is the series length needed before EMA50 and RSI14 have
// warmed up (50 for the long EMA plus one extra change for RSI).
const minIndicatorPoints = 51

// technicals computes supplemental EMA/RSI readings over the chronological
// price series. Returns nil when the series is too short; the report carries
// no indicators in that case.
func technicals(obs []domain.Observation) *domain.TechnicalIndicators {
	if len(obs) < minIndicatorPoints {
		return nil
	}

	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	closes := make([]float64, len(sorted))
	for i, o := range sorted {
		closes[i] = o.PriceFloat()
	}

	ema20 := lastValue(helper.ChanToSlice(
		cinartrend.NewEmaWithPeriod[float64](20).Compute(helper.SliceToChan(closes))))
	ema50 := lastValue(helper.ChanToSlice(
		cinartrend.NewEmaWithPeriod[float64](50).Compute(helper.SliceToChan(closes))))
	rsi14 := lastValue(helper.ChanToSlice(
		momentum.NewRsiWithPeriod[float64](14).Compute(helper.SliceToChan(closes))))

	return &domain.TechnicalIndicators{
		EMA20: ema20,
		EMA50: ema50,
		RSI14: rsi14,
	}
}

func lastValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
