// Package aggregator reconciles merged observations into a single snapshot:
// per-source statistics, graded-vs-ungraded comparison, trend indicators and
// a data-quality score. Aggregation is a pure function; the same input always
// yields an identical snapshot.
package aggregator

import (
	"sort"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/stats"
)

const (
	// velocityWindow is the number of observations averaged at each end of
	// the series when computing price velocity.
	velocityWindow = 10

	// neutralAgreement is used when fewer than two sources reported; a CV
	// over a single mean would degenerate to perfect agreement.
	neutralAgreement = 10.0
)

// Aggregate groups observations by source and computes the reconciled
// cross-source snapshot for one card.
func Aggregate(cardName string, obs []domain.Observation) domain.AggregatedSnapshot {
	snap := domain.AggregatedSnapshot{
		CardName: cardName,
		BySource: make(map[string]domain.SourceStats),
		GradedVsUngraded: domain.GradedComparison{
			Sufficient: false,
		},
		Trend: domain.TrendIndicators{Direction: domain.TrendStable},
	}
	if len(obs) == 0 {
		return snap
	}

	sorted := sortObservations(obs)
	snap.From = sorted[0].Timestamp
	snap.To = sorted[len(sorted)-1].Timestamp
	snap.TotalDataPoints = len(sorted)

	bySource := make(map[string][]float64)
	var all, graded, ungraded []float64
	for _, o := range sorted {
		p := o.PriceFloat()
		bySource[o.Source] = append(bySource[o.Source], p)
		all = append(all, p)
		if o.Graded {
			graded = append(graded, p)
		} else {
			ungraded = append(ungraded, p)
		}
	}

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Strings(names)
	snap.Sources = names

	sourceMeans := make([]float64, 0, len(names))
	for _, name := range names {
		prices := bySource[name]
		s := domain.SourceStats{
			Mean:   stats.Mean(prices),
			Median: stats.Median(prices),
			Min:    stats.Min(prices),
			Max:    stats.Max(prices),
			Count:  len(prices),
		}
		snap.BySource[name] = s
		sourceMeans = append(sourceMeans, s.Mean)
	}

	snap.GradedVsUngraded = compareGraded(graded, ungraded)
	snap.Trend = trendIndicators(sorted, all)
	snap.AgreementScore = agreementScore(sourceMeans)
	snap.Quality = domain.DataQuality{
		TotalDataPoints: len(sorted),
		SourceCount:     len(names),
		Confidence:      stats.Clamp(float64(len(sorted))/2+float64(len(names))*10, 0, 100),
	}

	return snap
}

func sortObservations(obs []domain.Observation) []domain.Observation {
	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		return sorted[i].Price.LessThan(sorted[j].Price)
	})
	return sorted
}

// compareGraded splits the set into graded/ungraded means. The multiplier is
// left at zero with Sufficient=false when either subset is empty or the
// ungraded mean is zero; it never divides by zero.
func compareGraded(graded, ungraded []float64) domain.GradedComparison {
	c := domain.GradedComparison{
		UngradedMean:  stats.Mean(ungraded),
		GradedMean:    stats.Mean(graded),
		UngradedCount: len(ungraded),
		GradedCount:   len(graded),
	}
	if len(graded) == 0 || len(ungraded) == 0 || c.UngradedMean == 0 {
		return c
	}
	c.Multiplier = c.GradedMean / c.UngradedMean
	c.Sufficient = true
	return c
}

func trendIndicators(sorted []domain.Observation, all []float64) domain.TrendIndicators {
	ti := domain.TrendIndicators{Direction: domain.TrendStable}

	ti.VelocityPct = velocity(sorted)
	switch {
	case ti.VelocityPct > 5:
		ti.Direction = domain.TrendUpward
	case ti.VelocityPct < -5:
		ti.Direction = domain.TrendDownward
	}

	if mean := stats.Mean(all); mean != 0 {
		ti.VolatilityPct = stats.PopulationStd(all) / mean * 100
	}
	return ti
}

// velocity is the percent change between the mean of the most recent window
// and the mean of the earliest window of the chronologically sorted series.
// Windows shrink to half the series when there are fewer than twenty points.
func velocity(sorted []domain.Observation) float64 {
	n := len(sorted)
	if n < 2 {
		return 0
	}
	w := velocityWindow
	if n < 2*w {
		w = n / 2
	}

	earliest := make([]float64, 0, w)
	recent := make([]float64, 0, w)
	for i := 0; i < w; i++ {
		earliest = append(earliest, sorted[i].PriceFloat())
		recent = append(recent, sorted[n-w+i].PriceFloat())
	}

	earliestMean := stats.Mean(earliest)
	if earliestMean == 0 {
		return 0
	}
	return (stats.Mean(recent) - earliestMean) / earliestMean * 100
}

// agreementScore maps the coefficient of variation of per-source means onto
// [0,20]: CV 0 scores 20, CV 0.5 and beyond scores 0.
func agreementScore(sourceMeans []float64) float64 {
	if len(sourceMeans) < 2 {
		return neutralAgreement
	}
	mean := stats.Mean(sourceMeans)
	if mean == 0 {
		return neutralAgreement
	}
	cv := stats.SampleStd(sourceMeans) / mean
	return stats.Clamp(20*(1-2*cv), 0, 20)
}
