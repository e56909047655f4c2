// Package trend turns an aggregated snapshot into the 0-100 composite trend
// score, divergence and momentum readings, and a directional prediction.
package trend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/stats"
)

const predictionTimeframe = "30-90 days"

// Score evaluates one snapshot. Observations are only consulted for the
// supplemental technical indicators; the composite score itself is derived
// entirely from the snapshot.
func Score(snap domain.AggregatedSnapshot, obs []domain.Observation) domain.TrendReport {
	score := composite(snap)
	divergence := detectDivergence(snap)
	momentum := measureMomentum(snap)
	prediction := predict(score.Total, momentum, snap, divergence)

	return domain.TrendReport{
		CardName:        snap.CardName,
		Score:           score,
		Divergence:      divergence,
		Momentum:        momentum,
		Prediction:      prediction,
		ConfidenceLevel: domain.ConfidenceLevelFor(snap.Quality.Confidence),
		Quality:         snap.Quality,
		Indicators:      technicals(obs),
		AnalyzedAt:      time.Now().UTC(),
	}
}

func composite(snap domain.AggregatedSnapshot) domain.TrendScore {
	v := snap.Trend.VelocityPct

	velocityScore := stats.Clamp((v+10)*2, 0, 40)
	volumeScore := stats.Clamp(float64(snap.TotalDataPoints)/5, 0, 20)

	var base float64
	switch snap.Trend.Direction {
	case domain.TrendUpward:
		base = 15
	case domain.TrendDownward:
		base = 5
	default:
		base = 10
	}
	adjustment := stats.Clamp((30-snap.Trend.VolatilityPct)/10, -5, 5)
	patternScore := stats.Clamp(base+adjustment, 0, 20)

	return domain.TrendScore{
		Total:     stats.Clamp(velocityScore+volumeScore+snap.AgreementScore+patternScore, 0, 100),
		Velocity:  velocityScore,
		Volume:    volumeScore,
		Agreement: snap.AgreementScore,
		Pattern:   patternScore,
	}
}

// detectDivergence compares per-source means and flags spreads above 10% as a
// potential arbitrage between the cheapest and dearest source.
func detectDivergence(snap domain.AggregatedSnapshot) domain.Divergence {
	var d domain.Divergence
	if len(snap.Sources) < 2 {
		return d
	}

	names := make([]string, len(snap.Sources))
	copy(names, snap.Sources)
	sort.Strings(names)

	d.MinSource = names[0]
	d.MaxSource = names[0]
	d.MinPrice = snap.BySource[names[0]].Mean
	d.MaxPrice = snap.BySource[names[0]].Mean
	for _, name := range names[1:] {
		mean := snap.BySource[name].Mean
		if mean < d.MinPrice {
			d.MinPrice = mean
			d.MinSource = name
		}
		if mean > d.MaxPrice {
			d.MaxPrice = mean
			d.MaxSource = name
		}
	}

	if d.MinPrice <= 0 {
		return d
	}
	d.Pct = (d.MaxPrice - d.MinPrice) / d.MinPrice * 100
	if d.Pct <= 10 {
		return d
	}

	d.HasDivergence = true
	confidence := "medium"
	if d.Pct > 20 {
		confidence = "high"
	}
	d.Opportunities = []domain.Arbitrage{{
		BuySource:          d.MinSource,
		SellSource:         d.MaxSource,
		BuyPrice:           d.MinPrice,
		SellPrice:          d.MaxPrice,
		PotentialProfitPct: d.Pct,
		Confidence:         confidence,
	}}
	return d
}

func measureMomentum(snap domain.AggregatedSnapshot) domain.Momentum {
	v := snap.Trend.VelocityPct

	var strength domain.MomentumStrength
	switch {
	case v > 15:
		strength = domain.MomentumStrongUpward
	case v > 5:
		strength = domain.MomentumModerateUpward
	case v >= -5:
		strength = domain.MomentumNeutral
	case v >= -15:
		strength = domain.MomentumModerateDownward
	default:
		strength = domain.MomentumStrongDownward
	}

	return domain.Momentum{
		PriceMomentumPct: v,
		VolumeIndicator:  snap.TotalDataPoints,
		Strength:         strength,
		BuyPressure:      stats.Clamp(50+v*2, 0, 100),
	}
}

func predict(total float64, momentum domain.Momentum, snap domain.AggregatedSnapshot, divergence domain.Divergence) domain.Prediction {
	var direction string
	var rec domain.Recommendation
	switch {
	case total > 70:
		direction, rec = "strong_upward", domain.RecommendBuy
	case total >= 55:
		direction, rec = "upward", domain.RecommendBuy
	case total >= 45:
		direction, rec = "stable", domain.RecommendHold
	case total >= 30:
		direction, rec = "downward", domain.RecommendSell
	default:
		direction, rec = "strong_downward", domain.RecommendSell
	}

	adjustment := -10.0
	if momentumAgrees(direction, momentum.Strength) {
		adjustment = 10.0
	}

	return domain.Prediction{
		Direction:      direction,
		Recommendation: rec,
		Confidence:     stats.Clamp(snap.Quality.Confidence+adjustment, 0, 100),
		Timeframe:      predictionTimeframe,
		KeyFactors:     keyFactors(snap, momentum, divergence),
	}
}

func momentumAgrees(direction string, strength domain.MomentumStrength) bool {
	switch {
	case strings.HasSuffix(direction, "upward"):
		return strength == domain.MomentumStrongUpward || strength == domain.MomentumModerateUpward
	case strings.HasSuffix(direction, "downward"):
		return strength == domain.MomentumStrongDownward || strength == domain.MomentumModerateDownward
	default:
		return strength == domain.MomentumNeutral
	}
}

func keyFactors(snap domain.AggregatedSnapshot, momentum domain.Momentum, divergence domain.Divergence) []string {
	var factors []string

	v := snap.Trend.VelocityPct
	switch {
	case v > 15:
		factors = append(factors, fmt.Sprintf("Strong price appreciation (%+.1f%%)", v))
	case v > 5:
		factors = append(factors, fmt.Sprintf("Moderate price appreciation (%+.1f%%)", v))
	case v < -15:
		factors = append(factors, fmt.Sprintf("Sharp price decline (%+.1f%%)", v))
	case v < -5:
		factors = append(factors, fmt.Sprintf("Moderate price decline (%+.1f%%)", v))
	}

	if momentum.Strength == domain.MomentumStrongUpward || momentum.Strength == domain.MomentumStrongDownward {
		factors = append(factors, "Strong market momentum")
	}

	if c := snap.GradedVsUngraded; c.Sufficient && c.Multiplier >= 3 {
		factors = append(factors, fmt.Sprintf("High grading multiplier (%.1fx)", c.Multiplier))
	}

	if snap.AgreementScore >= 15 {
		factors = append(factors, "Sources agree closely on price")
	} else if len(snap.Sources) >= 2 && snap.AgreementScore < 5 {
		factors = append(factors, "Sources disagree significantly on price")
	}

	if divergence.HasDivergence {
		factors = append(factors, fmt.Sprintf("%.0f%% spread between %s and %s",
			divergence.Pct, divergence.MinSource, divergence.MaxSource))
	}

	if snap.Trend.VolatilityPct > 30 {
		factors = append(factors, fmt.Sprintf("High volatility (%.1f%%)", snap.Trend.VolatilityPct))
	}

	if snap.TotalDataPoints < 20 {
		factors = append(factors, fmt.Sprintf("Limited data (%d points)", snap.TotalDataPoints))
	}

	if len(factors) == 0 {
		factors = append(factors, "Stable market with no dominant signal")
	}
	return factors
}
