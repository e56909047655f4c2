package trend

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmikhr/cardtrend/internal/domain"
)

func snapshot(velocity, volatility float64, direction domain.TrendDirection, points int) domain.AggregatedSnapshot {
	return domain.AggregatedSnapshot{
		CardName:        "Charizard",
		Sources:         []string{"eBay"},
		TotalDataPoints: points,
		BySource: map[string]domain.SourceStats{
			"eBay": {Mean: 100, Count: points},
		},
		Trend: domain.TrendIndicators{
			VelocityPct:   velocity,
			VolatilityPct: volatility,
			Direction:     direction,
		},
		AgreementScore: 10,
		Quality: domain.DataQuality{
			TotalDataPoints: points,
			SourceCount:     1,
			Confidence:      60,
		},
	}
}

func TestScoreVelocityCapped(t *testing.T) {
	// velocity 20 maps to raw 60, must cap at 40
	report := Score(snapshot(20, 10, domain.TrendUpward, 100), nil)
	require.InDelta(t, 40, report.Score.Velocity, 1e-9)
}

func TestScoreStaysWithinBounds(t *testing.T) {
	cases := []struct {
		name string
		snap domain.AggregatedSnapshot
	}{
		{"surging", snapshot(500, 0, domain.TrendUpward, 10000)},
		{"collapsing", snapshot(-500, 300, domain.TrendDownward, 1)},
		{"flat", snapshot(0, 0, domain.TrendStable, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Score(tc.snap, nil)
			require.GreaterOrEqual(t, report.Score.Total, 0.0)
			require.LessOrEqual(t, report.Score.Total, 100.0)
		})
	}
}

func TestScoreSubFactors(t *testing.T) {
	// velocity 20 -> 40, volume 100/5 -> 20, agreement 10,
	// pattern 15 + clamp((30-10)/10) = 17, total 87
	report := Score(snapshot(20, 10, domain.TrendUpward, 100), nil)
	require.InDelta(t, 20, report.Score.Volume, 1e-9)
	require.InDelta(t, 10, report.Score.Agreement, 1e-9)
	require.InDelta(t, 17, report.Score.Pattern, 1e-9)
	require.InDelta(t, 87, report.Score.Total, 1e-9)
}

func TestDivergenceDetection(t *testing.T) {
	snap := snapshot(0, 10, domain.TrendStable, 50)
	snap.Sources = []string{"eBay", "TCGPlayer"}
	snap.BySource = map[string]domain.SourceStats{
		"eBay":      {Mean: 100},
		"TCGPlayer": {Mean: 130},
	}

	report := Score(snap, nil)
	d := report.Divergence
	require.True(t, d.HasDivergence)
	require.InDelta(t, 30, d.Pct, 1e-9)
	require.Equal(t, "eBay", d.MinSource)
	require.Equal(t, "TCGPlayer", d.MaxSource)

	require.Len(t, d.Opportunities, 1)
	arb := d.Opportunities[0]
	require.Equal(t, "eBay", arb.BuySource)
	require.Equal(t, "TCGPlayer", arb.SellSource)
	require.Equal(t, "high", arb.Confidence, "spread above 20%% is high confidence")
}

func TestDivergenceBelowThreshold(t *testing.T) {
	snap := snapshot(0, 10, domain.TrendStable, 50)
	snap.Sources = []string{"eBay", "TCGPlayer"}
	snap.BySource = map[string]domain.SourceStats{
		"eBay":      {Mean: 100},
		"TCGPlayer": {Mean: 105},
	}

	report := Score(snap, nil)
	require.False(t, report.Divergence.HasDivergence)
	require.Empty(t, report.Divergence.Opportunities)
}

func TestMomentumBuckets(t *testing.T) {
	cases := []struct {
		velocity float64
		want     domain.MomentumStrength
	}{
		{20, domain.MomentumStrongUpward},
		{10, domain.MomentumModerateUpward},
		{0, domain.MomentumNeutral},
		{-10, domain.MomentumModerateDownward},
		{-20, domain.MomentumStrongDownward},
	}
	for _, tc := range cases {
		report := Score(snapshot(tc.velocity, 10, domain.TrendStable, 50), nil)
		require.Equal(t, tc.want, report.Momentum.Strength, "velocity %.0f", tc.velocity)
	}
}

func TestBuyPressureClamped(t *testing.T) {
	report := Score(snapshot(100, 10, domain.TrendUpward, 50), nil)
	require.InDelta(t, 100, report.Momentum.BuyPressure, 1e-9)

	report = Score(snapshot(-100, 10, domain.TrendDownward, 50), nil)
	require.Zero(t, report.Momentum.BuyPressure)
}

func TestPredictionRecommendation(t *testing.T) {
	// high score with agreeing upward momentum
	up := Score(snapshot(20, 10, domain.TrendUpward, 100), nil)
	require.Equal(t, domain.RecommendBuy, up.Prediction.Recommendation)
	require.Equal(t, "strong_upward", up.Prediction.Direction)
	require.InDelta(t, 70, up.Prediction.Confidence, 1e-9, "quality 60 plus agreement bonus")

	// collapsing score with agreeing downward momentum
	down := Score(snapshot(-30, 80, domain.TrendDownward, 5), nil)
	require.Equal(t, domain.RecommendSell, down.Prediction.Recommendation)
}

func TestPredictionConfidencePenaltyOnConflict(t *testing.T) {
	// velocity 4 -> 28, volume 6, agreement 10, pattern 12.5: score 56.5 reads
	// upward while momentum stays neutral
	report := Score(snapshot(4, 5, domain.TrendStable, 30), nil)
	require.Equal(t, "upward", report.Prediction.Direction)
	require.Equal(t, domain.MomentumNeutral, report.Momentum.Strength)
	require.InDelta(t, 50, report.Prediction.Confidence, 1e-9, "quality 60 minus conflict penalty")
}

func TestKeyFactorsSurfaceMomentumAndGradingMultiplier(t *testing.T) {
	snap := snapshot(20, 10, domain.TrendUpward, 100)
	snap.GradedVsUngraded = domain.GradedComparison{Multiplier: 4, Sufficient: true}

	report := Score(snap, nil)
	require.Contains(t, report.Prediction.KeyFactors, "Strong market momentum")
	require.Contains(t, report.Prediction.KeyFactors, "High grading multiplier (4.0x)")

	// neither factor without strong momentum or a confirmed multiplier
	quiet := Score(snapshot(0, 10, domain.TrendStable, 100), nil)
	require.NotContains(t, quiet.Prediction.KeyFactors, "Strong market momentum")
	for _, factor := range quiet.Prediction.KeyFactors {
		require.NotContains(t, factor, "grading multiplier")
	}
}

func TestKeyFactorsMentionThinData(t *testing.T) {
	report := Score(snapshot(0, 10, domain.TrendStable, 8), nil)
	require.Contains(t, report.Prediction.KeyFactors, "Limited data (8 points)")
}

func TestTechnicalsRequireLongSeries(t *testing.T) {
	short := series(30)
	require.Nil(t, Score(snapshot(0, 10, domain.TrendStable, 30), short).Indicators)

	long := series(60)
	report := Score(snapshot(0, 10, domain.TrendStable, 60), long)
	require.NotNil(t, report.Indicators)
	require.Greater(t, report.Indicators.EMA20, 0.0)
	require.Greater(t, report.Indicators.EMA50, 0.0)
}

func series(n int) []domain.Observation {
	obs := make([]domain.Observation, 0, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		obs = append(obs, domain.Observation{
			Timestamp: start.AddDate(0, 0, i),
			Source:    "eBay",
			Price:     decimal.NewFromFloat(100 + float64(i%7)),
			Condition: "Near Mint",
		})
	}
	return obs
}
