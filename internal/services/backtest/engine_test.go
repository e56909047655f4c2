package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmikhr/cardtrend/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func priceObs(day int, price float64) domain.Observation {
	return domain.Observation{
		Timestamp: t0.AddDate(0, 0, day),
		Source:    "eBay",
		Price:     decimal.NewFromFloat(price),
		Condition: "Near Mint",
	}
}

func TestRunZeroObservations(t *testing.T) {
	m, stream := New(0).Run(nil)
	require.Equal(t, domain.TrendLabelNoData, m.Trend)
	require.Zero(t, m.MeanPrice)
	require.Zero(t, m.TotalReturnPct)
	require.Empty(t, stream)
}

func TestRunSingleObservation(t *testing.T) {
	m, stream := New(0).Run([]domain.Observation{priceObs(0, 100)})
	require.Zero(t, m.TotalReturnPct)
	require.Zero(t, m.AnnualizedReturnPct)
	require.Equal(t, domain.TrendLabelInsufficientData, m.Trend)
	require.InDelta(t, 100, m.CurrentPrice, 1e-9)
	require.Empty(t, stream)
}

func TestRunPriceStatistics(t *testing.T) {
	obs := []domain.Observation{
		priceObs(0, 100),
		priceObs(1, 110),
		priceObs(2, 120),
	}
	m, _ := New(0).Run(obs)

	require.InDelta(t, 110, m.MeanPrice, 1e-9)
	require.InDelta(t, 110, m.MedianPrice, 1e-9)
	require.InDelta(t, 100, m.MinPrice, 1e-9)
	require.InDelta(t, 120, m.MaxPrice, 1e-9)
	require.InDelta(t, 120, m.CurrentPrice, 1e-9)
	require.InDelta(t, 20, m.TotalReturnPct, 1e-9)
	require.Equal(t, 2, m.DaysTracked)

	// population std of [100,110,120] is sqrt(200/3)
	require.InDelta(t, 8.16496580927726, m.StdDev, 1e-9)
	require.InDelta(t, m.StdDev/110*100, m.VolatilityPct, 1e-9)
}

func TestRunUnsortedInputIsSorted(t *testing.T) {
	obs := []domain.Observation{
		priceObs(2, 120),
		priceObs(0, 100),
		priceObs(1, 110),
	}
	m, _ := New(0).Run(obs)
	require.InDelta(t, 20, m.TotalReturnPct, 1e-9, "return measured first to last chronologically")
	require.True(t, m.InceptionDate.Equal(t0))
}

func TestRunTrendClassification(t *testing.T) {
	rising := make([]domain.Observation, 0, 40)
	falling := make([]domain.Observation, 0, 40)
	flat := make([]domain.Observation, 0, 40)
	for i := 0; i < 40; i++ {
		rising = append(rising, priceObs(i, 100+float64(i)*10))
		falling = append(falling, priceObs(i, 500-float64(i)*10))
		flat = append(flat, priceObs(i, 100))
	}

	m, _ := New(0).Run(rising)
	require.Equal(t, domain.TrendLabelStrongUpward, m.Trend)
	require.Greater(t, m.MomentumPct, 0.0)

	m, _ = New(0).Run(falling)
	require.Equal(t, domain.TrendLabelStrongDownward, m.Trend)
	require.Less(t, m.MomentumPct, 0.0)

	m, _ = New(0).Run(flat)
	require.Equal(t, domain.TrendLabelStable, m.Trend)
	require.Zero(t, m.MomentumPct)
	require.Zero(t, m.SharpeRatio, "no variance in changes")
}

func TestRunTrendInsufficientData(t *testing.T) {
	obs := []domain.Observation{
		priceObs(0, 100), priceObs(1, 105), priceObs(2, 110),
	}
	m, _ := New(0).Run(obs)
	require.Equal(t, domain.TrendLabelInsufficientData, m.Trend)
}

func TestRunSupportResistanceAndBands(t *testing.T) {
	obs := make([]domain.Observation, 0, 5)
	for i, p := range []float64{100, 110, 120, 130, 140} {
		obs = append(obs, priceObs(i, p))
	}
	m, _ := New(0).Run(obs)

	require.InDelta(t, 110, m.SupportLevel, 1e-9)
	require.InDelta(t, 130, m.ResistanceLevel, 1e-9)
	require.InDelta(t, m.MeanPrice+m.StdDev, m.UpperBand, 1e-9)
	require.InDelta(t, m.MeanPrice-1.96*m.StdDev, m.Confidence95.Lower, 1e-9)
	require.InDelta(t, m.MeanPrice+1.96*m.StdDev, m.Confidence95.Upper, 1e-9)
}

func TestRunRollingSignalsSkipColdStart(t *testing.T) {
	obs := make([]domain.Observation, 0, 45)
	for i := 0; i < 45; i++ {
		obs = append(obs, priceObs(i, 100+float64(i%5)))
	}
	_, stream := New(0).Run(obs)

	require.Len(t, stream, 15, "one signal per point after the first thirty")
	require.True(t, stream[0].Timestamp.Equal(t0.AddDate(0, 0, 30)))
	for _, s := range stream {
		require.NotEmpty(t, s.Kind)
		require.NotEmpty(t, s.Reason)
	}
}

func TestRunRollingSignalsFlagOutliers(t *testing.T) {
	obs := make([]domain.Observation, 0, 41)
	for i := 0; i < 40; i++ {
		obs = append(obs, priceObs(i, 100+float64(i%3)))
	}
	// a final spike far above the rolling mean must read as SELL
	obs = append(obs, priceObs(40, 300))

	_, stream := New(0).Run(obs)
	last := stream[len(stream)-1]
	require.Equal(t, domain.SignalSell, last.Kind)
	require.Greater(t, last.ZScore, 1.0)
}

func TestRunAnnualizedReturn(t *testing.T) {
	// doubles over one year
	obs := []domain.Observation{priceObs(0, 100), priceObs(365, 200)}
	m, _ := New(0).Run(obs)
	require.InDelta(t, 100, m.TotalReturnPct, 1e-9)
	require.InDelta(t, 100.048, m.AnnualizedReturnPct, 0.1)
}
