package domain

import "time"

// TrendLabel classifies the regression-based trend over recent observations.
type TrendLabel string

const (
	TrendLabelStrongUpward     TrendLabel = "strong_upward"
	TrendLabelUpward           TrendLabel = "upward"
	TrendLabelStable           TrendLabel = "stable"
	TrendLabelDownward         TrendLabel = "downward"
	TrendLabelStrongDownward   TrendLabel = "strong_downward"
	TrendLabelInsufficientData TrendLabel = "insufficient_data"
	TrendLabelNoData           TrendLabel = "no_data"
)

// ConfidenceInterval is a symmetric interval around the mean price.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BacktestMetrics summarizes inception-to-date performance. Every field
// defaults to a neutral/zero value when the input is too small; the engine
// never fails on short histories.
type BacktestMetrics struct {
	InceptionDate time.Time `json:"inception_date"`
	CurrentDate   time.Time `json:"current_date"`
	DaysTracked   int       `json:"days_tracked"`

	MeanPrice    float64 `json:"mean_price"`
	MedianPrice  float64 `json:"median_price"`
	StdDev       float64 `json:"std_dev"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	CurrentPrice float64 `json:"current_price"`

	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	VolatilityPct       float64 `json:"volatility_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`

	Trend       TrendLabel `json:"trend"`
	MomentumPct float64    `json:"momentum_pct"`

	SupportLevel    float64 `json:"support_level"`
	ResistanceLevel float64 `json:"resistance_level"`
	UpperBand       float64 `json:"upper_band"`
	LowerBand       float64 `json:"lower_band"`

	Confidence95 ConfidenceInterval `json:"confidence_95"`
}
