package domain

import "time"

// TrendDirection is the coarse direction derived from price velocity.
type TrendDirection string

const (
	TrendUpward   TrendDirection = "upward"
	TrendDownward TrendDirection = "downward"
	TrendStable   TrendDirection = "stable"
)

// SourceStats holds per-source price statistics.
type SourceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// GradedComparison compares graded and ungraded subsets of the observation set.
// Multiplier is only meaningful when Sufficient is true; callers must check the
// flag instead of relying on a zero value.
type GradedComparison struct {
	UngradedMean  float64 `json:"ungraded_mean"`
	GradedMean    float64 `json:"graded_mean"`
	UngradedCount int     `json:"ungraded_count"`
	GradedCount   int     `json:"graded_count"`
	Multiplier    float64 `json:"multiplier"`
	Sufficient    bool    `json:"sufficient"`
}

// TrendIndicators are the raw ingredients the scorer consumes.
type TrendIndicators struct {
	VelocityPct   float64        `json:"velocity_pct"`
	VolatilityPct float64        `json:"volatility_pct"`
	Direction     TrendDirection `json:"direction"`
}

// DataQuality quantifies how much the analysis can be trusted.
type DataQuality struct {
	TotalDataPoints int     `json:"total_data_points"`
	SourceCount     int     `json:"source_count"`
	Confidence      float64 `json:"confidence"`
}

// AggregatedSnapshot is the reconciled view over all sources for one card.
// It is recomputed fresh on every analysis invocation.
type AggregatedSnapshot struct {
	CardName         string                 `json:"card_name"`
	Sources          []string               `json:"sources"`
	TotalDataPoints  int                    `json:"total_data_points"`
	From             time.Time              `json:"from"`
	To               time.Time              `json:"to"`
	BySource         map[string]SourceStats `json:"by_source"`
	GradedVsUngraded GradedComparison       `json:"graded_vs_ungraded"`
	Trend            TrendIndicators        `json:"trend"`
	AgreementScore   float64                `json:"agreement_score"`
	Quality          DataQuality            `json:"quality"`
}
