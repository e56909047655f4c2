package domain

import (
	"fmt"
	"time"
)

// AnalysisFailedError is the only caller-visible fatal condition: zero
// observations survived collection, including every adapter's fallback.
type AnalysisFailedError struct {
	CardName string
	Reason   string
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis failed for %q: %s", e.CardName, e.Reason)
}

// AnalysisReport bundles every derived view over one observation set.
type AnalysisReport struct {
	ID          string             `json:"id"`
	CardName    string             `json:"card_name"`
	GeneratedAt time.Time          `json:"generated_at"`
	Snapshot    AggregatedSnapshot `json:"snapshot"`
	Trend       TrendReport        `json:"trend"`
	Backtest    BacktestMetrics    `json:"backtest"`
	Signals     []Signal           `json:"signals"`
	Strategy    StrategyResult     `json:"strategy"`
	Grading     GradingAssessment  `json:"grading"`
	SuccessRate SuccessRate        `json:"success_rate"`
}

// LatestSignal returns the most recent signal of the report, or nil.
func (r *AnalysisReport) LatestSignal() *Signal {
	if len(r.Signals) == 0 {
		return nil
	}
	return &r.Signals[len(r.Signals)-1]
}
