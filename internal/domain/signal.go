package domain

import "time"

// SignalKind is a point-in-time trading recommendation.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
	SignalHold SignalKind = "HOLD"
)

// Signal is one classified price point. ZScore is zero when the standard
// deviation of the reference window is zero.
type Signal struct {
	Timestamp  time.Time  `json:"timestamp"`
	Price      float64    `json:"price"`
	Kind       SignalKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	ZScore     float64    `json:"z_score"`
	Reason     string     `json:"reason"`
	MeanPrice  float64    `json:"mean_price"`
	StdDev     float64    `json:"std_dev"`
	Trend      TrendLabel `json:"trend"`
}

// Trade is one executed step of the simulated single-position strategy.
type Trade struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Kind       SignalKind `json:"kind"`
	Price      float64    `json:"price"`
	Shares     float64    `json:"shares"`
	Profit     float64    `json:"profit,omitempty"`
	ReturnPct  float64    `json:"return_pct,omitempty"`
	Confidence float64    `json:"confidence"`
}

// StrategyResult is the outcome of simulating the signal strategy over a
// price history with a fixed starting capital.
type StrategyResult struct {
	InitialCapital  float64 `json:"initial_capital"`
	FinalValue      float64 `json:"final_value"`
	TotalReturnPct  float64 `json:"total_return_pct"`
	TotalSells      int     `json:"total_sells"`
	ProfitableSells int     `json:"profitable_sells"`
	WinRate         float64 `json:"win_rate"`
	Trades          []Trade `json:"trades"`
	Holding         bool    `json:"holding"`
}

// Alert is raised when the signal for a card changes between analyses.
type Alert struct {
	CardName string     `json:"card_name"`
	Previous SignalKind `json:"previous"`
	Current  SignalKind `json:"current"`
	Price    float64    `json:"price"`
	Priority string     `json:"priority"`
	Message  string     `json:"message"`
	At       time.Time  `json:"at"`
}
