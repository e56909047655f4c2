package domain

import "time"

// Recommendation is the action suggested by the prediction model.
type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendSell Recommendation = "SELL"
	RecommendHold Recommendation = "HOLD"
)

// MomentumStrength buckets price velocity into qualitative momentum.
type MomentumStrength string

const (
	MomentumStrongUpward     MomentumStrength = "strong_upward"
	MomentumModerateUpward   MomentumStrength = "moderate_upward"
	MomentumNeutral          MomentumStrength = "neutral"
	MomentumModerateDownward MomentumStrength = "moderate_downward"
	MomentumStrongDownward   MomentumStrength = "strong_downward"
)

// ConfidenceLevel is a qualitative label over the data-quality confidence score.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
)

// ConfidenceLevelFor buckets a 0-100 confidence score.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceVeryHigh
	case score >= 60:
		return ConfidenceHigh
	case score >= 40:
		return ConfidenceMedium
	case score >= 20:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// TrendScore is the 0-100 composite score with its sub-factors.
type TrendScore struct {
	Total     float64 `json:"total"`
	Velocity  float64 `json:"velocity"`
	Volume    float64 `json:"volume"`
	Agreement float64 `json:"agreement"`
	Pattern   float64 `json:"pattern"`
}

// Arbitrage describes a buy-low/sell-high opportunity between two sources.
type Arbitrage struct {
	BuySource          string  `json:"buy_source"`
	SellSource         string  `json:"sell_source"`
	BuyPrice           float64 `json:"buy_price"`
	SellPrice          float64 `json:"sell_price"`
	PotentialProfitPct float64 `json:"potential_profit_pct"`
	Confidence         string  `json:"confidence"`
}

// Divergence reports price disagreement between sources.
type Divergence struct {
	HasDivergence bool        `json:"has_divergence"`
	Pct           float64     `json:"pct"`
	MinSource     string      `json:"min_source"`
	MaxSource     string      `json:"max_source"`
	MinPrice      float64     `json:"min_price"`
	MaxPrice      float64     `json:"max_price"`
	Opportunities []Arbitrage `json:"opportunities,omitempty"`
}

// Momentum holds velocity-derived momentum indicators.
type Momentum struct {
	PriceMomentumPct float64          `json:"price_momentum_pct"`
	VolumeIndicator  int              `json:"volume_indicator"`
	Strength         MomentumStrength `json:"strength"`
	BuyPressure      float64          `json:"buy_pressure"`
}

// Prediction is the directional forecast with its supporting factors.
type Prediction struct {
	Direction      string         `json:"direction"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	Timeframe      string         `json:"timeframe"`
	KeyFactors     []string       `json:"key_factors"`
}

// TechnicalIndicators are supplemental indicators computed when the series is
// long enough. Nil on the report otherwise.
type TechnicalIndicators struct {
	EMA20 float64 `json:"ema20"`
	EMA50 float64 `json:"ema50"`
	RSI14 float64 `json:"rsi14"`
}

// TrendReport is the full output of the trend scorer for one snapshot.
type TrendReport struct {
	CardName        string               `json:"card_name"`
	Score           TrendScore           `json:"score"`
	Divergence      Divergence           `json:"divergence"`
	Momentum        Momentum             `json:"momentum"`
	Prediction      Prediction           `json:"prediction"`
	ConfidenceLevel ConfidenceLevel      `json:"confidence_level"`
	Quality         DataQuality          `json:"quality"`
	Indicators      *TechnicalIndicators `json:"indicators,omitempty"`
	AnalyzedAt      time.Time            `json:"analyzed_at"`
}
