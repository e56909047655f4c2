// Package signals classifies individual price points against a reference
// window and simulates a single-position trading strategy over a history.
package signals

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmikhr/cardtrend/internal/domain"
)

// Classify turns one price point into a BUY/SELL/HOLD signal via its z-score
// against the reference window. A zero standard deviation yields z=0 and HOLD.
// A strong trend that agrees with the signal boosts confidence by 20% (capped
// at 100); a strong conflicting trend cuts it by 20%.
func Classify(at time.Time, price, mean, std float64, trend domain.TrendLabel) domain.Signal {
	s := domain.Signal{
		Timestamp: at,
		Price:     price,
		MeanPrice: mean,
		StdDev:    std,
		Trend:     trend,
	}

	if std != 0 {
		s.ZScore = (price - mean) / std
	}

	switch {
	case s.ZScore < -1:
		s.Kind = domain.SignalBuy
		s.Confidence = math.Min(math.Abs(s.ZScore)*50, 100)
		s.Reason = fmt.Sprintf("price %.2f is %.1f std devs below the %.2f mean", price, math.Abs(s.ZScore), mean)
	case s.ZScore > 1:
		s.Kind = domain.SignalSell
		s.Confidence = math.Min(s.ZScore*50, 100)
		s.Reason = fmt.Sprintf("price %.2f is %.1f std devs above the %.2f mean", price, s.ZScore, mean)
	default:
		s.Kind = domain.SignalHold
		s.Confidence = 50 + math.Abs(s.ZScore)*25
		s.Reason = fmt.Sprintf("price %.2f is within one std dev of the %.2f mean", price, mean)
	}

	switch {
	case agreesWithTrend(s.Kind, trend):
		s.Confidence = math.Min(s.Confidence*1.2, 100)
	case conflictsWithTrend(s.Kind, trend):
		s.Confidence *= 0.8
	}

	return s
}

func agreesWithTrend(kind domain.SignalKind, trend domain.TrendLabel) bool {
	return (kind == domain.SignalBuy && trend == domain.TrendLabelStrongUpward) ||
		(kind == domain.SignalSell && trend == domain.TrendLabelStrongDownward)
}

func conflictsWithTrend(kind domain.SignalKind, trend domain.TrendLabel) bool {
	return (kind == domain.SignalBuy && trend == domain.TrendLabelStrongDownward) ||
		(kind == domain.SignalSell && trend == domain.TrendLabelStrongUpward)
}

// SimulateStrategy replays the signal stream over a chronological history with
// a single-position strategy: a BUY while flat invests all capital, a SELL
// while holding liquidates. Profit on each sell is measured against the
// initial capital.
func SimulateStrategy(obs []domain.Observation, signalStream []domain.Signal, capital float64) domain.StrategyResult {
	result := domain.StrategyResult{
		InitialCapital: capital,
		FinalValue:     capital,
		Trades:         []domain.Trade{},
	}
	if len(obs) == 0 || capital <= 0 {
		return result
	}

	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	cash := capital
	var shares float64
	holding := false

	for _, sig := range signalStream {
		switch {
		case sig.Kind == domain.SignalBuy && !holding && cash > 0 && sig.Price > 0:
			shares = cash / sig.Price
			cash = 0
			holding = true
			result.Trades = append(result.Trades, domain.Trade{
				ID:         uuid.NewString(),
				Timestamp:  sig.Timestamp,
				Kind:       domain.SignalBuy,
				Price:      sig.Price,
				Shares:     shares,
				Confidence: sig.Confidence,
			})

		case sig.Kind == domain.SignalSell && holding:
			proceeds := shares * sig.Price
			profit := proceeds - capital
			result.Trades = append(result.Trades, domain.Trade{
				ID:         uuid.NewString(),
				Timestamp:  sig.Timestamp,
				Kind:       domain.SignalSell,
				Price:      sig.Price,
				Shares:     shares,
				Profit:     profit,
				ReturnPct:  profit / capital * 100,
				Confidence: sig.Confidence,
			})
			result.TotalSells++
			if profit > 0 {
				result.ProfitableSells++
			}
			cash = proceeds
			shares = 0
			holding = false
		}
	}

	if holding {
		result.FinalValue = shares * sorted[len(sorted)-1].PriceFloat()
	} else {
		result.FinalValue = cash
	}
	result.TotalReturnPct = (result.FinalValue - capital) / capital * 100
	result.Holding = holding
	if result.TotalSells > 0 {
		result.WinRate = float64(result.ProfitableSells) / float64(result.TotalSells) * 100
	}

	return result
}

// DetectAlert compares the latest signal against the previous analysis and
// raises an alert when the recommendation changed.
func DetectAlert(cardName string, previous, current domain.Signal) *domain.Alert {
	if previous.Kind == "" || previous.Kind == current.Kind {
		return nil
	}

	priority := "normal"
	if current.Kind == domain.SignalSell || (current.Kind == domain.SignalBuy && current.Confidence >= 70) {
		priority = "high"
	}

	return &domain.Alert{
		CardName: cardName,
		Previous: previous.Kind,
		Current:  current.Kind,
		Price:    current.Price,
		Priority: priority,
		Message: fmt.Sprintf("%s signal changed %s -> %s at %.2f",
			cardName, previous.Kind, current.Kind, current.Price),
		At: current.Timestamp,
	}
}
