// Package grading computes the economics of certifying a card: the top-grade
// price multiplier, net profit after the grading fee, ROI, and a tiered
// recommendation.
package grading

import (
	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/stats"
)

const (
	// DefaultCost is the grading service fee assumed when none is configured.
	DefaultCost = 35.0

	// topGradeEstimateFactor scales the overall graded mean when no sale at
	// the reference authority's top grade has been observed.
	topGradeEstimateFactor = 1.2
)

// Analyzer prices the certify-for-profit decision against one authority.
type Analyzer struct {
	cost      float64
	authority string
}

// New creates an analyzer. Non-positive cost falls back to the default fee;
// an empty authority defaults to PSA.
func New(cost float64, authority string) *Analyzer {
	if cost <= 0 {
		cost = DefaultCost
	}
	if authority == "" {
		authority = domain.CompanyPSA
	}
	return &Analyzer{cost: cost, authority: authority}
}

// Analyze splits the set into graded and ungraded sales and derives the
// grading economics. Either subset being empty yields the insufficient-data
// sentinel; the assessment never fails.
func (a *Analyzer) Analyze(obs []domain.Observation) domain.GradingAssessment {
	assessment := domain.GradingAssessment{
		GradingCost:    a.cost,
		Recommendation: domain.GradingInsufficient,
	}

	var graded, ungraded, topGrade []float64
	for _, o := range obs {
		p := o.PriceFloat()
		if !o.Graded {
			ungraded = append(ungraded, p)
			continue
		}
		graded = append(graded, p)
		if o.GradeCompany == a.authority && o.GradeValue == domain.TopGrade {
			topGrade = append(topGrade, p)
		}
	}

	assessment.UngradedCount = len(ungraded)
	assessment.GradedCount = len(graded)
	assessment.TopGradeCount = len(topGrade)
	assessment.UngradedAvg = stats.Mean(ungraded)
	assessment.GradedAvg = stats.Mean(graded)

	if len(graded) == 0 || len(ungraded) == 0 || assessment.UngradedAvg == 0 {
		return assessment
	}

	if len(topGrade) > 0 {
		assessment.TopGradeAvg = stats.Mean(topGrade)
		assessment.TopGradeMin = stats.Min(topGrade)
		assessment.TopGradeMax = stats.Max(topGrade)
	} else {
		assessment.TopGradeAvg = assessment.GradedAvg * topGradeEstimateFactor
	}
	assessment.UngradedMin = stats.Min(ungraded)
	assessment.UngradedMax = stats.Max(ungraded)

	assessment.Multiplier = assessment.TopGradeAvg / assessment.UngradedAvg
	assessment.GrossProfit = assessment.TopGradeAvg - assessment.UngradedAvg
	assessment.NetProfit = assessment.GrossProfit - a.cost
	assessment.ROIPct = assessment.NetProfit / (assessment.UngradedAvg + a.cost) * 100

	assessment.Recommendation = recommend(assessment.Multiplier, assessment.NetProfit)
	assessment.WorthGrading = assessment.Multiplier >= 3 && assessment.NetProfit > 50
	assessment.Sufficient = true
	assessment.BreakEvenPrice = a.BreakEven(assessment)

	return assessment
}

func recommend(multiplier, netProfit float64) string {
	switch {
	case multiplier >= 5 && netProfit >= 200:
		return domain.GradingExcellent
	case multiplier >= 4 && netProfit >= 100:
		return domain.GradingVeryGood
	case multiplier >= 3 && netProfit >= 50:
		return domain.GradingGood
	case multiplier >= 2 && netProfit >= 25:
		return domain.GradingMarginal
	default:
		return domain.GradingNotRecommended
	}
}

// BreakEven returns the ungraded purchase price at which grading at the
// assessed multiplier stops being profitable. Zero when the assessment is the
// insufficient-data sentinel or the multiplier is at or below 1.
func (a *Analyzer) BreakEven(assessment domain.GradingAssessment) float64 {
	if !assessment.Sufficient || assessment.Multiplier <= 1 {
		return 0
	}
	return a.cost / (assessment.Multiplier - 1)
}

// EstimateSuccessRate reports how often graded sales at the reference
// authority came back at the top grade, with a sample-size confidence label.
func (a *Analyzer) EstimateSuccessRate(obs []domain.Observation) domain.SuccessRate {
	rate := domain.SuccessRate{Confidence: "low"}
	for _, o := range obs {
		if !o.Graded || o.GradeCompany != a.authority {
			continue
		}
		rate.TotalGraded++
		if o.GradeValue == domain.TopGrade {
			rate.TopGradeCount++
		}
	}
	if rate.TotalGraded == 0 {
		return rate
	}

	rate.TopGradeRate = float64(rate.TopGradeCount) / float64(rate.TotalGraded) * 100
	switch {
	case rate.TotalGraded >= 30:
		rate.Confidence = "high"
	case rate.TotalGraded >= 10:
		rate.Confidence = "medium"
	}
	return rate
}
