package domain

// Recommendation tiers for the certify-for-profit decision.
const (
	GradingExcellent      = "EXCELLENT - High priority grading candidate"
	GradingVeryGood       = "VERY GOOD - Strong grading opportunity"
	GradingGood           = "GOOD - Worth considering for grading"
	GradingMarginal       = "MARGINAL - Only if card condition is pristine"
	GradingNotRecommended = "NOT RECOMMENDED - Grading costs outweigh benefits"
	GradingInsufficient   = "INSUFFICIENT DATA"
)

// GradingAssessment is the economics of certifying a card. When Sufficient is
// false every numeric field is a neutral sentinel, never a partial result.
type GradingAssessment struct {
	UngradedAvg   float64 `json:"ungraded_avg"`
	GradedAvg     float64 `json:"graded_avg"`
	TopGradeAvg   float64 `json:"top_grade_avg"`
	UngradedCount int     `json:"ungraded_count"`
	GradedCount   int     `json:"graded_count"`
	TopGradeCount int     `json:"top_grade_count"`

	Multiplier  float64 `json:"multiplier"`
	GradingCost float64 `json:"grading_cost"`
	GrossProfit float64 `json:"gross_profit"`
	NetProfit   float64 `json:"net_profit"`
	ROIPct      float64 `json:"roi_pct"`

	// BreakEvenPrice is the highest ungraded purchase price at which grading
	// at the assessed multiplier still profits. Zero when insufficient.
	BreakEvenPrice float64 `json:"break_even_price"`

	Recommendation string `json:"recommendation"`
	WorthGrading   bool   `json:"worth_grading"`
	Sufficient     bool   `json:"sufficient"`

	UngradedMin float64 `json:"ungraded_min"`
	UngradedMax float64 `json:"ungraded_max"`
	TopGradeMin float64 `json:"top_grade_min"`
	TopGradeMax float64 `json:"top_grade_max"`
}

// SuccessRate estimates the odds of a submission coming back at the top grade.
type SuccessRate struct {
	TopGradeRate  float64 `json:"top_grade_rate"`
	TopGradeCount int     `json:"top_grade_count"`
	TotalGraded   int     `json:"total_graded"`
	Confidence    string  `json:"confidence"`
}
