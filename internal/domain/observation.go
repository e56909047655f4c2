package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Grading companies recognized by the pipeline.
const (
	CompanyPSA = "PSA"
	CompanyBGS = "BGS"
	CompanyCGC = "CGC"
	CompanySGC = "SGC"
)

// TopGrade is the maximum grade on every supported scale.
const TopGrade = 10.0

// gradeScales maps a grading company to the grade values it issues that
// matter for pricing. Lower grades exist but are not tracked.
var gradeScales = map[string][]float64{
	CompanyPSA: {8, 8.5, 9, 9.5, 10},
	CompanyBGS: {8, 8.5, 9, 9.5, 10},
	CompanyCGC: {8, 8.5, 9, 9.5, 10},
	CompanySGC: {8, 8.5, 9, 9.5, 10},
}

// KnownGrade reports whether the company issues the given grade value.
func KnownGrade(company string, grade float64) bool {
	scale, ok := gradeScales[company]
	if !ok {
		return false
	}
	for _, g := range scale {
		if g == grade {
			return true
		}
	}
	return false
}

// Observation is a single price record for a card. It is created once by a
// source adapter (real or synthetic) and never mutated afterwards.
type Observation struct {
	Timestamp    time.Time       `json:"timestamp"`
	Price        decimal.Decimal `json:"price"`
	Source       string          `json:"source"`
	Condition    string          `json:"condition"`
	Graded       bool            `json:"graded"`
	GradeValue   float64         `json:"grade_value,omitempty"`
	GradeCompany string          `json:"grade_company,omitempty"`
}

// Validate checks the observation invariants: a positive price and, for graded
// records, a grade that belongs to the company's known scale.
func (o Observation) Validate() error {
	if !o.Price.GreaterThan(decimal.Zero) {
		return fmt.Errorf("price must be positive, got %s", o.Price.String())
	}
	if o.Source == "" {
		return fmt.Errorf("source is required")
	}
	if o.Graded && !KnownGrade(o.GradeCompany, o.GradeValue) {
		return fmt.Errorf("unknown grade %s %.1f", o.GradeCompany, o.GradeValue)
	}
	return nil
}

// PriceFloat returns the price as float64 for statistical computations.
func (o Observation) PriceFloat() float64 {
	f, _ := o.Price.Float64()
	return f
}

// SourceResult is the ordered output of one adapter invocation. It may be
// empty but never contains malformed records: adapters drop those on parse.
type SourceResult struct {
	Source       string
	Observations []Observation
	// Synthetic marks results produced by the fallback generator instead of
	// real collection.
	Synthetic bool
}

// Query identifies what to collect.
type Query struct {
	CardName   string
	MaxResults int
}
