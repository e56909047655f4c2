package sources

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmikhr/cardtrend/internal/domain"
)

// gradedShare is the fraction of synthetic observations marked as graded.
const gradedShare = 0.3

var (
	syntheticGrades    = []float64{8, 8.5, 9, 9.5, 10}
	syntheticCompanies = []string{domain.CompanyPSA, domain.CompanyBGS, domain.CompanyCGC}
)

// Profile describes what plausible observations for one source look like.
type Profile struct {
	Source string
	// Price range of ungraded copies.
	MinPrice float64
	MaxPrice float64
	// Cadence spaces the fabricated timestamps backward from now.
	Cadence    time.Duration
	Conditions []string
}

// Generator fabricates plausible observations for one source. It is pure:
// the same seed, reference time and count always produce the same output.
type Generator struct {
	profile Profile
	seed    int64
}

// NewGenerator creates a generator for the profile. Pass seed 0 to derive a
// seed from the current time (non-reproducible).
func NewGenerator(profile Profile, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(profile.Conditions) == 0 {
		profile.Conditions = []string{"Near Mint", "Used", "Mint"}
	}
	return &Generator{profile: profile, seed: seed}
}

// Generate fabricates count observations with timestamps decaying backward
// from now at the profile cadence.
func (g *Generator) Generate(now time.Time, count int) []domain.Observation {
	if count <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(g.seed))
	base := g.profile.MinPrice + rng.Float64()*(g.profile.MaxPrice-g.profile.MinPrice)

	obs := make([]domain.Observation, 0, count)
	for i := 0; i < count; i++ {
		price := base * (0.7 + rng.Float64()*0.6)
		graded := rng.Float64() < gradedShare

		o := domain.Observation{
			Timestamp: now.Add(-time.Duration(i) * g.profile.Cadence),
			Source:    g.profile.Source,
			Condition: g.profile.Conditions[rng.Intn(len(g.profile.Conditions))],
		}
		if graded {
			// graded copies trade at a 2-5x premium
			price *= 2 + rng.Float64()*3
			o.Graded = true
			o.GradeValue = syntheticGrades[rng.Intn(len(syntheticGrades))]
			o.GradeCompany = syntheticCompanies[rng.Intn(len(syntheticCompanies))]
		}
		o.Price = decimal.NewFromFloat(price).Round(2)
		obs = append(obs, o)
	}
	return obs
}

// Seed returns the seed in use, for logging reproducibility.
func (g *Generator) Seed() int64 {
	return g.seed
}

// String implements fmt.Stringer for log output.
func (g *Generator) String() string {
	return fmt.Sprintf("synthetic(%s seed=%d)", g.profile.Source, g.seed)
}
