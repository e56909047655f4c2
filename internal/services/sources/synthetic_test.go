package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmikhr/cardtrend/internal/domain"
)

func testProfile() Profile {
	return Profile{
		Source:   "eBay",
		MinPrice: 40,
		MaxPrice: 400,
		Cadence:  24 * time.Hour,
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := NewGenerator(testProfile(), 42).Generate(now, 25)
	b := NewGenerator(testProfile(), 42).Generate(now, 25)
	require.Equal(t, a, b)

	c := NewGenerator(testProfile(), 43).Generate(now, 25)
	require.NotEqual(t, a, c)
}

func TestGenerateProducesValidObservations(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	obs := NewGenerator(testProfile(), 1).Generate(now, 100)
	require.Len(t, obs, 100)

	graded := 0
	for i, o := range obs {
		require.NoError(t, o.Validate())
		require.Equal(t, "eBay", o.Source)
		require.Equal(t, now.Add(-time.Duration(i)*24*time.Hour), o.Timestamp,
			"timestamps decay backward at the profile cadence")
		if o.Graded {
			graded++
			require.True(t, domain.KnownGrade(o.GradeCompany, o.GradeValue))
		}
	}

	// roughly 30% of a hundred draws should be graded
	require.Greater(t, graded, 10)
	require.Less(t, graded, 55)
}

func TestGenerateZeroCount(t *testing.T) {
	obs := NewGenerator(testProfile(), 5).Generate(time.Now(), 0)
	require.Empty(t, obs)
}
