package sources

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/internal/domain"
)

type stubFetcher struct {
	payload []byte
	err     error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.payload, s.err
}

func testAdapter(f *stubFetcher, policy FallbackPolicy) *adapter {
	return &adapter{
		name:     "eBay",
		fetcher:  f,
		parser:   ListingParser("eBay"),
		buildURL: func(q domain.Query) string { return "http://example.com/" + q.CardName },
		synth: NewGenerator(Profile{
			Source:   "eBay",
			MinPrice: 40,
			MaxPrice: 400,
			Cadence:  24 * time.Hour,
		}, 7),
		policy: policy,
		logger: zap.NewNop(),
	}
}

func TestCollectFallsBackOnFetchFailure(t *testing.T) {
	f := &stubFetcher{err: errors.New("connection refused")}
	a := testAdapter(f, DefaultFallbackPolicy())

	res, err := a.Collect(context.Background(), domain.Query{CardName: "Charizard", MaxResults: 30})
	require.NoError(t, err)
	require.True(t, res.Synthetic)
	require.GreaterOrEqual(t, len(res.Observations), a.policy.MinUsableRecords,
		"failed adapter must still yield at least the fallback minimum")

	for _, o := range res.Observations {
		require.NoError(t, o.Validate())
	}
}

func TestCollectFallsBackBelowThreshold(t *testing.T) {
	// two valid listings, below the default threshold of ten
	payload := []byte(`[
		{"price":"$120.00","date":"2024-03-01","title":"Charizard Base Set","condition":"Near Mint"},
		{"price":"$480.00","date":"2024-03-02","title":"Charizard PSA 10","condition":""}
	]`)
	f := &stubFetcher{payload: payload}
	a := testAdapter(f, DefaultFallbackPolicy())

	res, err := a.Collect(context.Background(), domain.Query{CardName: "Charizard", MaxResults: 20})
	require.NoError(t, err)
	require.True(t, res.Synthetic)
	require.Len(t, res.Observations, 20, "real records topped up to max results")

	// the real records survive in front of the synthetic top-up
	require.Equal(t, "120", res.Observations[0].Price.String())
	require.True(t, res.Observations[1].Graded)
	require.Equal(t, domain.CompanyPSA, res.Observations[1].GradeCompany)
}

func TestCollectDisabledFallbackReturnsDegradedResult(t *testing.T) {
	f := &stubFetcher{err: errors.New("503")}
	a := testAdapter(f, FallbackPolicy{MinUsableRecords: 10, Disabled: true})

	res, err := a.Collect(context.Background(), domain.Query{CardName: "Pikachu"})
	require.Error(t, err)
	require.Empty(t, res.Observations)
	require.False(t, res.Synthetic)
}

func TestCollectSkipsMalformedRecords(t *testing.T) {
	payload := []byte(`[
		{"price":"not a price","date":"2024-03-01","title":"bad price"},
		{"price":"$50.00","date":"when?","title":"bad date"},
		{"price":"$75.50","date":"2024-03-03","title":"Blastoise BGS 9.5","condition":"NM"}
	]`)
	f := &stubFetcher{payload: payload}
	a := testAdapter(f, FallbackPolicy{MinUsableRecords: 1})

	res, err := a.Collect(context.Background(), domain.Query{CardName: "Blastoise"})
	require.NoError(t, err)
	require.False(t, res.Synthetic)
	require.Len(t, res.Observations, 1, "malformed records dropped, good one kept")

	o := res.Observations[0]
	require.True(t, o.Graded)
	require.Equal(t, domain.CompanyBGS, o.GradeCompany)
	require.Equal(t, 9.5, o.GradeValue)
	require.Equal(t, "Near Mint", o.Condition)
}

func TestCollectEnoughRealDataSkipsFallback(t *testing.T) {
	payload := []byte(`[
		{"price":"$10","date":"2024-01-01","title":"a"},
		{"price":"$11","date":"2024-01-02","title":"b"},
		{"price":"$12","date":"2024-01-03","title":"c"}
	]`)
	f := &stubFetcher{payload: payload}
	a := testAdapter(f, FallbackPolicy{MinUsableRecords: 3})

	res, err := a.Collect(context.Background(), domain.Query{CardName: "Eevee"})
	require.NoError(t, err)
	require.False(t, res.Synthetic)
	require.Len(t, res.Observations, 3)
}
