package analyses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmikhr/cardtrend/internal/domain"
)

func report(card string, kind domain.SignalKind) domain.AnalysisReport {
	return domain.AnalysisReport{
		ID:          "test-" + card,
		CardName:    card,
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Signals: []domain.Signal{
			{Kind: kind, Price: 100, Confidence: 60},
		},
	}
}

func TestSaveAndReadBack(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(report("Charizard", domain.SignalHold)))
	require.NoError(t, store.Save(report("Pikachu", domain.SignalBuy)))
	require.Equal(t, uint64(2), store.CurrentIndex())

	records, err := store.ReportsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Charizard", records[0].Report.CardName)
	require.Equal(t, "Pikachu", records[1].Report.CardName)
}

func TestReportsAfterSkipsOlderEntries(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(report("Charizard", domain.SignalHold)))
	require.NoError(t, store.Save(report("Charizard", domain.SignalSell)))

	records, err := store.ReportsAfter(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.SignalSell, records[0].Report.Signals[0].Kind)
}

func TestLatestFor(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	latest, err := store.LatestFor("Charizard")
	require.NoError(t, err)
	require.Nil(t, latest, "no history yet")

	require.NoError(t, store.Save(report("Charizard", domain.SignalHold)))
	require.NoError(t, store.Save(report("Pikachu", domain.SignalBuy)))
	require.NoError(t, store.Save(report("Charizard", domain.SignalSell)))

	latest, err = store.LatestFor("Charizard")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, domain.SignalSell, latest.Signals[0].Kind)
}

func TestSaveRequiresCardName(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.Error(t, store.Save(domain.AnalysisReport{}))
}
