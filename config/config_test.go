package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	require.NotEmpty(t, cfg.Cards)
	require.Len(t, cfg.Sources, 4)
	require.InDelta(t, 35, cfg.GradingCost, 1e-9)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
cards:
  - Charizard Base Set
  - Pikachu Illustrator
sources:
  - eBay
  - TCGPlayer
max_results: 25
delay_min: 500ms
delay_max: 2s
grading_cost: 20
synthetic_seed: 42
wal_dir: /tmp/cardtrend-wal
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Charizard Base Set", "Pikachu Illustrator"}, cfg.Cards)
	require.Equal(t, []string{"eBay", "TCGPlayer"}, cfg.Sources)
	require.Equal(t, 25, cfg.MaxResults)
	require.Equal(t, 500*time.Millisecond, cfg.DelayMin)
	require.InDelta(t, 20, cfg.GradingCost, 1e-9)
	require.Equal(t, int64(42), cfg.SyntheticSeed)
	require.Equal(t, "/tmp/cardtrend-wal", cfg.WalDir)

	// unspecified knobs keep their defaults
	require.Equal(t, uint(3), cfg.MaxRetries)
	require.InDelta(t, 0.03, cfg.RiskFreeRate, 1e-9)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Cards = nil
	require.Error(t, cfg.validate())

	cfg = Default()
	cfg.DelayMax = cfg.DelayMin - time.Second
	require.Error(t, cfg.validate())

	cfg = Default()
	cfg.InitialCapital = 0
	require.Error(t, cfg.validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CARDTREND_WAL_DIR", "/tmp/override")
	t.Setenv("CARDTREND_SEED", "99")

	cfg := Default()
	applyEnv(&cfg)
	require.Equal(t, "/tmp/override", cfg.WalDir)
	require.Equal(t, int64(99), cfg.SyntheticSeed)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
	require.Empty(t, splitList(" , "))
}
