package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every knob of the analysis pipeline. Zero values are filled
// with defaults by Get.
type Config struct {
	Cards   []string `yaml:"cards"`
	Sources []string `yaml:"sources"`

	MaxResults int `yaml:"max_results"`

	DelayMin     time.Duration `yaml:"delay_min"`
	DelayMax     time.Duration `yaml:"delay_max"`
	MaxRetries   uint          `yaml:"max_retries"`
	BackoffStep  time.Duration `yaml:"backoff_step"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	CollectDeadline time.Duration `yaml:"collect_deadline"`

	FallbackMinRecords int   `yaml:"fallback_min_records"`
	FallbackDisabled   bool  `yaml:"fallback_disabled"`
	SyntheticSeed      int64 `yaml:"synthetic_seed"`

	GradingCost      float64 `yaml:"grading_cost"`
	GradingAuthority string  `yaml:"grading_authority"`

	RiskFreeRate   float64 `yaml:"risk_free_rate"`
	InitialCapital float64 `yaml:"initial_capital"`

	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheEntries int           `yaml:"cache_entries"`

	WalDir string `yaml:"wal_dir"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Cards:              []string{"Charizard Base Set"},
		Sources:            []string{"eBay", "PriceCharting", "TCGPlayer", "PokeData"},
		MaxResults:         50,
		DelayMin:           time.Second,
		DelayMax:           3 * time.Second,
		MaxRetries:         3,
		BackoffStep:        2 * time.Second,
		FetchTimeout:       15 * time.Second,
		CollectDeadline:    2 * time.Minute,
		FallbackMinRecords: 10,
		SyntheticSeed:      time.Now().UnixNano(),
		GradingCost:        35,
		GradingAuthority:   "PSA",
		RiskFreeRate:       0.03,
		InitialCapital:     1000,
		CacheTTL:           15 * time.Minute,
		CacheEntries:       100,
		WalDir:             "./wal/analyses",
	}
}

// Get resolves the configuration: .env, then the yaml file given via --config,
// then individual CLI flags for the common knobs. Flags must not have been
// parsed already.
func Get() (Config, error) {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to yaml config")
	cards := flag.String("cards", "", "comma-separated card names to analyze")
	seed := flag.Int64("seed", 0, "synthetic generator seed, 0 picks a random one")
	capital := flag.Float64("capital", 0, "starting capital for strategy simulation")
	gradingCost := flag.Float64("gradingcost", 0, "grading service fee")
	disableFallback := flag.Bool("nofallback", false, "disable the synthetic data fallback")
	flag.Parse()

	cfg := Default()
	if *configPath != "" {
		loaded, err := fromYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if *cards != "" {
		cfg.Cards = splitList(*cards)
	}
	if *seed != 0 {
		cfg.SyntheticSeed = *seed
	}
	if *capital > 0 {
		cfg.InitialCapital = *capital
	}
	if *gradingCost > 0 {
		cfg.GradingCost = *gradingCost
	}
	if *disableFallback {
		cfg.FallbackDisabled = true
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromFile loads a yaml config without consulting flags, for callers that
// manage their own flag parsing.
func FromFile(path string) (Config, error) {
	cfg, err := fromYaml(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromYaml(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if dir := os.Getenv("CARDTREND_WAL_DIR"); dir != "" {
		cfg.WalDir = dir
	}
	if seed := os.Getenv("CARDTREND_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil && v != 0 {
			cfg.SyntheticSeed = v
		}
	}
}

func (c Config) validate() error {
	if len(c.Cards) == 0 {
		return fmt.Errorf("at least one card is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("invalid delay window [%s, %s]", c.DelayMin, c.DelayMax)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", c.InitialCapital)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
