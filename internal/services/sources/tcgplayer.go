package sources

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/dmikhr/cardtrend/internal/domain"
	"github.com/dmikhr/cardtrend/internal/services/fetcher"
)

const (
	tcgPlayerName    = "TCGPlayer"
	tcgPlayerBaseURL = "https://www.tcgplayer.com"
)

// NewTCGPlayer creates the TCGPlayer market-listings adapter.
func NewTCGPlayer(f fetcher.Fetcher, policy FallbackPolicy, seed int64, logger *zap.Logger) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adapter{
		name:    tcgPlayerName,
		fetcher: f,
		parser:  ListingParser(tcgPlayerName),
		buildURL: func(q domain.Query) string {
			return fmt.Sprintf("%s/search/pokemon/product?q=%s&view=grid", tcgPlayerBaseURL, url.QueryEscape(q.CardName))
		},
		synth: NewGenerator(Profile{
			Source:   tcgPlayerName,
			MinPrice: 50,
			MaxPrice: 400,
			Cadence:  24 * time.Hour,
		}, seed),
		policy: policy,
		logger: logger.With(zap.String("source", tcgPlayerName)),
	}
}
