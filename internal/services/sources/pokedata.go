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
	pokeDataName    = "PokeData"
	pokeDataBaseURL = "https://www.pokedata.io"
)

// NewPokeData creates the PokeData market adapter.
func NewPokeData(f fetcher.Fetcher, policy FallbackPolicy, seed int64, logger *zap.Logger) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adapter{
		name:    pokeDataName,
		fetcher: f,
		parser:  ListingParser(pokeDataName),
		buildURL: func(q domain.Query) string {
			return fmt.Sprintf("%s/api/cards/search?name=%s&sales=true", pokeDataBaseURL, url.QueryEscape(q.CardName))
		},
		synth: NewGenerator(Profile{
			Source:   pokeDataName,
			MinPrice: 50,
			MaxPrice: 400,
			Cadence:  3 * 24 * time.Hour,
		}, seed),
		policy: policy,
		logger: logger.With(zap.String("source", pokeDataName)),
	}
}
