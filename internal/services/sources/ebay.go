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
	ebayName    = "eBay"
	ebayBaseURL = "https://www.ebay.com"
)

// NewEbay creates the eBay sold-listings adapter.
func NewEbay(f fetcher.Fetcher, policy FallbackPolicy, seed int64, logger *zap.Logger) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adapter{
		name:    ebayName,
		fetcher: f,
		parser:  ListingParser(ebayName),
		buildURL: func(q domain.Query) string {
			search := url.QueryEscape(q.CardName + " pokemon card")
			return fmt.Sprintf("%s/sch/i.html?_from=R40&_nkw=%s&_sacat=0&LH_Sold=1&LH_Complete=1&_sop=13", ebayBaseURL, search)
		},
		synth: NewGenerator(Profile{
			Source:   ebayName,
			MinPrice: 40,
			MaxPrice: 400,
			Cadence:  24 * time.Hour,
		}, seed),
		policy: policy,
		logger: logger.With(zap.String("source", ebayName)),
	}
}
