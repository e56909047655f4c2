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
	priceChartingName    = "PriceCharting"
	priceChartingBaseURL = "https://www.pricecharting.com"
)

// NewPriceCharting creates the PriceCharting price-history adapter. Its
// history reaches further back than sold listings, so it uses a weekly
// synthetic cadence.
func NewPriceCharting(f fetcher.Fetcher, policy FallbackPolicy, seed int64, logger *zap.Logger) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adapter{
		name:    priceChartingName,
		fetcher: f,
		parser:  HistoryParser(priceChartingName),
		buildURL: func(q domain.Query) string {
			return fmt.Sprintf("%s/search-products?q=%s&type=prices", priceChartingBaseURL, url.QueryEscape(q.CardName))
		},
		synth: NewGenerator(Profile{
			Source:   priceChartingName,
			MinPrice: 45,
			MaxPrice: 400,
			Cadence:  7 * 24 * time.Hour,
		}, seed),
		policy: policy,
		logger: logger.With(zap.String("source", priceChartingName)),
	}
}
