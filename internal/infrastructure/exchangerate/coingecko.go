package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appexchange "nomadly/internal/application/payment/exchangerate"
	"nomadly/internal/shared/biztime"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	requestTimeout  = 10 * time.Second
	maxResponseSize = 64 << 10
)

// assetIDs maps the asset codes used on orders to CoinGecko coin ids.
var assetIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"ltc":  "litecoin",
	"doge": "dogecoin",
	"usdt": "tether",
	"usdc": "usd-coin",
	"bnb":  "binancecoin",
	"trx":  "tron",
}

type cachedRate struct {
	rate     decimal.Decimal
	fetchedAt time.Time
}

// CoinGeckoService fetches crypto/USD rates with a per-asset cache. When the
// live source fails, the last known rate is served with the quote marked
// degraded; valuation never silently blocks the payment pipeline.
type CoinGeckoService struct {
	baseURL    string
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     logger.Interface

	mu    sync.RWMutex
	rates map[string]cachedRate
}

var _ appexchange.Service = (*CoinGeckoService)(nil)

func NewCoinGeckoService(cfg *config.ExchangeRateConfig, logger logger.Interface) *CoinGeckoService {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CoinGeckoService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cacheTTL:   ttl,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		rates:      make(map[string]cachedRate),
	}
}

func (s *CoinGeckoService) GetRateUSD(ctx context.Context, asset string) (*appexchange.Quote, error) {
	asset = strings.ToLower(strings.TrimSpace(asset))
	now := biztime.NowUTC()

	s.mu.RLock()
	cached, hasCache := s.rates[asset]
	s.mu.RUnlock()

	if hasCache && now.Sub(cached.fetchedAt) < s.cacheTTL {
		return &appexchange.Quote{RateUSD: cached.rate}, nil
	}

	rate, err := s.fetchRate(ctx, asset)
	if err != nil {
		if hasCache {
			s.logger.Warnw("rate fetch failed, serving last known rate",
				"asset", asset,
				"rate_age", now.Sub(cached.fetchedAt).String(),
				"error", err,
			)
			return &appexchange.Quote{RateUSD: cached.rate, Degraded: true}, nil
		}
		return nil, apperrors.NewReconciliationError(
			fmt.Sprintf("no usable rate for asset %q", asset), err.Error())
	}

	s.mu.Lock()
	s.rates[asset] = cachedRate{rate: rate, fetchedAt: now}
	s.mu.Unlock()

	return &appexchange.Quote{RateUSD: rate}, nil
}

func (s *CoinGeckoService) ConvertToUSD(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, *appexchange.Quote, error) {
	quote, err := s.GetRateUSD(ctx, asset)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount.Mul(quote.RateUSD).Round(2), quote, nil
}

func (s *CoinGeckoService) fetchRate(ctx context.Context, asset string) (decimal.Decimal, error) {
	coinID, ok := assetIDs[asset]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown asset %q", asset)
	}

	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", "usd")
	endpoint := fmt.Sprintf("%s/simple/price?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate source unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var result map[string]struct {
		USD json.Number `json:"usd"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate response: %w", err)
	}

	entry, ok := result[coinID]
	if !ok || entry.USD == "" {
		return decimal.Zero, fmt.Errorf("rate source returned no price for %q", coinID)
	}
	rate, err := decimal.NewFromString(entry.USD.String())
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate source returned unusable price %q", entry.USD)
	}
	return rate, nil
}
