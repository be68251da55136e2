package paymentgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	appgateway "nomadly/internal/application/payment/paymentgateway"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 64 << 10
)

// BlockBeeClient provisions per-order crypto payment addresses through the
// BlockBee API. Confirmation callbacks arrive on the webhook endpoint and
// are parsed by the HTTP layer, not here.
type BlockBeeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Interface
}

var _ appgateway.Gateway = (*BlockBeeClient)(nil)

func NewBlockBeeClient(cfg *config.GatewayConfig, logger logger.Interface) *BlockBeeClient {
	return &BlockBeeClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

func (c *BlockBeeClient) CreatePaymentAddress(ctx context.Context, asset, callbackRef string) (*appgateway.PaymentAddress, error) {
	q := url.Values{}
	q.Set("callback", callbackRef)
	q.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/%s/create/?%s", c.baseURL, url.PathEscape(asset), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("payment gateway unreachable", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read gateway response", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("gateway returned status %d", resp.StatusCode), string(raw))
	}

	var result struct {
		Status                 string          `json:"status"`
		AddressIn              string          `json:"address_in"`
		MinimumTransactionCoin json.Number     `json:"minimum_transaction_coin"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.NewExternalError("invalid gateway response", err.Error())
	}
	if result.Status != "success" || result.AddressIn == "" {
		return nil, apperrors.NewExternalError("gateway refused address creation", string(raw))
	}

	minimum := decimal.Zero
	if result.MinimumTransactionCoin != "" {
		if m, err := decimal.NewFromString(result.MinimumTransactionCoin.String()); err == nil {
			minimum = m
		}
	}

	c.logger.Infow("payment address created", "asset", asset, "address", result.AddressIn)
	return &appgateway.PaymentAddress{
		Address:       result.AddressIn,
		MinimumCrypto: minimum,
	}, nil
}
