package dnsprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appdns "nomadly/internal/application/registration/dnsprovider"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 256 << 10

	// errCodeZoneExists is Cloudflare's "zone already exists" error.
	errCodeZoneExists = 1061
)

// CloudflareClient implements the DNS provider contract against the
// Cloudflare v4 API.
type CloudflareClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     logger.Interface
}

var _ appdns.Client = (*CloudflareClient)(nil)

func NewCloudflareClient(cfg *config.DNSProviderConfig, logger logger.Interface) *CloudflareClient {
	return &CloudflareClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type apiResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result json.RawMessage `json:"result"`
}

// CreateZone creates a zone for the domain. An already-existing zone is
// looked up and returned instead of failing, keeping retries idempotent.
func (c *CloudflareClient) CreateZone(ctx context.Context, domainName string) (*appdns.Zone, error) {
	var result struct {
		ID          string   `json:"id"`
		NameServers []string `json:"name_servers"`
	}
	err := c.do(ctx, http.MethodPost, "/zones", map[string]interface{}{
		"name":       domainName,
		"jump_start": false,
	}, &result)
	if err != nil {
		if apperrors.IsConflictError(err) {
			c.logger.Infow("zone already exists, reusing it", "domain", domainName)
			return c.findZone(ctx, domainName)
		}
		return nil, err
	}

	return &appdns.Zone{ZoneID: result.ID, Nameservers: result.NameServers}, nil
}

func (c *CloudflareClient) CreateRecord(ctx context.Context, zoneID string, record appdns.Record) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/zones/%s/dns_records", zoneID), map[string]interface{}{
		"type":    record.Type,
		"name":    record.Name,
		"content": record.Content,
		"ttl":     record.TTL,
		"proxied": record.Proxied,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

func (c *CloudflareClient) findZone(ctx context.Context, domainName string) (*appdns.Zone, error) {
	var result []struct {
		ID          string   `json:"id"`
		NameServers []string `json:"name_servers"`
	}
	path := "/zones?name=" + url.QueryEscape(domainName)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.NewExternalError("zone reported as existing but not found", domainName)
	}
	return &appdns.Zone{ZoneID: result[0].ID, Nameservers: result[0].NameServers}, nil
}

func (c *CloudflareClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build dns request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("dns provider unreachable", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewExternalError("failed to read dns response", err.Error())
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apperrors.NewExternalError("invalid dns response", err.Error())
	}
	if !envelope.Success {
		for _, e := range envelope.Errors {
			if e.Code == errCodeZoneExists {
				return apperrors.NewConflictError("zone already exists", e.Message)
			}
		}
		return apperrors.NewExternalError(
			fmt.Sprintf("dns provider returned status %d", resp.StatusCode), string(raw))
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return apperrors.NewExternalError("failed to decode dns data", err.Error())
		}
	}
	return nil
}
