package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appregistrar "nomadly/internal/application/registration/registrar"
	"nomadly/internal/shared/config"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 256 << 10

	// errCodeDuplicateDomain is OpenProvider's "domain already exists for
	// this customer" error.
	errCodeDuplicateDomain = 346
)

// OpenProviderClient implements the registrar contract against the
// OpenProvider v1beta API. Auth tokens are acquired lazily and refreshed on
// 401 responses.
type OpenProviderClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     logger.Interface

	mu    sync.Mutex
	token string
}

var _ appregistrar.Client = (*OpenProviderClient)(nil)

func NewOpenProviderClient(cfg *config.RegistrarConfig, logger logger.Interface) *OpenProviderClient {
	return &OpenProviderClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

func (c *OpenProviderClient) CheckAvailability(ctx context.Context, domainName string) (*appregistrar.AvailabilityResult, error) {
	name, tld := splitDomain(domainName)
	body := map[string]interface{}{
		"domains": []map[string]string{{"name": name, "extension": tld}},
	}

	var data struct {
		Results []struct {
			Status  string `json:"status"`
			Premium bool   `json:"is_premium"`
			Price   struct {
				Reseller struct {
					Price float64 `json:"price"`
				} `json:"reseller"`
			} `json:"price"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1beta/domains/check", body, &data); err != nil {
		return nil, err
	}
	if len(data.Results) == 0 {
		return nil, apperrors.NewExternalError("registrar returned no availability results")
	}

	r := data.Results[0]
	return &appregistrar.AvailabilityResult{
		Available: r.Status == "free",
		PriceUSD:  decimal.NewFromFloat(r.Price.Reseller.Price),
		Premium:   r.Premium,
	}, nil
}

func (c *OpenProviderClient) CreateContact(ctx context.Context, details appregistrar.ContactDetails) (string, error) {
	body := map[string]interface{}{
		"name": map[string]string{
			"first_name": details.FirstName,
			"last_name":  details.LastName,
		},
		"email": details.Email,
		"phone": map[string]string{
			"country_code":    "+1",
			"subscriber_number": strings.TrimPrefix(details.Phone, "+1."),
		},
		"address": map[string]string{
			"street":  details.Street,
			"city":    details.City,
			"zipcode": details.ZipCode,
			"country": details.CountryCode,
		},
	}

	var data struct {
		Handle string `json:"handle"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1beta/customers", body, &data); err != nil {
		return "", err
	}
	if data.Handle == "" {
		return "", apperrors.NewExternalError("registrar returned empty contact handle")
	}
	return data.Handle, nil
}

func (c *OpenProviderClient) RegisterDomain(ctx context.Context, domainName, contactHandle string, nameservers []string) (*appregistrar.RegistrationOutcome, error) {
	name, tld := splitDomain(domainName)
	nsList := make([]map[string]string, 0, len(nameservers))
	for _, ns := range nameservers {
		nsList = append(nsList, map[string]string{"name": ns})
	}

	body := map[string]interface{}{
		"domain":         map[string]string{"name": name, "extension": tld},
		"period":         1,
		"owner_handle":   contactHandle,
		"admin_handle":   contactHandle,
		"tech_handle":    contactHandle,
		"billing_handle": contactHandle,
		"nameservers":    nsList,
	}

	var data struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1beta/domains", body, &data); err != nil {
		return nil, err
	}
	return &appregistrar.RegistrationOutcome{
		RegistrarID: fmt.Sprintf("%d", data.ID),
		ExpiryYears: 1,
	}, nil
}

func (c *OpenProviderClient) UpdateNameservers(ctx context.Context, registrarID string, nameservers []string) error {
	nsList := make([]map[string]string, 0, len(nameservers))
	for _, ns := range nameservers {
		nsList = append(nsList, map[string]string{"name": ns})
	}
	body := map[string]interface{}{"nameservers": nsList}

	path := fmt.Sprintf("/v1beta/domains/%s/nameservers", registrarID)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *OpenProviderClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Token may have expired; re-authenticate once.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		resp, err = c.send(ctx, method, path, body, true)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewExternalError("failed to read registrar response", err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewExternalError(
			fmt.Sprintf("registrar returned status %d", resp.StatusCode), string(raw))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apperrors.NewExternalError("invalid registrar response", err.Error())
	}
	if envelope.Code != 0 {
		if envelope.Code == errCodeDuplicateDomain {
			return apperrors.NewConflictError("domain already registered for this contact", envelope.Desc)
		}
		return apperrors.NewExternalError(
			fmt.Sprintf("registrar error code %d", envelope.Code), envelope.Desc)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return apperrors.NewExternalError("failed to decode registrar data", err.Error())
		}
	}
	return nil
}

func (c *OpenProviderClient) send(ctx context.Context, method, path string, body interface{}, forceAuth bool) (*http.Response, error) {
	token, err := c.ensureToken(ctx, forceAuth)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build registrar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("registrar unreachable", err.Error())
	}
	return resp, nil
}

func (c *OpenProviderClient) ensureToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1beta/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewExternalError("registrar auth unreachable", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError(
			fmt.Sprintf("registrar auth failed with status %d", resp.StatusCode))
	}

	var result struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return "", apperrors.NewExternalError("invalid registrar auth response", err.Error())
	}
	if result.Data.Token == "" {
		return "", apperrors.NewExternalError("registrar auth returned empty token")
	}

	c.token = result.Data.Token
	c.logger.Debugw("registrar authentication refreshed")
	return c.token, nil
}

// splitDomain separates "example.com" into name and extension the way the
// registrar API expects.
func splitDomain(domainName string) (name, tld string) {
	idx := strings.Index(domainName, ".")
	if idx < 0 {
		return domainName, ""
	}
	return domainName[:idx], domainName[idx+1:]
}
