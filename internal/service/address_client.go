package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace-service/internal/delivery"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// AddressLookup resolves a free-form address to a 10-digit administrative code.
// An empty code with a nil error means the address is unknown.
type AddressLookup interface {
	LookupAdmCode(ctx context.Context, address string) (string, error)
}

// AddressClient calls an external geocoding endpoint:
// GET {baseURL}?address=... returning {"adm_cd": "..."}
type AddressClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAddressClient creates a new address lookup client
func NewAddressClient(baseURL, token string, timeout time.Duration) *AddressClient {
	return &AddressClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     util.GetLogger(),
	}
}

type addressLookupResponse struct {
	AdmCd string `json:"adm_cd"`
}

// LookupAdmCode resolves address to an administrative code
func (c *AddressClient) LookupAdmCode(ctx context.Context, address string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AddressClient.LookupAdmCode")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AddressLookupLatency.Observe(time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + "?" + url.Values{"address": {address}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build address lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.AddressLookupFailures.Inc()
		util.RecordError(span, err)
		return "", fmt.Errorf("address lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		util.AddressLookupFailures.Inc()
		return "", fmt.Errorf("address lookup returned status %d", resp.StatusCode)
	}

	var body addressLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		util.AddressLookupFailures.Inc()
		return "", fmt.Errorf("failed to decode address lookup response: %w", err)
	}

	code := strings.TrimSpace(body.AdmCd)
	if !delivery.ValidAdmCode(code) {
		c.logger.Debug("Address lookup returned no usable code",
			zap.String("adm_cd", body.AdmCd))
		return "", nil
	}
	return code, nil
}
