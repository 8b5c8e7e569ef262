// Package registry implements the CMS NPI Registry lookup client.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
)

// Client looks up a provider by NPI number. A nil Observation with nil
// error means the number was not found; transport failures return an error
// which callers treat as "observation absent".
type Client interface {
	Lookup(ctx context.Context, npi string) (*model.Observation, error)
}

// HTTPClient implements Client against the public NPI Registry API.
type HTTPClient struct {
	client    *http.Client
	baseURL   string
	version   string
	userAgent string
	limiter   *rate.Limiter
}

// NewHTTPClient creates an HTTPClient from config, applying defaults for
// any unset values.
func NewHTTPClient(cfg config.RegistryConfig) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://npiregistry.cms.hhs.gov/api/"
	}
	if cfg.Version == "" {
		cfg.Version = "2.1"
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 6
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "provider-directory/1.0"
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   cfg.BaseURL,
		version:   cfg.Version,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// registryResponse mirrors the subset of the NPI Registry API response the
// pipeline consumes. Missing sub-fields degrade to absent observations, not
// errors.
type registryResponse struct {
	ResultCount int              `json:"result_count"`
	Results     []registryResult `json:"results"`
}

type registryResult struct {
	Basic struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Addresses []struct {
		Address1        string `json:"address_1"`
		Address2        string `json:"address_2"`
		City            string `json:"city"`
		State           string `json:"state"`
		PostalCode      string `json:"postal_code"`
		TelephoneNumber string `json:"telephone_number"`
	} `json:"addresses"`
	Taxonomies []struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	} `json:"taxonomies"`
}

// Lookup queries the registry by NPI number. Returns (nil, nil) when the
// registry has no record for the number.
func (c *HTTPClient) Lookup(ctx context.Context, npi string) (*model.Observation, error) {
	npi = strings.TrimSpace(npi)
	if npi == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "registry: rate limit wait")
	}

	q := url.Values{}
	q.Set("version", c.version)
	q.Set("number", npi)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: lookup %s", npi)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, eris.Errorf("registry: lookup %s: unexpected status %d", npi, resp.StatusCode)
	}

	var parsed registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrapf(err, "registry: decode response for %s", npi)
	}

	if len(parsed.Results) == 0 {
		zap.L().Debug("registry: npi not found", zap.String("npi", npi))
		return nil, nil
	}

	return bundleFromResult(parsed.Results[0]), nil
}

// bundleFromResult extracts the observable fields from the first registry
// result. Each field is independently optional.
func bundleFromResult(r registryResult) *model.Observation {
	obs := &model.Observation{}

	switch {
	case r.Basic.OrganizationName != "":
		obs.Name = r.Basic.OrganizationName
	case r.Basic.FirstName != "" && r.Basic.LastName != "":
		obs.Name = fmt.Sprintf("Dr. %s %s", r.Basic.FirstName, r.Basic.LastName)
	case r.Basic.FirstName != "":
		obs.Name = "Dr. " + r.Basic.FirstName
	}

	if len(r.Addresses) > 0 {
		addr := r.Addresses[0]
		parts := make([]string, 0, 5)
		for _, p := range []string{addr.Address1, addr.Address2, addr.City, addr.State, addr.PostalCode} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		obs.Address = strings.Join(parts, ", ")
		obs.Phone = addr.TelephoneNumber
	}

	if len(r.Taxonomies) > 0 {
		primary := r.Taxonomies[0]
		if primary.Desc != "" {
			obs.Speciality = primary.Desc
		} else {
			obs.Speciality = primary.Code
		}
	}

	return obs
}
