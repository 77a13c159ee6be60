package teeoff

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

	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

const (
	geoCityPath = "/api/autocomplete/geocity/"
	searchPath  = "/api/tee-times/tee-time-results"
)

// Client is the upstream tee-time provider API.
type Client interface {
	// GeoCity resolves a free-text city to geocoding hits.
	GeoCity(ctx context.Context, city string) (*GeoCityResult, error)

	// GeoCityRaw performs the geocity lookup and returns the upstream
	// status and body untouched, for the passthrough proxy endpoint.
	GeoCityRaw(ctx context.Context, city string) (*RawResponse, error)

	// SearchTeeTimes runs a typed tee-time search.
	SearchTeeTimes(ctx context.Context, req *SearchRequest) (*SearchResult, error)

	// SearchRaw forwards a verbatim search body and returns the upstream
	// status and body untouched.
	SearchRaw(ctx context.Context, body []byte) (*RawResponse, error)
}

// HTTPClient implements Client against the real provider.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// RawResponse carries an upstream response through unchanged.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// SearchRequest is the provider's tee-time-results request body. Field
// names are the provider's, not ours.
type SearchRequest struct {
	Radius                    int     `json:"Radius"`
	Latitude                  float64 `json:"Latitude"`
	Longitude                 float64 `json:"Longitude"`
	PageSize                  int     `json:"PageSize"`
	PageNumber                int     `json:"PageNumber"`
	SearchType                int     `json:"SearchType"`
	SortBy                    string  `json:"SortBy"`
	SortDirection             int     `json:"SortDirection"`
	Date                      string  `json:"Date"`
	HotDealsOnly              bool    `json:"HotDealsOnly"`
	PriceMin                  int     `json:"PriceMin"`
	PriceMax                  int     `json:"PriceMax"`
	Players                   string  `json:"Players"`
	TimePeriod                int     `json:"TimePeriod"`
	Holes                     string  `json:"Holes"`
	FacilityType              int     `json:"FacilityType"`
	RateType                  string  `json:"RateType"`
	TimeMin                   int     `json:"TimeMin"`
	TimeMax                   int     `json:"TimeMax"`
	SortByRollup              string  `json:"SortByRollup"`
	View                      string  `json:"View"`
	ExcludeFeaturedFacilities bool    `json:"ExcludeFeaturedFacilities"`
	TeeTimeCount              int     `json:"TeeTimeCount"`
	PromotedCampaignsOnly     bool    `json:"PromotedCampaignsOnly"`
	CurrentClientDate         string  `json:"CurrentClientDate"`
}

// GeoCityResult is the geocity autocomplete payload. A missing hits array
// decodes to nil and callers keep their previous position.
type GeoCityResult struct {
	Hits []GeoHit `json:"hits"`
}

// GeoHit is one geocoding candidate.
type GeoHit struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchResult is the typed slice of a tee-time search response.
type SearchResult struct {
	Facilities []Facility `json:"facilities"`
}

// Facility is one course location in a search response.
type Facility struct {
	Name      string    `json:"name"`
	Address   Address   `json:"address"`
	Distance  float64   `json:"distance"`
	Thumbnail string    `json:"thumbnail"`
	TeeTimes  []TeeTime `json:"teeTimes"`
}

// Address is the provider's facility address block.
type Address struct {
	Line1           string `json:"line1"`
	City            string `json:"city"`
	StateProvince   string `json:"stateProvince"`
	PostalCode      string `json:"postalCode"`
	FormattedString string `json:"formattedString"`
}

// TeeTime is one raw bookable slot.
type TeeTime struct {
	Time        string       `json:"time"`
	Players     int          `json:"players"`
	DetailURL   string       `json:"detailUrl"`
	Price       Price        `json:"price"`
	DisplayRate *DisplayRate `json:"displayRate"`
}

// Price carries the provider's pre-formatted display price. The markup
// fragment is trusted upstream content and passed through as-is.
type Price struct {
	RoundedSuperScriptFormattedValue string `json:"roundedSuperScriptFormattedValue"`
}

// DisplayRate is the optional nested rate detail.
type DisplayRate struct {
	HoleCount *int `json:"holeCount"`
}

// NewClient creates a provider client.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GeoCity resolves a city name to geocoding hits.
func (c *HTTPClient) GeoCity(ctx context.Context, city string) (*GeoCityResult, error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.NewValidationError("city is required")
	}

	endpoint := c.baseURL + geoCityPath + url.PathEscape(city)
	out := &GeoCityResult{}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GeoCityRaw performs the geocity lookup without decoding.
func (c *HTTPClient) GeoCityRaw(ctx context.Context, city string) (*RawResponse, error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.NewValidationError("city is required")
	}

	endpoint := c.baseURL + geoCityPath + url.PathEscape(city)
	return c.doRaw(ctx, http.MethodGet, endpoint, nil)
}

// SearchTeeTimes runs a typed tee-time search.
func (c *HTTPClient) SearchTeeTimes(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode search request", err)
	}

	out := &SearchResult{}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload), out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchRaw forwards a verbatim request body.
func (c *HTTPClient) SearchRaw(ctx context.Context, body []byte) (*RawResponse, error) {
	return c.doRaw(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	raw, err := c.doRaw(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	if raw.StatusCode < 200 || raw.StatusCode >= 300 {
		return apperrors.NewUpstreamError(
			fmt.Sprintf("provider returned status %d", raw.StatusCode), nil)
	}

	if err := json.Unmarshal(raw.Body, out); err != nil {
		return apperrors.NewUpstreamError("failed to decode provider response", err)
	}

	return nil
}

func (c *HTTPClient) doRaw(ctx context.Context, method, endpoint string, body io.Reader) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build provider request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("provider request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to read provider response", err)
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
