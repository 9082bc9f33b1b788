package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-quilt/internal/common"
	"github.com/i474232898/temperature-quilt/internal/quilt"
)

const (
	DefaultTokenHeader = "xc-token"
	DefaultLimit       = 365
)

var (
	// ErrNotConfigured is returned when no table URL has been set.
	ErrNotConfigured = errors.New("table store url is not configured")
	// ErrMissingPostalCode is returned when filtering by postal code without one.
	ErrMissingPostalCode = errors.New("postal code is required")
	// ErrDecode wraps failures to read the response envelope.
	ErrDecode = errors.New("decode temperature records")
)

// Config describes the table-storage endpoint.
type Config struct {
	BaseURL     string
	ViewID      string
	Token       string
	TokenHeader string
	Limit       int

	// FilterByPostalCode adds a server-side zip filter to the request. With it
	// off every postal code receives the same, unfiltered record list.
	FilterByPostalCode bool

	MaxRetries int
}

// Client fetches daily temperature records from a table-storage REST API.
type Client struct {
	name    string
	cfg     Config
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

var _ quilt.Fetcher = (*Client)(nil)

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = DefaultTokenHeader
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tablestore",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		name: "tablestore",
		cfg:  cfg,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      cfg.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// Fetch issues one GET for the record list and decodes the {"list": [...]}
// envelope. Transport, status and decode failures all come back as the error.
func (c *Client) Fetch(ctx context.Context, postalCode string) ([]quilt.TemperatureRecord, error) {
	if c.cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	postalCode = strings.TrimSpace(postalCode)
	if c.cfg.FilterByPostalCode && postalCode == "" {
		return nil, ErrMissingPostalCode
	}

	u, err := c.requestURL(postalCode)
	if err != nil {
		return nil, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "application/json")
		if c.cfg.Token != "" {
			req.Header.Set(c.cfg.TokenHeader, c.cfg.Token)
		}
		return req, nil
	}

	resp, err := doRequest(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !common.ContainsAnyFold(ct, "json", "text/plain") {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrDecode, ct)
	}

	var payload struct {
		List []quilt.TemperatureRecord `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if payload.List == nil {
		payload.List = []quilt.TemperatureRecord{}
	}

	return payload.List, nil
}

func (c *Client) requestURL(postalCode string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse table store url: %w", err)
	}

	values := u.Query()
	if c.cfg.ViewID != "" {
		values.Set("viewId", c.cfg.ViewID)
	}
	values.Set("limit", strconv.Itoa(c.cfg.Limit))
	values.Set("shuffle", "0")
	values.Set("offset", "0")
	if c.cfg.FilterByPostalCode {
		values.Set("where", fmt.Sprintf("(zip,eq,%s)", postalCode))
	}

	u.RawQuery = values.Encode()
	return u.String(), nil
}
