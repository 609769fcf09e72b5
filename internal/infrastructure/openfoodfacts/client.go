package openfoodfacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/forkandfind/client/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Open Food Facts API
const DefaultBaseURL = "https://world.openfoodfacts.org"

// ClientConfig configures the Open Food Facts client
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int

	// HTTPClient overrides the default client, mostly for tests
	HTTPClient *http.Client
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

var _ domain.FoodSource = (*Client)(nil)

// NewClient creates a new Open Food Facts API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ForkAndFind/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Burst),
		logger:      logger.Named("openfoodfacts"),
	}
}

// StatusError is a non-200 upstream answer. It matches domain.ErrUpstreamFailure.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status %d", domain.ErrUpstreamFailure, e.Status)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrUpstreamFailure
}

// listResponse is the envelope shared by the three listing endpoints
type listResponse struct {
	Count    domain.FlexString `json:"count"`
	Page     domain.FlexString `json:"page"`
	Products json.RawMessage   `json:"products"`
}

// productResponse is the envelope of the single product endpoint
type productResponse struct {
	Status  domain.FlexString `json:"status"`
	Product json.RawMessage   `json:"product"`
}

// ListProducts fetches one listing page for the given mode. A body whose
// products member is missing or not a list is reported as ErrMalformedResponse.
func (c *Client) ListProducts(ctx context.Context, page int, mode domain.QueryMode) (*domain.ProductPage, error) {
	req := BuildListRequest(page, mode)

	var resp listResponse
	if err := c.getJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(resp.Products)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Warn("listing without product list",
			zap.String("path", req.Path),
			zap.Int("page", page))
		return nil, fmt.Errorf("%w: products is not a list", domain.ErrMalformedResponse)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	products := DecodeProducts(records)
	count, _ := strconv.Atoi(string(resp.Count))
	pageNumber, err := strconv.Atoi(string(resp.Page))
	if err != nil {
		pageNumber = page
	}

	c.logger.Debug("listing fetched",
		zap.String("mode", mode.Kind.String()),
		zap.String("value", mode.Value),
		zap.Int("page", pageNumber),
		zap.Int("records", len(records)),
		zap.Int("decoded", len(products)))

	return &domain.ProductPage{
		Products: products,
		Count:    count,
		Page:     pageNumber,
	}, nil
}

// GetProduct retrieves a single product by its code
func (c *Client) GetProduct(ctx context.Context, code string) (*domain.RawProduct, error) {
	var resp productResponse
	if err := c.getJSON(ctx, BuildProductRequest(code), &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	if resp.Status != "1" || len(bytes.TrimSpace(resp.Product)) == 0 || string(bytes.TrimSpace(resp.Product)) == "null" {
		return nil, domain.ErrProductNotFound
	}

	var product domain.RawProduct
	if err := json.Unmarshal(resp.Product, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if product.Code == "" {
		product.Code = domain.FlexString(code)
	}

	return &product, nil
}

// ListCategories retrieves the full category taxonomy with product counts
func (c *Client) ListCategories(ctx context.Context) (*domain.Taxonomy, error) {
	var taxonomy domain.Taxonomy
	if err := c.getJSON(ctx, BuildTaxonomyRequest(), &taxonomy); err != nil {
		return nil, err
	}

	c.logger.Debug("taxonomy fetched", zap.Int("tags", len(taxonomy.Tags)))
	return &taxonomy, nil
}

// getJSON executes a rate limited GET and decodes the JSON body into out.
// Failed requests are not retried.
func (c *Client) getJSON(ctx context.Context, r Request, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.doRequest(ctx, r.URL(c.baseURL))
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", r.Path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("unexpected status",
			zap.String("path", r.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return &StatusError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return resp, nil
}
