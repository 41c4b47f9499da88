// Package client provides the authenticated HTTP client used to read
// paginated listings from the YUDL digital-library API.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for YUDL client operations.
var (
	yudlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yudl_requests_total",
		Help: "Total YUDL API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	yudlRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yudl_request_duration_seconds",
		Help:    "YUDL API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	yudlErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yudl_errors_total",
		Help: "Total YUDL API errors by class",
	}, []string{"class"})
)

// DefaultUsername is the account every YUDL export view is read with.
const DefaultUsername = "admin"

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is a YUDL API client. It is not safe for concurrent use with
// different credentials; one Client serves one process run.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Username for HTTP basic auth.
	Username string

	// Password for HTTP basic auth (the loaded credential).
	Password string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per request. Zero means no timeout: a hung connection
	// blocks the run until the process is terminated.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used by the CLIs.
func DefaultConfig(password string) Config {
	return Config{
		Username:  DefaultUsername,
		Password:  password,
		UserAgent: "yudl-client/0.1.0",
		Timeout:   0,
	}
}

// New creates a new YUDL client.
func New(cfg Config) (*Client, error) {
	if cfg.Password == "" {
		return nil, ErrPasswordRequired
	}

	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	logger := log.With().Str("component", "yudl-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Do performs an authenticated HTTP request. Non-2xx responses are returned
// to the caller as-is; only transport failures produce an error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		yudlRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing YUDL request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		yudlErrorsTotal.WithLabelValues(string(errClass)).Inc()
		yudlRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	yudlRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := c.classifyError(resp, nil)
		yudlErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("YUDL request error")
	}

	return resp, nil
}

// classifyError categorizes an error for observability.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// PageURL returns endpoint with the page query parameter set to page.
// Query parameters already present on endpoint are kept.
func PageURL(endpoint string, page int) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", ErrInvalidEndpoint, endpoint)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Get performs a GET request against an absolute URL.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// FetchPage fetches one page of a paginated listing and returns the status
// code and the full body. A non-200 status is not an error here.
func (c *Client) FetchPage(ctx context.Context, endpoint string, page int) (int, []byte, error) {
	pageURL, err := PageURL(endpoint, page)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.Get(ctx, pageURL)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		yudlErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return resp.StatusCode, nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	return resp.StatusCode, body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
