// Package upstream talks to the residence directory service that owns the
// vocabularies, the catalog and the published rankings.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/relaxation"
	"github.com/poiesic/concierge/vocabulary"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Client is an HTTP client for the directory service.
// It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	token   string
	timeout time.Duration
	logger  *slog.Logger
}

var (
	_ vocabulary.Source  = (*Client)(nil)
	_ relaxation.Querier = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.http = hc
		}
		return nil
	}
}

// WithRateLimit caps outgoing requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 || burst < 1 {
			return fmt.Errorf("%w: rate %v burst %d", ErrInvalidOption, rps, burst)
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("%w: timeout %v", ErrInvalidOption, d)
		}
		c.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 1),
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "upstream")
	return c, nil
}

// Fetch returns the canonical values for a field. Fields the service does not
// know yield an empty list.
func (c *Client) Fetch(ctx context.Context, field core.Field) ([]string, error) {
	var out vocabularyResponse
	err := c.do(ctx, http.MethodGet, "/vocabulary/"+url.PathEscape(string(field)), nil, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Values, nil
}

// Query returns the residences matching every canonical selection.
func (c *Client) Query(ctx context.Context, selections core.Selections) ([]*core.Residence, error) {
	req := searchRequest{Filters: map[core.Field][]string{}}
	for _, f := range selections.Fields() {
		req.Filters[f] = selections.Get(f)
	}
	var out searchResponse
	if err := c.do(ctx, http.MethodPost, "/residences/search", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Residences, nil
}

// Rankings returns the published rankings of a residence.
func (c *Client) Rankings(ctx context.Context, residenceID string) ([]core.RankingScore, error) {
	var out rankingsResponse
	path := "/residences/" + url.PathEscape(residenceID) + "/rankings"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Rankings, nil
}

// ListResidences returns one page of the catalog. Pages start at 1.
func (c *Client) ListResidences(ctx context.Context, page, limit int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out Page
	if err := c.do(ctx, http.MethodGet, "/residences", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upstream request failed", "method", method, "path", path, "err", err)
		return classify(err)
	}
	defer resp.Body.Close()
	c.logger.Debug("upstream request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return classify(fmt.Errorf("decoding %s response: %w", path, err))
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", core.ErrUpstreamTimeout, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", core.ErrUpstreamUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, msg)
	}
}

// classify maps transport failures onto the core upstream errors.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", core.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %w", core.ErrUpstreamUnavailable, err)
}
