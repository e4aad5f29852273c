package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

const (
	// DefaultBaseURL is the public query host for both search and chart requests.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultUserAgent mimics a desktop browser; requests without one are
	// frequently answered with 403.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultQuotesCount caps the number of search matches.
	DefaultQuotesCount = 20

	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second
)

// Operation names reported in errors, logs and metrics.
const (
	OpSearch = "search"
	OpChart  = "chart"
)

// Client defines the interface for fetching market data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	SearchAssets(ctx context.Context, query string) ([]model.Asset, error)
	GetBars(ctx context.Context, symbol, rangeToken string) ([]model.Bar, error)
}

// RequestObserver receives the outcome of every provider request.
type RequestObserver interface {
	ObserveProviderRequest(op, outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveProviderRequest(string, string, time.Duration) {}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and holds no per-call state, so one instance can
// serve concurrent searches and chart loads.
type FinanceClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	quotesCount int
	logger      zerolog.Logger
	observer    RequestObserver
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(fc *FinanceClient) { fc.httpClient = c }
}

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(base string) Option {
	return func(fc *FinanceClient) { fc.baseURL = strings.TrimRight(base, "/") }
}

// WithUserAgent overrides the browser User-Agent header.
func WithUserAgent(ua string) Option {
	return func(fc *FinanceClient) { fc.userAgent = ua }
}

// WithQuotesCount sets the search result cap.
func WithQuotesCount(n int) Option {
	return func(fc *FinanceClient) { fc.quotesCount = n }
}

// WithLogger sets the logger used for provider warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(fc *FinanceClient) { fc.logger = l }
}

// WithObserver registers a request observer, typically a metrics recorder.
func WithObserver(o RequestObserver) Option {
	return func(fc *FinanceClient) { fc.observer = o }
}

// NewFinanceClient creates a new Yahoo Finance client.
// Without options it targets DefaultBaseURL with a DefaultTimeout HTTP client.
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		quotesCount: DefaultQuotesCount,
		logger:      zerolog.Nop(),
		observer:    noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchAssets looks up instruments matching a free-text query.
// An empty query returns an empty slice without contacting the provider.
//
// Returns:
//   - []model.Asset: one entry per matched ticker, in provider order
//   - error: *NetworkError or *DecodeError
func (c *FinanceClient) SearchAssets(ctx context.Context, query string) ([]model.Asset, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Asset{}, nil
	}

	u, err := c.endpoint(OpSearch, "v1", "finance", "search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("quotesCount", strconv.Itoa(c.quotesCount))
	q.Set("newsCount", "0")
	q.Set("enableFuzzyQuery", "true")
	u.RawQuery = q.Encode()

	var resp SearchResponse
	if err := c.get(ctx, OpSearch, u, &resp); err != nil {
		return nil, err
	}
	if resp.Quotes == nil {
		return nil, &DecodeError{Op: OpSearch, Err: errors.New(`missing "quotes"`)}
	}

	assets := make([]model.Asset, 0, len(*resp.Quotes))
	for _, quote := range *resp.Quotes {
		if quote.Symbol == "" {
			continue
		}
		assets = append(assets, toAsset(quote))
	}
	return assets, nil
}

// GetBars fetches OHLCV bars for a symbol over the given range token
// (see ResolveRange). A provider-level error object in a successful response
// is treated as "no data" and yields an empty slice with a nil error.
//
// Returns:
//   - []model.Bar: chronologically ordered, gap-free bars
//   - error: *NetworkError or *DecodeError
func (c *FinanceClient) GetBars(ctx context.Context, symbol, rangeToken string) ([]model.Bar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, &NetworkError{Op: OpChart, Err: errors.New("empty symbol")}
	}

	u, err := c.endpoint(OpChart, "v8", "finance", "chart", symbol)
	if err != nil {
		return nil, err
	}
	params := ResolveRange(rangeToken)
	q := u.Query()
	q.Set("interval", params.Interval)
	q.Set("range", params.Range)
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.get(ctx, OpChart, u, &resp); err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 {
		if e := resp.Chart.Error; e != nil {
			c.logger.Warn().
				Str("symbol", symbol).
				Str("code", e.Code).
				Str("description", e.Description).
				Msg("yahoo chart returned an error object")
		}
		return []model.Bar{}, nil
	}

	return NormalizeBars(resp.Chart.Result[0]), nil
}

// endpoint joins path segments onto the base URL, escaping each segment.
func (c *FinanceClient) endpoint(op string, segments ...string) (*url.URL, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = fmt.Errorf("invalid base URL %q", c.baseURL)
		}
		return nil, &NetworkError{Op: op, URL: c.baseURL, Err: err}
	}
	return base.JoinPath(segments...), nil
}

// get is an internal helper that executes a GET request and decodes the JSON body
// into dest. It sets the headers the provider expects:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) get(ctx context.Context, op string, u *url.URL, dest any) (err error) {
	start := time.Now()
	defer func() {
		c.observer.ObserveProviderRequest(op, outcome(err), time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &NetworkError{Op: op, URL: u.String(), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("yahoo request failed")
		return &NetworkError{Op: op, URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: u.String(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		desc := providerErrorDescription(data)
		c.logger.Debug().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("description", desc).
			Msg("yahoo returned non-success status")
		return &NetworkError{
			Op:          op,
			URL:         u.String(),
			StatusCode:  resp.StatusCode,
			Description: desc,
			Err:         fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// providerErrorDescription pulls the human-readable reason out of an error
// body. Chart errors nest it under "chart.error", search and auth errors
// under "finance.error".
func providerErrorDescription(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.GetManyBytes(body, "chart.error.description", "finance.error.description")
	for _, r := range res {
		if r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "network_error"
	}
}

func toAsset(q SearchQuote) model.Asset {
	name := q.ShortName
	if name == nil || *name == "" {
		name = q.LongName
	}
	if name == nil || *name == "" {
		s := q.Symbol
		name = &s
	}
	return model.Asset{
		Symbol:   q.Symbol,
		Name:     name,
		Exchange: q.Exchange,
		Type:     q.TypeDisp,
	}
}
