package customsearch

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	domainsearch "google-cse-mcp/internal/domain/search"
	"google-cse-mcp/internal/infrastructure/metrics"
	"google-cse-mcp/utils/platformerrors"
)

const (
	// defaultEndpoint is the Custom Search JSON API endpoint. Overridable
	// through ClientConfig so tests can substitute an httptest server.
	defaultEndpoint = "https://customsearch.googleapis.com/customsearch/v1"

	// maxPageSize is the API's per-call result cap. Requests above it are
	// capped; the client never issues follow-up page calls.
	maxPageSize = 10

	defaultTimeout = 10 * time.Second
)

// TokenProvider supplies the OAuth2 token source used to sign outbound
// requests.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// ClientConfig captures the knobs exposed to operators for the search client.
type ClientConfig struct {
	EngineID  string
	Endpoint  string
	UserAgent string

	// HTTP Client Settings
	HTTPTimeout     time.Duration
	MaxConnsPerHost int
	MaxIdleConns    int
	IdleConnTimeout time.Duration

	// Retry Settings
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64
}

// Client implements domainsearch.SearchClient against the Custom Search
// JSON API.
type Client struct {
	cfg         ClientConfig
	httpClient  *resty.Client
	tokens      TokenProvider
	retryConfig RetryConfig
}

var _ domainsearch.SearchClient = (*Client)(nil)

// NewClient wires the HTTP client for the Custom Search API.
func NewClient(cfg ClientConfig, tokens TokenProvider) *Client {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "google-cse-mcp/1.0"
	}

	httpTimeout := defaultTimeout
	if cfg.HTTPTimeout > 0 {
		httpTimeout = cfg.HTTPTimeout
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 100
	}
	maxConnsPerHost := cfg.MaxConnsPerHost
	if maxConnsPerHost == 0 {
		maxConnsPerHost = 50
	}
	idleConnTimeout := cfg.IdleConnTimeout
	if idleConnTimeout == 0 {
		idleConnTimeout = 90 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	httpClient := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(httpTimeout).
		SetRetryCount(0).
		SetTransport(transport)

	retryConfig := DefaultRetryConfig()
	if cfg.RetryMaxAttempts > 0 {
		retryConfig.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialDelay > 0 {
		retryConfig.InitialDelay = cfg.RetryInitialDelay
	}
	if cfg.RetryMaxDelay > 0 {
		retryConfig.MaxDelay = cfg.RetryMaxDelay
	}
	if cfg.RetryBackoffFactor > 0 {
		retryConfig.BackoffFactor = cfg.RetryBackoffFactor
	}

	return &Client{
		cfg:         cfg,
		httpClient:  httpClient,
		tokens:      tokens,
		retryConfig: retryConfig,
	}
}

// Search performs one Custom Search call with a signed bearer token, bounded
// retries, and a per-call timeout. num_results above the API page cap is
// silently capped at 10; no pagination is performed.
func (c *Client) Search(ctx context.Context, req domainsearch.SearchRequest) (*domainsearch.SearchResponse, error) {
	if strings.TrimSpace(c.cfg.EngineID) == "" {
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeConfiguration,
			"search engine id is not configured (GOOGLE_SEARCH_ENGINE_ID)",
			nil,
		)
	}

	ts, err := c.tokens.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := ts.Token()
	if err != nil {
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeCredential,
			"obtaining access token for Custom Search API",
			err,
		)
	}

	num := domainsearch.DefaultNumResults
	if req.NumResults != nil {
		num = *req.NumResults
	}
	pageSize := min(num, maxPageSize)

	log.Debug().
		Str("operation", "search").
		Str("query", req.Query).
		Int("num", pageSize).
		Msg("calling Custom Search API")

	result, err := withRetry(ctx, c.retryConfig, "custom search", func() (*cseResponse, error) {
		return c.doSearch(ctx, tok.AccessToken, req.Query, pageSize)
	})
	if err != nil {
		if isRetryable(err) {
			return nil, platformerrors.NewError(
				platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeTransientSearch,
				"Custom Search API unavailable after retries",
				err,
			)
		}
		return nil, platformerrors.AsError(platformerrors.LayerInfrastructure, err, "custom search")
	}

	return result.toDomain(pageSize), nil
}

// doSearch issues a single HTTP attempt and classifies the outcome.
func (c *Client) doSearch(ctx context.Context, accessToken, query string, num int) (*cseResponse, error) {
	var result cseResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"q":   query,
			"cx":  c.cfg.EngineID,
			"num": strconv.Itoa(num),
		}).
		SetResult(&result).
		Get(c.cfg.Endpoint)

	if err != nil {
		metrics.RecordUpstreamAttempt("transport_error")
		return nil, retryable(err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusOK:
		metrics.RecordUpstreamAttempt("ok")
		return &result, nil
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		metrics.RecordUpstreamAttempt("retryable_status")
		return nil, retryable(newStatusError(status, resp.String()))
	default:
		// Remaining 4xx: malformed request, auth, or permission problems
		// that retries cannot fix.
		metrics.RecordUpstreamAttempt("rejected")
		return nil, platformerrors.NewError(
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeSearchRequest,
			"Custom Search API rejected the request",
			newStatusError(status, resp.String()),
		)
	}
}

// statusError carries the upstream HTTP status and a bounded slice of the
// error body.
type statusError struct {
	Status int
	Body   string
}

func newStatusError(status int, body string) *statusError {
	return &statusError{Status: status, Body: truncateBody(body, 512)}
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return "HTTP " + strconv.Itoa(e.Status)
	}
	return "HTTP " + strconv.Itoa(e.Status) + ": " + e.Body
}

func truncateBody(body string, maxLen int) string {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) <= maxLen {
		return trimmed
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune.
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + "..."
}

// Custom Search JSON API structures.
type cseResponse struct {
	Items             []cseItem     `json:"items"`
	SearchInformation cseSearchInfo `json:"searchInformation"`
}

type cseItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

type cseSearchInfo struct {
	SearchTime float64 `json:"searchTime"`
	// TotalResults is string-typed in the upstream schema.
	TotalResults string `json:"totalResults"`
}

// toDomain maps the upstream body into the stable tool schema, preserving
// upstream relevance order. An absent item list is a valid zero-result
// response, not an error.
func (r *cseResponse) toDomain(limit int) *domainsearch.SearchResponse {
	results := make([]domainsearch.SearchResult, 0, len(r.Items))
	for _, item := range r.Items {
		if len(results) == limit {
			break
		}
		results = append(results, domainsearch.SearchResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}

	var total int64
	if r.SearchInformation.TotalResults != "" {
		if parsed, parseErr := strconv.ParseInt(r.SearchInformation.TotalResults, 10, 64); parseErr == nil {
			total = parsed
		}
	}

	return &domainsearch.SearchResponse{
		Results:      results,
		TotalResults: total,
		SearchTime:   r.SearchInformation.SearchTime,
	}
}
