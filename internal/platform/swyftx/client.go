// Package swyftx is the REST adapter for the Swyftx exchange API. It owns the
// bearer-token session, the asset catalog, the translation between the unified
// order model and the exchange's primary/secondary representation, and the
// classification of upstream errors.
package swyftx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// DefaultBaseURL is the production Swyftx API root.
const DefaultBaseURL = "https://api.swyftx.com.au"

const defaultUserAgent = "swyftxgo/1.0"

// audAssetID is the asset id of the fixed AUD quote currency. Every
// synthesized market quotes against it.
const audAssetID = "1"

type scope string

const (
	scopePublic  scope = "public"
	scopePrivate scope = "private"
)

// Client is the REST client for the Swyftx exchange API.
//
// A Client carries its own session state (bearer token, asset catalog, market
// set), so multiple independent clients can coexist in one process.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.RWMutex
	accessToken  string
	assetsByCode map[string]domain.Asset
	assetsByID   map[string]domain.Asset
	markets      map[string]domain.Market // by symbol
	marketsByID  map[string]domain.Market // by "{baseID}/{quoteID}"

	refreshGroup singleflight.Group
	catalogGroup singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Tests use this to point the
// adapter at a fake exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new Swyftx REST client.
//
// baseURL is the API root, e.g. "https://api.swyftx.com.au"; an empty string
// selects the production endpoint. apiKey may be empty for public-only use;
// private endpoints then fail with an authentication error before any call.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// signedRequest is the fully built request handed to the transport.
type signedRequest struct {
	URL     string
	Method  string
	Headers http.Header
	Body    []byte
}

// sign builds the final URL, headers, and body for an endpoint template.
//
// Path placeholders like {orderUuid} are substituted from params and consumed;
// leftover params become the query string for GET/DELETE (and every public
// verb) or the JSON body for private POST/PUT. Private scope verifies that
// credentials are configured, refreshes the bearer token if the session has
// none, and attaches the Authorization header. There is no per-request
// signature; authentication is carried entirely by the token.
func (c *Client) sign(ctx context.Context, path string, sc scope, method string, params map[string]any) (signedRequest, error) {
	rest := implodeParams(path, params)
	fullURL := c.baseURL + "/" + strings.TrimLeft(rest.path, "/")

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", c.userAgent)

	var body []byte

	if sc == scopePrivate {
		if c.apiKey == "" {
			return signedRequest{}, fmt.Errorf("%w: missing credentials: apiKey required for private endpoints", domain.ErrAuthentication)
		}
		if err := c.ensureAuthenticated(ctx); err != nil {
			return signedRequest{}, err
		}
		headers.Set("Authorization", "Bearer "+c.token())

		switch method {
		case http.MethodGet, http.MethodDelete:
			if len(rest.query) > 0 {
				fullURL += "?" + encodeQuery(rest.query)
			}
		case http.MethodPost, http.MethodPut:
			if len(rest.query) > 0 {
				var err error
				body, err = json.Marshal(rest.query)
				if err != nil {
					return signedRequest{}, fmt.Errorf("swyftx: marshal request body: %w", err)
				}
			}
		}
	} else {
		// Public endpoints never take a body; the payload always travels as a
		// query string regardless of verb.
		if len(rest.query) > 0 {
			fullURL += "?" + encodeQuery(rest.query)
		}
	}

	return signedRequest{URL: fullURL, Method: method, Headers: headers, Body: body}, nil
}

// request signs and issues a call in one step, returning the raw response
// body. Every response goes through the error classifier before it reaches
// the caller.
func (c *Client) request(ctx context.Context, path string, sc scope, method string, params map[string]any) ([]byte, error) {
	signed, err := c.sign(ctx, path, sc, method, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, signed)
}

// do performs the HTTP exchange for an already-signed request.
func (c *Client) do(ctx context.Context, signed signedRequest) ([]byte, error) {
	var bodyReader io.Reader
	if signed.Body != nil {
		bodyReader = bytes.NewReader(signed.Body)
	}

	req, err := http.NewRequestWithContext(ctx, signed.Method, signed.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("swyftx: create request: %w", err)
	}
	req.Header = signed.Headers.Clone()

	requestID := uuid.NewString()
	c.logger.Debug("swyftx request",
		slog.String("request_id", requestID),
		slog.String("method", signed.Method),
		slog.String("url", signed.URL),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swyftx: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swyftx: read response: %w", err)
	}

	c.logger.Debug("swyftx response",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(respBody)),
	)

	if err := classifyResponse(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		// Error status with a body the classifier could not read an error
		// field from.
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrExchange, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// publicGet is a convenience wrapper for public GET endpoints.
func (c *Client) publicGet(ctx context.Context, path string, params map[string]any) ([]byte, error) {
	return c.request(ctx, path, scopePublic, http.MethodGet, params)
}

// implodedPath is the result of substituting template placeholders.
type implodedPath struct {
	path  string
	query map[string]any
}

// implodeParams substitutes {name} placeholders in a path template from
// params. Consumed params are removed; the remainder is returned as the
// request payload. The input map is not mutated.
func implodeParams(path string, params map[string]any) implodedPath {
	leftover := make(map[string]any, len(params))
	for k, v := range params {
		leftover[k] = v
	}
	out := path
	for k, v := range params {
		placeholder := "{" + k + "}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, url.PathEscape(fmt.Sprint(v)))
			delete(leftover, k)
		}
	}
	return implodedPath{path: out, query: leftover}
}

// encodeQuery renders params as a URL query string with stable key order.
func encodeQuery(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, fmt.Sprint(params[k]))
	}
	return values.Encode()
}

// token returns the current bearer token under the read lock.
func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}
