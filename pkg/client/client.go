// Package client is a Go SDK for the CareConnect HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/careconnect/careconnect-api/pkg/validator"
)

// refreshLeeway is how close to expiry the access token is renewed ahead of a call.
const refreshLeeway = time.Minute

var ErrNotAuthenticated = errors.New("client: not authenticated")

// APIError is returned for every non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
	Meta    *ListMeta       `json:"meta"`
}

type options struct {
	timeout    time.Duration
	retryCount int
	retryWait  time.Duration
	httpClient *http.Client
	tokens     *TokenPair
}

// Option configures a Client. Options compose in any order.
type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry retries transport failures. HTTP error answers are never retried.
func WithRetry(count int, wait time.Duration) Option {
	return func(o *options) {
		o.retryCount = count
		o.retryWait = wait
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTokens starts the client with a previously issued token pair.
func WithTokens(tokens *TokenPair) Option {
	return func(o *options) { o.tokens = tokens }
}

// Client keeps the caller's token pair and renews the access token as needed.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *resty.Client

	mu     sync.RWMutex
	tokens *TokenPair

	// serialises refresh calls so a burst of 401s triggers one refresh
	refreshMu sync.Mutex
	now       func() time.Time
	validate  *validator.Validator
}

// New returns a client for baseURL, e.g. "https://care.example/api/v1".
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	hc := resty.New()
	if o.httpClient != nil {
		hc = resty.NewWithClient(o.httpClient)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	hc.SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")
	if o.retryCount > 0 {
		hc.SetRetryCount(o.retryCount).
			SetRetryWaitTime(o.retryWait).
			SetRetryMaxWaitTime(4 * o.retryWait)
	}

	return &Client{
		baseURL:  baseURL,
		http:     hc,
		tokens:   o.tokens,
		now:      time.Now,
		validate: validator.New(),
	}
}

// Tokens returns the current token pair, or nil after Logout.
func (c *Client) Tokens() *TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return nil
	}
	t := *c.tokens
	return &t
}

func (c *Client) setTokens(t *TokenPair) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken
}

type call struct {
	method string
	path   string
	query  map[string]string
	body   interface{}
	public bool
}

// do sends the request and decodes the data field into out.
// Request bodies are checked against their binding tags first; failures come
// back as a 422 APIError without a round trip.
func (c *Client) do(ctx context.Context, cl call, out interface{}) (*ListMeta, error) {
	if cl.body != nil {
		if err := c.validate.Validate(cl.body); err != nil {
			var verrs *validator.Errors
			if errors.As(err, &verrs) {
				return nil, &APIError{StatusCode: http.StatusUnprocessableEntity, Message: "validation failed", Details: verrs.Fields}
			}
			return nil, err
		}
	}
	if cl.public {
		env, err := c.send(ctx, cl, "")
		if err != nil {
			return nil, err
		}
		return env.Meta, decode(env, out)
	}

	// a failed early refresh falls back to the 401 path below
	if err := c.ensureFresh(ctx); err != nil && ctx.Err() != nil {
		return nil, err
	}
	token := c.accessToken()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	env, err := c.send(ctx, cl, token)
	if IsStatus(err, http.StatusUnauthorized) {
		if rerr := c.refresh(ctx, token); rerr != nil {
			return nil, err
		}
		env, err = c.send(ctx, cl, c.accessToken())
	}
	if err != nil {
		return nil, err
	}
	return env.Meta, decode(env, out)
}

func (c *Client) send(ctx context.Context, cl call, token string) (*envelope, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if cl.query != nil {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil && resp.IsSuccess() {
			return nil, fmt.Errorf("%s %s: invalid response body: %w", cl.method, cl.path, err)
		}
	}
	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: msg, Details: env.Errors}
	}
	return &env, nil
}

func decode(env *envelope, out interface{}) error {
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) ensureFresh(ctx context.Context) error {
	c.mu.RLock()
	t := c.tokens
	c.mu.RUnlock()
	if t == nil || t.RefreshToken == "" || t.ExpiresAt.IsZero() {
		return nil
	}
	if c.now().Add(refreshLeeway).Before(t.ExpiresAt) {
		return nil
	}
	return c.refresh(ctx, t.AccessToken)
}

// refresh exchanges the refresh token unless another caller already replaced stale.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.RLock()
	t := c.tokens
	c.mu.RUnlock()
	if t == nil || t.RefreshToken == "" {
		return ErrNotAuthenticated
	}
	if t.AccessToken != stale {
		return nil
	}

	env, err := c.send(ctx, call{
		method: http.MethodPost,
		path:   "/users/refresh",
		body:   map[string]string{"refresh_token": t.RefreshToken},
	}, "")
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			c.setTokens(nil)
		}
		return err
	}
	var next TokenPair
	if err := decode(env, &next); err != nil {
		return err
	}
	c.setTokens(&next)
	return nil
}
