// Package gateway is the single place where the client performs HTTP I/O.
//
// Every failure is reported as one of NetworkError, SessionExpiredError,
// HTTPStatusError, InvalidResponseFormatError or MalformedJSONError so that
// callers need a single errors.As switch. A 401 additionally notifies the
// subscribers registered with OnAuthExpired; the gateway itself never decides
// what "go back to login" means for the caller.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTimeout bounds a single request when no client is supplied
	DefaultTimeout = 30 * time.Second
	UserAgent      = "gametu-cli"

	// RequestIDHeader carries a per-request ULID for correlating client and server logs
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Request describes one call to the backend
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// SkipAuthExpired suppresses the auth-expired notification for this call.
	// Used by the session lookup, where a 401 just means "nobody is logged in".
	SkipAuthExpired bool
}

// Option configures a Gateway
type Option func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client.
// A client without a cookie jar gets one, requests are always credentialed.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default client
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// WithCookieJar sets the jar holding the backend session cookie
func WithCookieJar(jar http.CookieJar) Option {
	return func(g *Gateway) {
		g.jar = jar
	}
}

// Gateway performs credentialed JSON requests against one backend
type Gateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	timeout    time.Duration
	logger     zerolog.Logger

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(*SessionExpiredError)
}

// New creates a gateway for the backend rooted at baseURL
func New(baseURL string, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	g := &Gateway{
		baseURL: u,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
		subs:    make(map[int]func(*SessionExpiredError)),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.jar == nil {
		if g.httpClient != nil && g.httpClient.Jar != nil {
			g.jar = g.httpClient.Jar
		} else {
			jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
			if err != nil {
				return nil, fmt.Errorf("failed to create cookie jar: %w", err)
			}
			g.jar = jar
		}
	}

	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: g.timeout}
	}
	if g.httpClient.Jar == nil {
		client := *g.httpClient
		client.Jar = g.jar
		g.httpClient = &client
	}

	return g, nil
}

// BaseURL returns the backend root this gateway talks to
func (g *Gateway) BaseURL() *url.URL {
	u := *g.baseURL
	return &u
}

// Jar returns the cookie jar carrying the backend session
func (g *Gateway) Jar() http.CookieJar {
	return g.jar
}

// OnAuthExpired registers fn to be called once for every 401 response.
// The returned function removes the subscription.
func (g *Gateway) OnAuthExpired(fn func(*SessionExpiredError)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Gateway) notifyExpired(err *SessionExpiredError) {
	g.mu.Lock()
	subs := make([]func(*SessionExpiredError), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, fn := range subs {
		fn(err)
	}
}

// Fetch performs r and decodes the JSON response into a T
func Fetch[T any](ctx context.Context, g *Gateway, r Request) (T, error) {
	var out T
	if err := g.Do(ctx, r, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do performs r and decodes the JSON response into out.
// out may be nil when the caller only cares about success.
func (g *Gateway) Do(ctx context.Context, r Request, out any) error {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u := g.baseURL.JoinPath(r.Path)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, values := range r.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := ulid.Make().String()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("url", u.String()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request failed")
		return &NetworkError{Method: method, URL: u.String(), Host: u.Host, Err: err}
	}
	defer resp.Body.Close()

	g.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")

	return g.handleResponse(r, method, u, resp, out)
}

func (g *Gateway) handleResponse(r Request, method string, u *url.URL, resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		expired := &SessionExpiredError{Method: method, URL: u.String()}
		if !r.SkipAuthExpired {
			g.notifyExpired(expired)
		}
		return expired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &HTTPStatusError{
			Method:     method,
			URL:        u.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncate(string(data)),
		}
		if resp.StatusCode == http.StatusBadRequest {
			var fields []FieldError
			if err := json.Unmarshal(data, &fields); err == nil {
				statusErr.Fields = fields
			}
		}
		g.logger.Debug().
			Int("status", resp.StatusCode).
			Str("body", statusErr.Body).
			Msg("Unsuccessful response")
		return statusErr
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody+utf8.UTFMax))
		return &InvalidResponseFormatError{
			URL:         u.String(),
			ContentType: contentType,
			Body:        truncate(string(data)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: u.String(), Host: u.Host, Err: err}
	}

	if out == nil {
		if !json.Valid(data) {
			return &MalformedJSONError{URL: u.String(), Err: fmt.Errorf("invalid JSON body")}
		}
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &MalformedJSONError{URL: u.String(), Err: err}
	}

	return nil
}
