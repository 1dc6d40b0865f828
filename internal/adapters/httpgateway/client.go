// Package httpgateway implements the AuthGateway port over the back-office REST API.
package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/jwtclaims"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
	defaultTimeout  = 30 * time.Second
)

var _ ports.AuthGateway = (*Client)(nil)

// Options groups dependencies for Client.
type Options struct {
	BaseURL    string                // Required: API origin, e.g. http://localhost:5000/api/
	Store      ports.CredentialStore // Required: source of the bearer token
	Decoder    ports.ClaimDecoder    // Optional: defaults to jwtclaims.Codec
	HTTPClient *http.Client          // Optional: defaults to a client with a cookie jar
	Timeout    time.Duration         // Optional: used only when HTTPClient is nil
	Logger     *slog.Logger          // Optional: structured logger
}

// Client talks to the identity and subscription endpoints.
type Client struct {
	base    *url.URL
	store   ports.CredentialStore
	decoder ports.ClaimDecoder
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("credential store is required")
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Jar: jar, Timeout: timeout}
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = jwtclaims.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:    base,
		store:   opts.Store,
		decoder: decoder,
		http:    hc,
		logger:  logger.With("component", "auth_gateway"),
	}, nil
}

// parseBaseURL requires an absolute http(s) URL and forces a trailing slash
// so relative endpoint paths resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("API base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API base URL must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("API base URL %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the resolved API origin.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one API call and returns the unwrapped payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if err := c.authorize(ctx, req); err != nil {
		return gjson.Result{}, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return gjson.Result{}, apperrors.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, apperrors.Network(fmt.Errorf("read response body: %w", err))
	}

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, errorFromResponse(resp.StatusCode, raw)
	}
	return unwrap(resp.StatusCode, raw)
}

// authorize attaches the stored credential, if any. A missing credential is
// not an error: anonymous calls (login, register) go out without a header.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	tok, ok, err := c.store.Get(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "read credential")
	}
	if !ok {
		return nil
	}
	(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	return nil
}
