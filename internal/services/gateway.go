package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pubdex/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
)

// TokenSource supplies the current bearer token. The gateway reads through
// on every call and never caches a value, so a sign-out takes effect on the
// next request.
type TokenSource interface {
	Token() string
}

// FilePart is one file attached to a multipart request.
type FilePart struct {
	Field string
	Name  string
	Data  []byte
}

// MultipartBody describes a multipart/form-data request body.
type MultipartBody struct {
	Fields map[string]string
	Files  []FilePart
}

// RequestOpts carries the optional pieces of a gateway request. At most one
// of JSON, Form, Multipart may be set.
type RequestOpts struct {
	Query     url.Values
	JSON      any
	Form      url.Values
	Multipart *MultipartBody
}

// Response is a classified 2xx response.
type Response struct {
	Status int
	Body   []byte
}

// Gateway performs HTTP requests against the publication repository API,
// attaching the bearer token when one is present and classifying non-2xx
// responses into [shared.APIError] values. Calls are at-most-once: the
// gateway never retries.
type Gateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	timeout time.Duration
	logger  *log.Logger
}

// NewGateway creates a gateway for the given base URL. client defaults to
// [http.DefaultClient], tokens may be nil for an unauthenticated gateway.
func NewGateway(baseURL string, client *http.Client, tokens TokenSource, logger *log.Logger) *Gateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		timeout: defaultTimeout,
		logger:  logger,
	}
}

// SetTimeout overrides the per-request wait ceiling.
func (g *Gateway) SetTimeout(d time.Duration) {
	if d > 0 {
		g.timeout = d
	}
}

// SetRateLimit overrides the politeness limiter. Fractional rates are
// allowed; the burst never drops below one so a single request can always
// proceed.
func (g *Gateway) SetRateLimit(rps float64) {
	if rps > 0 {
		burst := int(math.Ceil(rps))
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// SetLogger replaces the gateway's logger.
func (g *Gateway) SetLogger(l *log.Logger) {
	if l != nil {
		g.logger = l
	}
}

// BaseURL returns the configured API root.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Request performs one HTTP call and returns the 2xx response, a typed
// [shared.APIError] for expected failures, or a wrapped [shared.ErrNetwork]
// when no response was received at all.
func (g *Gateway) Request(ctx context.Context, method, path string, opts RequestOpts) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &shared.APIError{Kind: shared.KindNetworkError, Detail: err.Error()}
	}

	req, err := g.build(ctx, method, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	reqID := shared.RequestID()
	g.logger.Debug("api request", "id", reqID, "method", method, "path", path)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("api transport failure", "id", reqID, "err", err)
		return nil, &shared.APIError{Kind: shared.KindNetworkError, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.APIError{Kind: shared.KindNetworkError, Detail: err.Error()}
	}

	g.logger.Debug("api response", "id", reqID, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{Status: resp.StatusCode, Body: body}, nil
	}

	return nil, classify(resp.StatusCode, body)
}

// JSON performs a request and decodes the 2xx body into out.
// A malformed success body is an unexpected condition and escalates as a
// plain error rather than an APIError.
func (g *Gateway) JSON(ctx context.Context, method, path string, opts RequestOpts, out any) error {
	resp, err := g.Request(ctx, method, path, opts)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (g *Gateway) build(ctx context.Context, method, path string, opts RequestOpts) (*http.Request, error) {
	fullURL := g.baseURL + path
	if len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	var body io.Reader
	contentType := ""

	switch {
	case opts.JSON != nil:
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"

	case opts.Form != nil:
		body = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded"

	case opts.Multipart != nil:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		for field, value := range opts.Multipart.Fields {
			if err := mw.WriteField(field, value); err != nil {
				return nil, fmt.Errorf("failed to write form field: %w", err)
			}
		}
		for _, file := range opts.Multipart.Files {
			part, err := mw.CreateFormFile(file.Field, file.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to create form file: %w", err)
			}
			if _, err := part.Write(file.Data); err != nil {
				return nil, fmt.Errorf("failed to write form file: %w", err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize form body: %w", err)
		}
		body = buf
		contentType = mw.FormDataContentType()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if g.tokens != nil {
		if token := g.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// classify maps a non-2xx status to the error taxonomy.
func classify(status int, body []byte) *shared.APIError {
	kind := shared.KindServerError
	switch status {
	case http.StatusUnauthorized:
		kind = shared.KindUnauthorized
	case http.StatusForbidden:
		kind = shared.KindForbidden
	case http.StatusNotFound:
		kind = shared.KindNotFound
	case http.StatusUnprocessableEntity:
		kind = shared.KindValidationFailed
	}

	return &shared.APIError{Kind: kind, Status: status, Detail: extractDetail(body)}
}

// extractDetail pulls the FastAPI-style "detail" field out of an error body,
// falling back to the trimmed raw body.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		return string(envelope.Detail)
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}
