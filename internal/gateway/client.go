package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"
)

const maxErrorBody = 1 << 20

// Observer receives one callback per backend round trip.
type Observer interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
}

// Request describes a single backend call.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	JSON     any
	Form     url.Values
	// Auth attaches the bearer token carried by the context, if any.
	Auth bool
}

// Client is the shared HTTP wrapper used for every backend call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient constructs a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req and decodes a successful JSON response into out.
// On failure out is left untouched and the returned error is a *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	started := time.Now()
	status, err := c.do(ctx, req, out)
	if c.observer != nil {
		c.observer.ObserveRequest(methodOrGet(req.Method), routeLabel(req.Endpoint), status, time.Since(started))
	}
	return err
}

func (c *Client) do(ctx context.Context, req Request, out any) (int, error) {
	if out != nil {
		rv := reflect.ValueOf(out)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return 0, fmt.Errorf("gateway: out must be a non-nil pointer, got %T", out)
		}
	}

	target := c.baseURL + req.Endpoint
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType = "application/json"
	)
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.JSON != nil:
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return 0, fmt.Errorf("gateway: encode %s: %w", req.Endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, methodOrGet(req.Method), target, body)
	if err != nil {
		return 0, fmt.Errorf("gateway: build %s: %w", req.Endpoint, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if req.Auth {
		if token := TokenFromContext(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &Error{Message: ConnectMessage, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	// Decode into a fresh value so a bad payload never leaves out half filled.
	fresh := reflect.New(reflect.TypeOf(out).Elem())
	if err := json.NewDecoder(resp.Body).Decode(fresh.Interface()); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: "Invalid response from server", Err: err}
	}
	reflect.ValueOf(out).Elem().Set(fresh.Elem())
	return resp.StatusCode, nil
}

func methodOrGet(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return method
}

// routeLabel collapses identifiers so metric labels stay bounded.
func routeLabel(endpoint string) string {
	segments := strings.Split(endpoint, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if isNumeric(seg) || (i > 0 && segments[i-1] == "number") {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
