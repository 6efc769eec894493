// Package http is a small fluent client for outbound JSON calls.
//
//	resp, err := http.Get(base + "/v3/businesses/search").
//	    WithContext(ctx).
//	    Bearer(key).
//	    Query("term", "tacos").
//	    Timeout(10 * time.Second).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"time"

	"github.com/crowdfork/crowdfork/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outbound request. Tests may swap its
// Transport and restore it with ResetTransport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

type Request struct {
	method    string
	url       string
	query     url.Values
	headers   map[string]string
	body      interface{}
	timeout time.Duration
	ctx     context.Context
}

func Get(u string) *Request  { return newRequest(gohttp.MethodGet, u) }
func Post(u string) *Request { return newRequest(gohttp.MethodPost, u) }

func newRequest(method, u string) *Request {
	return &Request{
		method:  method,
		url:     u,
		query:   url.Values{},
		headers: map[string]string{"Accept": "application/json"},
		timeout: 30 * time.Second,
		ctx:     context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Query adds a query-string parameter. Empty values are skipped.
func (r *Request) Query(key, value string) *Request {
	if value != "" {
		r.query.Add(key, value)
	}
	return r
}

// Body sets a JSON body; strings and byte slices are sent as-is.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

func (r *Request) Timeout(d time.Duration) *Request {
	if d > 0 {
		r.timeout = d
	}
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// URL returns the final request URL including query parameters.
func (r *Request) URL() string {
	if len(r.query) == 0 {
		return r.url
	}
	sep := "?"
	if bytes.ContainsRune([]byte(r.url), '?') {
		sep = "&"
	}
	return r.url + sep + r.query.Encode()
}

// Send performs the request once. Failures are never retried.
func (r *Request) Send() (*Response, error) {
	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		logger.WithCtx(r.ctx).Warn("http: request failed", "method", r.method, "url", r.url, "error", err)
		return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) encodeBody() (io.Reader, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string { return string(r.Raw) }

// Throw returns an error for any non-2xx response.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: status %d: %s", r.StatusCode, string(r.Raw))
	}
	return nil
}
