// Package fetcher retrieves the paginated story archive over HTTP.
package fetcher // import "github.com/jemtv/storyfeed/internal/fetcher"

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/logging"
)

const defaultAcceptHeader = "application/json"

type RequestBuilder struct {
	ctx           context.Context
	headers       http.Header
	clientTimeout time.Duration
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		headers:       make(http.Header),
		clientTimeout: config.Opts.HTTPClientTimeout(),
	}
}

func (r *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	r.ctx = ctx
	return r
}

func (r *RequestBuilder) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

func (r *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	r.headers.Set(key, value)
	return r
}

func (r *RequestBuilder) WithUserAgent(userAgent string) *RequestBuilder {
	if userAgent != "" {
		r.headers.Set("User-Agent", userAgent)
	}
	return r
}

func (r *RequestBuilder) Timeout() time.Duration { return r.clientTimeout }

// Request performs the GET request. Transport errors are carried by the
// returned handler instead of a second return value, so callers decide
// once via Err().
func (r *RequestBuilder) Request(requestURL string) *ResponseHandler {
	resp, err := r.execute(requestURL)
	return &ResponseHandler{
		httpResponse: resp,
		clientErr:    err,
		maxBodySize:  config.Opts.HTTPClientMaxBodySize(),
	}
}

func (r *RequestBuilder) execute(requestURL string) (*http.Response, error) {
	req, err := r.req(requestURL)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(r.Context())
	log.Debug("Making outgoing request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Any("headers", req.Header))

	start := time.Now()
	resp, err := r.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: do http request: %w", err)
	}

	log.Debug("Got response",
		slog.Int("status_code", resp.StatusCode),
		slog.String("status", resp.Status),
		slog.Int64("content_length", resp.ContentLength),
		slog.String("proto", resp.Proto),
		slog.Duration("request_time", time.Since(start)))
	return resp, nil
}

func (r *RequestBuilder) req(requestURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet,
		requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: create http request: %w", err)
	}
	req.Header = r.headers.Clone()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", defaultAcceptHeader)
	}
	return req, nil
}

var (
	defaultClient *http.Client
	onceClient    sync.Once
)

func (r *RequestBuilder) client() *http.Client {
	onceClient.Do(func() {
		defaultClient = &http.Client{
			Transport: r.transport(),
			Timeout:   r.Timeout(),
		}
	})
	return defaultClient
}

func (r *RequestBuilder) transport() http.RoundTripper {
	dialer := &net.Dialer{Timeout: r.Timeout()}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   r.Timeout(),
		IdleConnTimeout:       10 * time.Second,
		ResponseHeaderTimeout: r.Timeout(),

		// Setting `DialContext` disables HTTP/2, this option forces the transport
		// to try HTTP/2 regardless.
		ForceAttemptHTTP2: true,
	}
	return gzhttp.Transport(transport)
}
