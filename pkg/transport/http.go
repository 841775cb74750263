package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// HTTPTransporter is a Transporter over a single base URL, reached via
// stdlib net/http. It implements resumable GET via the Range header
// (spec.md §4.H step 2) and MKCOL-then-PUT for WebDAV-like targets
// (spec.md §4.H step 5).
type HTTPTransporter struct {
	base   string
	client *http.Client
	cfg    Config
}

var _ Transporter = (*HTTPTransporter)(nil)

// NewHTTPTransporter builds an HTTPTransporter against baseURL.
func NewHTTPTransporter(baseURL string, cfg Config) *HTTPTransporter {
	return &HTTPTransporter{
		base: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: cfg.ConnectTimeout + cfg.RequestTimeout,
		},
		cfg: cfg,
	}
}

func (h *HTTPTransporter) url(path string) string {
	return h.base + "/" + strings.TrimPrefix(path, "/")
}

func (h *HTTPTransporter) applyHeaders(req *http.Request) {
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}
}

// Peek implements Transporter via HTTP HEAD.
func (h *HTTPTransporter) Peek(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.url(path), nil)
	if err != nil {
		return Error.Wrap(err)
	}
	h.applyHeaders(req)
	resp, err := h.client.Do(req)
	if err != nil {
		return Error.Wrap(err)
	}
	defer resp.Body.Close()
	return httpStatusToError(path, resp.StatusCode)
}

// Get implements Transporter via HTTP GET, attempting a ranged request
// when ResumeFrom is set and falling back to a full download on a
// non-206 response (spec.md §4.H step 2: "fall back to full download on
// 200 or a mismatched content range").
func (h *HTTPTransporter) Get(ctx context.Context, req GetRequest) (GetResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url(req.Path), nil)
	if err != nil {
		return GetResult{}, Error.Wrap(err)
	}
	h.applyHeaders(httpReq)
	if h.cfg.ResumeSupported && req.ResumeFrom > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", req.ResumeFrom))
	}
	resp, err := h.client.Do(httpReq)
	if err != nil {
		return GetResult{}, Error.Wrap(err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return GetResult{}, Error.New("not found: %s", req.Path)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return GetResult{}, httpStatusToError(req.Path, resp.StatusCode)
	}
	resumed := resp.StatusCode == http.StatusPartialContent
	length, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if req.Listener != nil {
		req.Listener.Started(length)
	}
	return GetResult{
		Body:    resp.Body,
		Headers: resp.Header,
		Resumed: resumed,
		Length:  length,
	}, nil
}

// Put implements Transporter via HTTP PUT, creating parent collections
// with MKCOL first.
func (h *HTTPTransporter) Put(ctx context.Context, req PutRequest) error {
	if err := h.mkcolChain(ctx, req.Path); err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, h.url(req.Path), req.Body)
	if err != nil {
		return Error.Wrap(err)
	}
	h.applyHeaders(httpReq)
	if req.Size > 0 {
		httpReq.ContentLength = req.Size
	}
	resp, err := h.client.Do(httpReq)
	if err != nil {
		return Error.Wrap(err)
	}
	defer resp.Body.Close()
	return httpStatusToError(req.Path, resp.StatusCode)
}

// mkcolChain issues MKCOL for each parent collection of path, in order,
// tolerating "already exists" responses.
func (h *HTTPTransporter) mkcolChain(ctx context.Context, path string) error {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) <= 1 {
		return nil
	}
	var acc string
	for _, seg := range segments[:len(segments)-1] {
		acc += seg + "/"
		req, err := http.NewRequestWithContext(ctx, "MKCOL", h.url(acc), nil)
		if err != nil {
			return Error.Wrap(err)
		}
		h.applyHeaders(req)
		resp, err := h.client.Do(req)
		if err != nil {
			return Error.Wrap(err)
		}
		resp.Body.Close()
		// Any response (including 405 Method Not Allowed / already
		// exists) short of a hard failure is acceptable here; the
		// subsequent PUT will surface a real failure.
		io.Discard.Write(nil)
	}
	return nil
}

// Close implements Transporter.
func (h *HTTPTransporter) Close() error { return nil }

// httpFactory builds HTTPTransporters for "http://"/"https://" URLs.
type httpFactory struct{ cfg Config }

// NewHTTPFactory returns a Factory for HTTP(S) repository URLs.
func NewHTTPFactory(cfg Config) Factory { return httpFactory{cfg: cfg} }

func (httpFactory) Priority() float64 { return 0 }

func (f httpFactory) New(ctx context.Context, repoURL string, cfg Config) (Transporter, error) {
	return NewHTTPTransporter(repoURL, cfg), nil
}
