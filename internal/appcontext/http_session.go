package appcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"appcheck/internal/config"
)

// RequestOptions carries the per-call knobs of an HTTP step.
type RequestOptions struct {
	// Headers are added to the request verbatim.
	Headers map[string]string
	// Body, when non-nil, is JSON-encoded into the request body.
	Body interface{}
	// Timeout overrides the app's default timeout for this call only.
	Timeout time.Duration
}

// Response is the outcome of an HTTP step, with the body fully read so
// expectations can inspect it repeatedly.
type Response struct {
	Status   int
	Headers  http.Header
	Body     []byte
	Duration time.Duration
}

// JSON decodes the response body.
func (r *Response) JSON() (interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(r.Body, &decoded); err != nil {
		return nil, fmt.Errorf("response body is not valid JSON: %w", err)
	}
	return decoded, nil
}

// BodyString returns the body as text.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// httpSession is the HTTP side of an AppContext. One session per context,
// sharing a client so connections are reused across steps.
type httpSession struct {
	client *http.Client
	cfg    *config.ResolvedConfig
}

func newHTTPSession(cfg *config.ResolvedConfig) *httpSession {
	return &httpSession{
		client: &http.Client{},
		cfg:    cfg,
	}
}

// do performs one HTTP call scoped to the resolved base URL. Relative paths
// are joined to the base URL; absolute URLs pass through for the rare step
// that follows a link off-host.
func (s *httpSession) do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	url := s.cfg.URL(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		url = path
	}

	timeout := s.cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		Status:   resp.StatusCode,
		Headers:  resp.Header,
		Body:     data,
		Duration: time.Since(start),
	}, nil
}

func (s *httpSession) close() {
	s.client.CloseIdleConnections()
}
