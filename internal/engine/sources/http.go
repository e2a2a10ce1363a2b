package sources

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/infracollect/untarxz/internal/engine"
	"github.com/samber/lo"
)

const (
	HTTPKind       = "http"
	DefaultTimeout = 30 * time.Second
)

var (
	defaultHeaders = map[string]string{
		"User-Agent": "untarxz/0.1.0",
		"Accept":     "application/x-xz, application/x-lzma, application/octet-stream",
	}
)

type HTTPConfig struct {
	URL      string
	Headers  map[string]string
	Timeout  time.Duration
	Insecure bool
}

type HTTPSource struct {
	url        *url.URL
	httpClient *http.Client
	headers    map[string]string
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.httpClient = httpClient
	}
}

func NewHTTPSource(cfg HTTPConfig, opts ...HTTPOption) (engine.Source, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url '%s': %w", cfg.URL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	source := &HTTPSource{
		url:     parsedURL,
		headers: lo.Assign(defaultHeaders, cfg.Headers),
	}

	for _, opt := range opts {
		opt(source)
	}

	if source.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		// The archive must reach the decoder byte for byte.
		transport := cleanhttp.DefaultPooledTransport()
		transport.DisableCompression = true
		if cfg.Insecure {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}

			transport.TLSClientConfig.InsecureSkipVerify = true
		}

		source.httpClient = &http.Client{
			Transport: transport,
			Timeout:   timeout,
		}
	}

	return source, nil
}

func (s *HTTPSource) Name() string {
	return fmt.Sprintf("%s(%s)", HTTPKind, s.url.Redacted())
}

func (s *HTTPSource) Kind() string {
	return HTTPKind
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d fetching %s", resp.StatusCode, s.url.Redacted())
	}

	return resp.Body, nil
}
