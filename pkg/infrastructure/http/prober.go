package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/usernamecheck/username-checker/pkg/domain/service"
)

// DefaultEndpoint is the registry page of one username
const DefaultEndpoint = "https://fragment.com/username/{id}"

// Placeholder is replaced by the escaped identifier in the endpoint template
const Placeholder = "{id}"

// Prober implements service.Prober
type Prober struct {
	client          *http.Client
	endpoint        string
	timeout         time.Duration
	maxResponseSize int64
	userAgent       *UserAgent
}

var _ service.Prober = (*Prober)(nil)

// Config holds HTTP prober configuration
type Config struct {
	Endpoint        string
	Timeout         time.Duration
	MaxResponseSize int64
	// UserAgent pins one agent; empty rotates through browser agents
	UserAgent    string
	MaxIdleConns int
}

// NewProber creates a new HTTP prober
func NewProber(config Config) *Prober {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = 10 * 1024 * 1024
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 100
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = config.MaxIdleConns
	transport.MaxIdleConnsPerHost = config.MaxIdleConns

	return &Prober{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		endpoint:        config.Endpoint,
		timeout:         config.Timeout,
		maxResponseSize: config.MaxResponseSize,
		userAgent:       NewUserAgent(config.UserAgent, time.Now().UnixNano()),
	}
}

// URL builds the request URL for an identifier
func (p *Prober) URL(id string) string {
	escaped := url.PathEscape(id)
	if strings.Contains(p.endpoint, Placeholder) {
		return strings.ReplaceAll(p.endpoint, Placeholder, escaped)
	}
	return strings.TrimSuffix(p.endpoint, "/") + "/" + escaped
}

// Probe implements service.Prober. The call is bounded by the configured
// timeout regardless of ctx.
func (p *Prober) Probe(ctx context.Context, id string) (*service.RawResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(id), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", p.userAgent.Random())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Limit response size
	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &service.RawResponse{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// Diagnose reduces a probe error to a short reason for the result record
func Diagnose(err error) string {
	if err == nil {
		return ""
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}
	msg := []rune(strings.ToValidUTF8(err.Error(), "?"))
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return "error: " + string(msg)
}
