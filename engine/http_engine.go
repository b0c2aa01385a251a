package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html/charset"

	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
)

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// HTTPEngine is the first extraction tier: one plain GET, parse the markup,
// harvest the regions. It sends no custom headers and never retries; a single
// failure is enough to move on to the browser.
type HTTPEngine struct {
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithHTTPTimeout bounds a single Extract call. Zero leaves only the caller's
// context deadline.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(e *HTTPEngine) { e.timeout = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPEngine) { e.client = c }
}

// WithChromeFingerprint makes TLS handshakes present a Chrome ClientHello.
func WithChromeFingerprint() HTTPOption {
	return func(e *HTTPEngine) {
		e.client = &http.Client{Transport: newChromeTransport()}
	}
}

// NewHTTPEngine creates an HTTPEngine. The default client follows redirects
// the way net/http always does (up to 10 hops).
func NewHTTPEngine(opts ...HTTPOption) *HTTPEngine {
	e := &HTTPEngine{client: &http.Client{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPEngine) Name() string { return "http" }

func (e *HTTPEngine) Extract(ctx context.Context, url string) (*models.ScrapedContent, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeStaticFetch, "build request", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeStaticFetch, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewScrapeError(models.ErrCodeStaticFetch,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeStaticFetch, "decode body charset", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeStaticFetch, "parse body")
	}

	content := cleaner.Harvest(doc).Build(url)
	return &content, nil
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection, so the
	// server must never be offered it.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// newChromeTransport returns a transport whose TLS handshakes use
// chromeH1Spec.
func newChromeTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
}
