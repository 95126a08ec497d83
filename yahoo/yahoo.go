// Package yahoo fetches daily close prices from the Yahoo Finance chart API.
//
// It implements the stockfolio.PriceGateway port. Responses are cached on
// disk with a key that changes every day, so each ticker costs at most one
// network call per day.
package yahoo

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/halv/stockfolio"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// pricePath extracts the latest regular market price from a chart response.
const pricePath = "$.chart.result[0].meta.regularMarketPrice"

// Gateway resolves ticker prices against the Yahoo chart endpoint.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBaseURL points the gateway at an alternative endpoint.
func WithBaseURL(url string) Option {
	return func(g *Gateway) { g.baseURL = url }
}

// WithClient replaces the daily-caching HTTP client.
func WithClient(client *http.Client) Option {
	return func(g *Gateway) { g.client = client }
}

// New returns a Gateway with a daily disk cache and a request timeout.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &diskCache{base: http.DefaultTransport},
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Price returns the latest daily close for the ticker. Any failure, from
// transport to a malformed payload, reports stockfolio.ErrPriceUnavailable
// so callers never have to care which layer broke.
func (g *Gateway) Price(ctx context.Context, ticker string) (stockfolio.Money, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", g.baseURL, ticker)

	var jobj any
	if err := jwget(ctx, g.client, addr, &jobj); err != nil {
		return stockfolio.Money{}, fmt.Errorf("%w: %s: %v", stockfolio.ErrPriceUnavailable, ticker, err)
	}

	jval, err := jsonpath.Get(pricePath, jobj)
	if err != nil {
		return stockfolio.Money{}, fmt.Errorf("%w: %s: %q: %v", stockfolio.ErrPriceUnavailable, ticker, pricePath, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return stockfolio.Money{}, fmt.Errorf("%w: %s: price is %v, not a number", stockfolio.ErrPriceUnavailable, ticker, jval)
	}

	log.Debug().Str("ticker", ticker).Float64("price", val).Msg("price resolved")
	return stockfolio.USD(val), nil
}

// jwget performs an HTTP GET to the given address and unmarshals the JSON
// response body into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	// Yahoo rejects the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stockfolio)")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// diskCache implements a simple disk cache for HTTP responses. The cache key
// includes the current date, so entries expire at midnight along with the
// daily close they hold.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	day := time.Now().Format("2006-01-02")
	key := fmt.Sprintf("%s %s %s", day, req.Method, req.URL.String())
	key = fmt.Sprintf("sfo-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("method", resp.Request.Method).
		Str("host", resp.Request.URL.Host).
		Str("status", resp.Status).
		Msg("price fetch")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(os.TempDir(), key))
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}
