package openfoodfacts

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/logger"
)

const (
	// ListingPath is the index resource relative to the base URL.
	ListingPath = "index.txt"

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "foodsync"

	// maxPayloadBytes bounds a single downloaded file.
	maxPayloadBytes = 512 << 20
)

// Ensure Client implements the interface.
var _ driven.CatalogSource = (*Client)(nil)

// Config configures a Client.
type Config struct {
	// BaseURL is the directory holding the listing and the data files.
	BaseURL string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RateLimit throttles requests to the host.
	RateLimit RateLimitConfig

	// Attempts is the total number of tries per request.
	Attempts int

	// BackoffBase and BackoffUnit give the wait before retry n as
	// BackoffUnit * BackoffBase^(n-1).
	BackoffBase int
	BackoffUnit time.Duration

	// UserAgent is sent on every request.
	UserAgent string
}

// ConfigFromSettings builds a client configuration from application settings.
func ConfigFromSettings(s domain.RemoteSettings, version string) Config {
	ua := DefaultUserAgent
	if version != "" {
		ua += "/" + version
	}
	return Config{
		BaseURL:     s.BaseURL,
		Timeout:     s.Timeout,
		RateLimit:   RateLimitConfig{RequestsPerSecond: s.RequestsPerSecond, BurstSize: DefaultRateLimit.BurstSize},
		Attempts:    s.RetryAttempts,
		BackoffBase: s.BackoffBase,
		BackoffUnit: s.BackoffUnit,
		UserAgent:   ua,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
// The client's Timeout is left as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleep replaces the wait between retry attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// Client reads the bulk export over HTTP.
type Client struct {
	base        *url.URL
	http        *http.Client
	rateLimiter *RateLimiter
	attempts    int
	backoffBase int
	backoffUnit time.Duration
	userAgent   string
	sleep       SleepFunc
}

// NewClient creates a new client. Zero values in cfg fall back to the
// defaults in the domain package.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = domain.DefaultRemoteBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: remote base URL must be an absolute http(s) URL: %q", domain.ErrInvalidInput, raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRemoteTimeout
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = domain.DefaultRetryAttempts
	}
	backoffBase := cfg.BackoffBase
	if backoffBase < 1 {
		backoffBase = domain.DefaultBackoffBase
	}
	unit := cfg.BackoffUnit
	if unit <= 0 {
		unit = domain.DefaultBackoffUnit
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	c := &Client{
		base:        base,
		http:        &http.Client{Timeout: timeout},
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		attempts:    attempts,
		backoffBase: backoffBase,
		backoffUnit: unit,
		userAgent:   ua,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the directory the client reads from.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListFiles returns the names in the remote listing.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	u := c.base.JoinPath(ListingPath).String()
	p, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseListing(p.body), nil
}

// FetchRecords returns the first limit records of the named file.
// A limit below one falls back to domain.DefaultLimitPerFile.
func (c *Client) FetchRecords(ctx context.Context, name string, limit int) ([]domain.FeedRecord, error) {
	u, err := c.fileURL(name)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = domain.DefaultLimitPerFile
	}

	p, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	data := p.body
	if p.gzipped || (strings.HasSuffix(strings.ToLower(name), ".gz") && !p.decompressed) {
		data, err = gunzip(data)
		if err != nil {
			return nil, &DecodeError{URL: u, Err: err}
		}
	}

	records, err := decodeRecords(data, limit)
	if err != nil {
		return nil, &DecodeError{URL: u, Err: err}
	}
	logger.Debug("Fetched %d records from %s", len(records), name)
	return records, nil
}

// Ping makes a single request to the listing resource.
func (c *Client) Ping(ctx context.Context) error {
	u := c.base.JoinPath(ListingPath).String()
	if _, err := c.do(ctx, u); err != nil {
		return &TransportError{URL: u, Attempts: 1, Err: err}
	}
	return nil
}

// fileURL resolves a listed name below the base directory.
func (c *Client) fileURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "..") || strings.Contains(name, "://") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return c.base.JoinPath(name).String(), nil
}

// payload is a fully read response body.
type payload struct {
	body []byte

	// gzipped is set when the body still carries gzip content encoding;
	// decompressed when the transport already removed it.
	gzipped      bool
	decompressed bool
}

// get performs a request with retry. The wait before retry n is
// backoffUnit * backoffBase^(n-1).
func (c *Client) get(ctx context.Context, u string) (*payload, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		p, err := c.do(ctx, u)
		if err == nil {
			return p, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, &TransportError{URL: u, Attempts: attempt, Err: err}
		}
		if attempt == c.attempts {
			break
		}

		wait := c.backoff(attempt)
		logger.Debug("GET %s failed (attempt %d/%d): %v; retrying in %s", u, attempt, c.attempts, err, wait)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, &TransportError{URL: u, Attempts: attempt, Err: errors.Join(lastErr, err)}
		}
	}
	return nil, &TransportError{URL: u, Attempts: c.attempts, Err: lastErr}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffUnit
	for i := 1; i < attempt; i++ {
		d *= time.Duration(c.backoffBase)
	}
	return d
}

// do performs a single request and reads the whole body.
func (c *Client) do(ctx context.Context, u string) (*payload, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests {
			c.rateLimiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("read body: payload exceeds %d bytes", maxPayloadBytes)
	}

	// The transport strips Content-Encoding when it decompresses on its own,
	// so a remaining gzip header means the body is still compressed.
	gzipped := strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip")
	return &payload{body: body, gzipped: gzipped, decompressed: resp.Uncompressed}, nil
}

// DecodeFile decodes a locally stored export file in the same format the
// remote files use. Names ending in .gz, or data starting with the gzip
// magic bytes, are decompressed first.
func DecodeFile(name string, data []byte) ([]domain.FeedRecord, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") || bytes.HasPrefix(data, gzipMagic) {
		var err error
		if data, err = gunzip(data); err != nil {
			return nil, &DecodeError{URL: name, Err: err}
		}
	}
	records, err := decodeRecords(data, math.MaxInt)
	if err != nil {
		return nil, &DecodeError{URL: name, Err: err}
	}
	return records, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// parseListing splits the index on newlines, trimming and dropping blanks.
func parseListing(body []byte) []string {
	names := []string{}
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// decodeRecords decodes up to limit items of a JSON array. Items that are
// not objects become empty records. Once limit items have been read the rest
// of the payload is not examined.
func decodeRecords(data []byte, limit int) ([]domain.FeedRecord, error) {
	records := []domain.FeedRecord{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	for dec.More() {
		if len(records) >= limit {
			return records, nil
		}
		var item any
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		obj, ok := item.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		records = append(records, domain.FeedRecord(obj))
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return records, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if len(out) > maxPayloadBytes {
		return nil, fmt.Errorf("gzip: payload exceeds %d bytes", maxPayloadBytes)
	}
	return out, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
