package hibp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/breachwatch/pwncheck/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the public Pwned Passwords range endpoint.
	DefaultBaseURL = "https://api.pwnedpasswords.com"

	// DefaultTimeout bounds a single range lookup.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "pwncheck"

	// maxResponseBytes caps how much of a range response is read. Padded
	// responses run to a few hundred lines; 1 MiB is far beyond any
	// legitimate body.
	maxResponseBytes = 1 << 20

	maxHTTPErrorBodyBytes = 4096
)

// RangeCache is an optional store of raw range responses keyed by prefix.
// A Get miss (any reason) simply falls through to the network.
type RangeCache interface {
	Get(ctx context.Context, prefix string) (body string, ok bool)
	Put(ctx context.Context, prefix, body string) error
}

// Client queries the Pwned Passwords range API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	padding    bool
	cache      RangeCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need custom transport settings.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at a different range endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithUserAgent overrides the User-Agent header sent to the API.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithPadding asks the API to pad responses with zero-count entries so
// response size does not correlate with prefix popularity.
func WithPadding(padding bool) Option {
	return func(c *Client) {
		c.padding = padding
	}
}

// WithTimeout adjusts the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithCache attaches a range-response cache.
func WithCache(cache RangeCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// New creates a range API client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Range fetches all breach records whose digest starts with prefix.
func (c *Client) Range(ctx context.Context, prefix string) ([]Record, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len(prefix) != PrefixLen {
		return nil, errors.WrapInputError("query_range",
			fmt.Errorf("%w: prefix must be %d hex characters", errors.ErrInvalidInput, PrefixLen))
	}
	for _, r := range prefix {
		if !isUpperHex(r) {
			return nil, errors.WrapInputError("query_range",
				fmt.Errorf("%w: prefix contains non-hex character %q", errors.ErrInvalidInput, r))
		}
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, prefix); ok {
			log.Debug().Str("prefix", prefix).Msg("Range served from cache")
			return parseRange(body)
		}
	}

	body, err := c.fetchRange(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, prefix, body); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("Failed to cache range response")
		}
	}

	return parseRange(body)
}

// CheckPassword reports how many times password appears in known breach
// data. A zero count with a nil error means the password was not found.
func (c *Client) CheckPassword(ctx context.Context, password string) (int64, error) {
	if password == "" {
		return 0, errors.WrapInputError("check_password",
			fmt.Errorf("%w: empty password", errors.ErrInvalidInput))
	}

	digest := Digest(password)
	prefix, suffix, err := Split(digest)
	if err != nil {
		return 0, errors.WrapInputError("check_password", err)
	}

	records, err := c.Range(ctx, prefix)
	if err != nil {
		return 0, err
	}

	for _, record := range records {
		// Zero-count entries are padding, never matches.
		if record.Count > 0 && strings.EqualFold(record.Suffix, suffix) {
			return record.Count, nil
		}
	}
	return 0, nil
}

func (c *Client) fetchRange(ctx context.Context, prefix string) (string, error) {
	endpointURL := fmt.Sprintf("%s/range/%s", c.baseURL, url.PathEscape(prefix))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return "", errors.WrapNetworkError("query_range", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.padding {
		req.Header.Set("Add-Padding", "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapNetworkError("query_range", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close range response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", formatHTTPStatusError(resp, "query_range")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.WrapNetworkError("query_range", fmt.Errorf("read response: %w", err))
	}
	return string(body), nil
}

func formatHTTPStatusError(resp *http.Response, op string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxHTTPErrorBodyBytes))
	meaning := statusMeaning(resp.StatusCode)
	detail := strings.TrimSpace(string(snippet))
	if detail != "" {
		return errors.WrapAPIError(op, fmt.Errorf("%s: %s", meaning, detail), resp.StatusCode)
	}
	return errors.WrapAPIError(op, fmt.Errorf("%s", meaning), resp.StatusCode)
}

// statusMeaning translates the API's documented status codes into a
// human-readable explanation.
func statusMeaning(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "malformed request, the prefix was not accepted"
	case http.StatusForbidden:
		return "forbidden, a User-Agent header is required"
	case http.StatusTooManyRequests:
		return "rate limited, try again later"
	case http.StatusInternalServerError:
		return "breach API server error"
	default:
		return fmt.Sprintf("unexpected response from breach API (%s)", http.StatusText(statusCode))
	}
}
