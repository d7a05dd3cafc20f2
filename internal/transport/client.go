// Package transport provides the resilient HTTP client every remote call
// goes through. Transient failures (connection errors, DNS, 5xx answers,
// bodies that fail to decode) are retried with exponential backoff; a
// definitive 404/410 propagates immediately.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
)

const (
	// DefaultTries is the attempt budget per request.
	DefaultTries = 5

	// DefaultDelay is the initial backoff before the first retry. Each
	// retry doubles it.
	DefaultDelay = 3 * time.Second

	// DefaultHTTPTimeout bounds a single round-trip.
	DefaultHTTPTimeout = 30 * time.Second
)

// Client issues GET requests against JSON endpoints with retry/backoff.
type Client struct {
	http   *http.Client
	tries  int
	delay  time.Duration
	logger *zerolog.Logger
	notify func(err error, delay time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithTries sets the attempt budget.
func WithTries(tries int) Option {
	return func(c *Client) {
		if tries > 0 {
			c.tries = tries
		}
	}
}

// WithDelay sets the initial backoff delay.
func WithDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.delay = delay
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger replaces the retry notice logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNotify replaces the per-retry callback. Tests use this to observe the
// backoff sequence.
func WithNotify(notify func(err error, delay time.Duration)) Option {
	return func(c *Client) {
		c.notify = notify
	}
}

// New creates a Client with the default retry policy.
func New(opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: DefaultHTTPTimeout},
		tries: DefaultTries,
		delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	if c.notify == nil {
		c.notify = func(err error, delay time.Duration) {
			c.logger.Warn().
				Err(err).
				Str("backoff", delay.String()).
				Msgf("%v, retrying in %s", err, delay)
		}
	}
	return c
}

// BuildURL appends URL-encoded query parameters to a base URL. Parameters
// with empty values are excluded rather than serialized empty.
func BuildURL(base string, params url.Values) string {
	query := url.Values{}
	for key, values := range params {
		for _, value := range values {
			if value != "" {
				query.Add(key, value)
			}
		}
	}
	qs := query.Encode()
	if qs == "" {
		return base
	}
	return base + "?" + qs
}

// GetJSON fetches a URL and decodes the JSON body into target. The call
// blocks through retries; a cancelled context stops the backoff.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, target any) error {
	u := BuildURL(rawURL, params)

	operation := func() ([]byte, error) {
		return c.fetch(ctx, u)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.delay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = c.delay << uint(c.tries)
	bo.MaxElapsedTime = 0

	body, err := backoff.RetryNotifyWithData(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.tries-1)), ctx),
		c.notify,
	)
	if err != nil {
		var notFound *errors.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		return &errors.ExhaustedRetriesError{URL: u, Attempts: c.tries, Err: err}
	}

	if err := json.Unmarshal(body, target); err != nil {
		// The body already passed a decode during fetch; a failure here
		// means the target shape does not fit, which retrying cannot fix.
		return errors.WrapParse("json", u, err)
	}
	return nil
}

// fetch performs one attempt: request, status check, body read, and a JSON
// validity check so malformed bodies count as transient failures.
func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection refused, DNS failure, socket errors: all transient.
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return nil, backoff.Permanent(&errors.NotFoundError{URL: u, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{URL: u, StatusCode: resp.StatusCode, Message: string(body)}
	}

	if !json.Valid(body) {
		return nil, errors.WrapParse("json", u, errors.New("body is not valid JSON"))
	}
	return body, nil
}
