// Package youdao looks words up on the Youdao web dictionary.
package youdao

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

const (
	DefaultBaseURL = "https://www.youdao.com/w/"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL string
	// Timeout bounds every single request. Exceeding it is a network error.
	Timeout time.Duration
	// RetryAttempts is the total number of attempts, including the first one.
	RetryAttempts uint
	RetryDelay    time.Duration
	// RequestsPerSecond limits requests across every caller of a Client. 0 means no limit.
	RequestsPerSecond float64
	UserAgent         string
}

type Client struct {
	httpClient *resty.Client
	config     Config
	limiter    *rate.Limiter
}

var _ dictionary.Lookuper = (*Client)(nil)

func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}

	client := resty.New()
	client.SetTimeout(config.Timeout)
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: client,
		config:     config,
		limiter:    limiter,
	}
}

// Lookup fetches and extracts the Record of word.
// Failures to reach the page are returned as *dictionary.NetworkError.
func (c *Client) Lookup(ctx context.Context, word string) (dictionary.Record, error) {
	var body []byte
	var contentType string
	err := retry.Do(
		func() error {
			var err error
			body, contentType, err = c.fetch(ctx, word)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Debug("retrying lookup",
				slog.String("word", word),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		if !dictionary.IsNetworkError(err) {
			err = &dictionary.NetworkError{Word: word, Err: err}
		}
		return dictionary.Record{}, err
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("charset.NewReader > %w", err)
	}
	record, err := Extract(reader)
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("Extract > %w", err)
	}
	return record, nil
}

func (c *Client) fetch(ctx context.Context, word string) ([]byte, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", &dictionary.NetworkError{Word: word, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	res, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.config.BaseURL + url.PathEscape(word))
	if err != nil {
		return nil, "", &dictionary.NetworkError{Word: word, Err: fmt.Errorf("client.R.Get > %w", err)}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, "", &dictionary.NetworkError{Word: word, StatusCode: res.StatusCode()}
	}
	return res.Body(), res.Header().Get("Content-Type"), nil
}

// isRetryableError retries transport failures and server errors, but not 4xx responses
// or a cancelled lookup.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var networkErr *dictionary.NetworkError
	if !errors.As(err, &networkErr) {
		return false
	}
	return networkErr.StatusCode == 0 || networkErr.StatusCode >= http.StatusInternalServerError
}
