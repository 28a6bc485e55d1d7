// Package client is the HTTP client for the collection service. It serves
// both the selection layer (as its Repository and PreferenceStore) and the
// admin commands of collectionctl.
package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/notify"
)

type Client struct {
	rc          *resty.Client
	warner      notify.Warner
	maxAttempts int
	baseBackoff time.Duration
}

// New constructs a Client for baseURL authenticated with apiKey.
// Additional options can be provided via functional arguments.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if apiKey == "" {
		panic("apiKey cannot be empty")
	}

	c := &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		warner:      notify.LogWarner{},
		maxAttempts: 3,
		baseBackoff: 200 * time.Millisecond,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	return c
}

// call performs one logical request, retrying transient failures.
// A non-empty userID is sent as the caller identity. out may be nil.
func (c *Client) call(ctx context.Context, op, method, path, userID string, body, out interface{}) error {
	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 {
			retriesTotal.WithLabelValues(op).Inc()
		}
		req := c.rc.R().SetContext(ctx)
		if userID != "" {
			req.SetHeader(auth.UserHeader, userID)
		}
		if body != nil {
			req.SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return newNetworkError(op, err)
		}
		if resp.IsError() {
			herr := newHTTPError(op, resp.StatusCode(), resp.Body())
			if !herr.Retryable() {
				return backoff.Permanent(herr)
			}
			return herr
		}
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.baseBackoff
	var b backoff.BackOff = eb
	if c.maxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(c.maxAttempts-1))
	}
	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	requestsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		log.Debug().Err(err).Str("op", op).Int("attempts", attempt).Msg("Collection service request failed")
	}
	return err
}

func outcome(err error) string {
	var herr *HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &herr):
		return http.StatusText(herr.StatusCode)
	default:
		return "error"
	}
}

func escape(s string) string { return url.PathEscape(s) }
