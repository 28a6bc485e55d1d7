package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vitrine-app/vitrine/internal/notify"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout bounds a single HTTP attempt. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.rc.SetTimeout(d)
		return nil
	}
}

// WithRetry sets how many attempts a request gets and the first backoff
// interval. maxAttempts must be at least 1.
func WithRetry(maxAttempts int, base time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts < 1 {
			return fmt.Errorf("max attempts must be >= 1")
		}
		if base <= 0 {
			return fmt.Errorf("base backoff must be > 0")
		}
		c.maxAttempts = maxAttempts
		c.baseBackoff = base
		return nil
	}
}

// WithWarner routes user-visible warnings, such as a failed collection fetch,
// to w instead of the log.
func WithWarner(w notify.Warner) Option {
	return func(c *Client) error {
		if w == nil {
			return fmt.Errorf("warner cannot be nil")
		}
		c.warner = w
		return nil
	}
}

// WithDebugLogging logs every request and response when enabled is true.
// Do not enable this in production; dumps include headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.rc.SetTransport(&debugTransport{base: http.DefaultTransport})
		}
		return nil
	}
}
