package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// TransportOptions holds options for the rate limited, retrying transport.
type TransportOptions struct {
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     int
	RetryInterval  time.Duration
}

// transport wraps http.Client with rate limiting and retries
type transport struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	interval   time.Duration
}

func newTransport(opts TransportOptions) *transport {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 10
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = 200 * time.Millisecond
	}

	return &transport{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxRetries: opts.MaxRetries,
		interval:   opts.RetryInterval,
	}
}

// reply is a fully read HTTP response.
type reply struct {
	status int
	body   []byte
}

// StatusError represents a non-2xx answer that carried no envelope.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// do performs the request, retrying network errors and bare 5xx answers with
// exponential backoff. Answers that carry an envelope are returned as-is.
func (t *transport) do(ctx context.Context, method, url string, body []byte) (*reply, error) {
	var out *reply

	operation := func() error {
		// Wait for rate limiter
		if err := t.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}

		out = &reply{status: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 && !hasEnvelope(data) {
			return &StatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.interval
	policy.MaxElapsedTime = 30 * time.Second

	var b backoff.BackOff = backoff.WithMaxRetries(policy, uint64(t.maxRetries))
	b = backoff.WithContext(b, ctx)

	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return out, nil
}
