package usgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour. The delay starts at
// InitialInterval and doubles per retry up to MaxInterval.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	// ErrUnexpectedStatus wraps non-2xx responses from the feed.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrCircuitOpen is returned without contacting the feed while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrNoClient means the Client was built without an HTTP client.
	ErrNoClient = errors.New("http client not configured")

	errInvalidBackoff = errors.New("invalid backoff configuration")
)

// statusError carries the response status so the retry loop can tell
// transient failures from permanent ones.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.code, e.body)
}

func (e *statusError) Unwrap() error { return ErrUnexpectedStatus }

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// getWithResilience issues req through the circuit breaker, retrying
// transport errors, 429 and 5xx with exponential backoff. Other non-2xx
// statuses fail at once. The caller owns the returned body.
func getWithResilience(
	ctx context.Context,
	client *http.Client,
	backoff BackoffConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(context.Context) (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 || backoff.MaxInterval < backoff.InitialInterval {
		return nil, errInvalidBackoff
	}

	delay := backoff.InitialInterval
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, doErr := client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				resp.Body.Close()
				return nil, &statusError{code: resp.StatusCode, body: string(snippet)}
			}
			return resp, nil
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if attempt >= backoff.MaxRetries {
			return nil, err
		}

		if !retry.SleepWithContext(ctx, delay) {
			return nil, ctx.Err()
		}
		delay = retry.NextBackoff(delay, backoff.MaxInterval)
	}
}
