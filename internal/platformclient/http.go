package platformclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	maxRetries = 3
	retryDelay = 500 * time.Millisecond
)

// HTTPDoer is the seam platform clients retry over; *http.Client
// satisfies it directly, tests can supply a stub.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoWithRetry performs req with exponential backoff, the same shape as
// Mercury's theoddsapi.Client.doRequestWithRetry: retry on network
// failure and on 5xx/429, give up immediately on 4xx-except-429.
func DoWithRetry(ctx context.Context, client HTTPDoer, newReq func() (*http.Request, error), userAgent string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := newReq()
		if err != nil {
			return nil, &ParseError{Op: "build request", Err: err}
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = &NetworkError{Op: "do request", Err: err}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &NetworkError{Op: "read body", Err: readErr}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &ApiError{
				StatusCode: resp.StatusCode,
				Body:       string(body),
				Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			}
			if !apiErr.Retryable {
				return nil, apiErr
			}
			lastErr = apiErr
			continue
		}

		return body, nil
	}

	return nil, lastErr
}
