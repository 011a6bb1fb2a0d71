package platformclient

import "fmt"

// NetworkError wraps a transport-level failure (timeout, connection
// refused, DNS). Always retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error during %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ApiError wraps a non-2xx HTTP response or a platform-level negative
// acknowledgement (Bet9ja's non-OK/D success codes). Retryable only
// for 5xx and 429; a negative ack from the platform body is never
// retried since the platform is telling us the request itself is bad.
type ApiError struct {
	StatusCode int
	Body       string
	Retryable  bool
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%.200s", e.StatusCode, e.Body)
}

// ParseError wraps a JSON/regex decoding failure on an otherwise
// successful response. Never retryable: a malformed payload will not
// fix itself on the next attempt.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error during %s: %v", e.Op, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Retryable reports whether err should be retried by DoWithRetry.
func Retryable(err error) bool {
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *ApiError:
		return e.Retryable
	case *ParseError:
		return false
	default:
		return false
	}
}
