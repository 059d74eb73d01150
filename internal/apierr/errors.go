// Package apierr provides shared error sentinels and retry infrastructure
// for the text-completion providers. All provider-specific error types are
// classified into these sentinels at the adapter boundary.
//
// Providers map HTTP status codes to these errors using fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrTransport indicates the provider could not be reached or answered with a
	// server error (retryable).
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates the provider answered, but the body could not be
	// decoded as the JSON document the caller asked for (retryable with a short fixed delay).
	ErrMalformedResponse = errors.New("malformed response")
)

// IsTransient reports whether err is worth another attempt with exponential backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrTransport)
}
