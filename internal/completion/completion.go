// Package completion turns a prompt into a decoded JSON object, or a recorded
// rejection, through a single text-completion provider.
//
// Adapters (OpenAI, DeepSeek, Anthropic, Gemini) make exactly one raw call and
// classify provider errors into apierr sentinels. Retrying, JSON decoding and
// rejection handling live in Port so every provider behaves the same.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// Completer makes one raw model call and returns the text it produced.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Completer interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Default request parameters shared by every adapter.
const (
	defaultMaxOutputTokens = 2000

	// Response size limit to prevent OOM from malformed responses (10MB)
	maxResponseSize = 10 * 1024 * 1024
)

// classifyStatus maps an HTTP status returned by a provider to a sentinel.
func classifyStatus(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case status == http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case status >= 500:
		return fmt.Errorf("%s (status %d): %w", msg, status, apierr.ErrTransport)
	case status >= 400:
		return fmt.Errorf("%s (status %d): %w", msg, status, apierr.ErrBadRequest)
	default:
		return fmt.Errorf("unexpected status %d: %w", status, apierr.ErrTransport)
	}
}

// classifyTransport maps an error that carries no HTTP status.
// Cancellation is returned as-is so callers can stop promptly.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, apierr.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, apierr.ErrTransport)
}
