package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-panelsplit/internal/apierr"
	"github.com/alnah/go-panelsplit/internal/logger"
)

// Rejection reasons produced by the port itself.
const (
	ReasonNonJSON = "non-JSON output"
	ReasonTimeout = "timeout"
)

// Default retry configuration.
const (
	defaultMaxRetries    = 3
	defaultBaseDelay     = 1 * time.Second
	defaultMaxDelay      = 30 * time.Second
	defaultDecodeBackoff = 1 * time.Second
)

// Response is the outcome of a port call: either a decoded JSON object or a rejection.
type Response struct {
	Value    map[string]any
	Rejected bool
	Reason   string
}

// Port wraps a Completer with retries, JSON decoding and rejection handling.
type Port struct {
	completer     Completer
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
	decodeBackoff time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
	log           *logger.Logger
}

// PortOption configures a Port.
type PortOption func(*Port)

// WithRetry sets the attempt bound and the exponential backoff delays.
func WithRetry(maxRetries int, base, max time.Duration) PortOption {
	return func(p *Port) {
		if maxRetries >= 0 {
			p.maxRetries = maxRetries
		}
		if base > 0 {
			p.baseDelay = base
		}
		if max > 0 {
			p.maxDelay = max
		}
	}
}

// WithDecodeBackoff sets the fixed delay after a response that is not valid JSON.
func WithDecodeBackoff(d time.Duration) PortOption {
	return func(p *Port) {
		if d >= 0 {
			p.decodeBackoff = d
		}
	}
}

// WithSleep replaces the timer used between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) PortOption {
	return func(p *Port) {
		p.sleep = sleep
	}
}

// WithLogger sets the logger for retry and rejection events.
func WithLogger(l *logger.Logger) PortOption {
	return func(p *Port) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPort creates a Port over c.
func NewPort(c Completer, opts ...PortOption) *Port {
	p := &Port{
		completer:     c,
		maxRetries:    defaultMaxRetries,
		baseDelay:     defaultBaseDelay,
		maxDelay:      defaultMaxDelay,
		decodeBackoff: defaultDecodeBackoff,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Call sends prompt and decodes the answer.
//
// Exhausted decode failures and timeouts come back as rejections, as does an
// explicit {"rejected": true} answer. Any other provider failure, or a
// cancelled context, is returned as an error.
func (p *Port) Call(ctx context.Context, prompt string) (Response, error) {
	cfg := apierr.RetryConfig{
		MaxRetries: p.maxRetries,
		BaseDelay:  p.baseDelay,
		MaxDelay:   p.maxDelay,
		Backoff:    apierr.FixedBackoffFor(p.decodeBackoff, isMalformed),
		Sleep:      p.sleep,
	}

	attempt := 0
	value, err := apierr.RetryWithBackoff(ctx, cfg, func() (map[string]any, error) {
		attempt++
		raw, err := p.completer.Complete(ctx, prompt)
		if err != nil {
			p.log.Warn("completion attempt failed", "attempt", attempt, "error", err)
			return nil, err
		}
		v, err := DecodeJSON(raw)
		if err != nil {
			p.log.Warn("completion returned non-JSON output", "attempt", attempt, "error", err)
			return nil, err
		}
		return v, nil
	}, shouldRetry)

	switch {
	case err == nil:
		if reason, ok := rejectionOf(value); ok {
			p.log.Info("completion rejected by model", "reason", reason)
			return Response{Rejected: true, Reason: reason}, nil
		}
		return Response{Value: value}, nil
	case ctx.Err() != nil:
		return Response{}, ctx.Err()
	case isMalformed(err):
		return Response{Rejected: true, Reason: ReasonNonJSON}, nil
	case errors.Is(err, apierr.ErrTimeout):
		return Response{Rejected: true, Reason: ReasonTimeout}, nil
	default:
		return Response{}, fmt.Errorf("completion failed: %w", err)
	}
}

func isMalformed(err error) bool {
	return errors.Is(err, apierr.ErrMalformedResponse)
}

func shouldRetry(err error) bool {
	return apierr.IsTransient(err) || isMalformed(err)
}

// rejectionOf reports whether v is an explicit refusal.
func rejectionOf(v map[string]any) (string, bool) {
	rejected, _ := v["rejected"].(bool)
	if !rejected {
		return "", false
	}
	reason, _ := v["reason"].(string)
	if strings.TrimSpace(reason) == "" {
		reason = "rejected"
	}
	return reason, true
}

// DecodeJSON decodes raw model output as a single JSON object. Markdown code
// fences are stripped first. Numbers decode as json.Number.
func DecodeJSON(raw string) (map[string]any, error) {
	text := stripCodeFences(raw)
	if text == "" {
		return nil, fmt.Errorf("empty output: %w", apierr.ErrMalformedResponse)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode output: %v: %w", err, apierr.ErrMalformedResponse)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value: %w", apierr.ErrMalformedResponse)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("output is not a JSON object: %w", apierr.ErrMalformedResponse)
	}
	return obj, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
