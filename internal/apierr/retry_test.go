package apierr_test

// Coverage Notes:
// - Attempt counts and the final error are checked against a scripted sequence of provider errors.
// - Delays are observed through an injected Sleep so no test waits on a real timer,
//   except the cancellation tests which exercise the default timer.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

func noSleep(context.Context, time.Duration) error { return nil }

// ---------------------------------------------------------------------------
// TestRetryWithBackoff - attempts and final error
// ---------------------------------------------------------------------------

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		maxRetries int
		errs       []error
		wantCalls  int
		wantResult string
		wantErr    error
	}{
		{
			name:       "first answer accepted",
			maxRetries: 5,
			errs:       []error{nil},
			wantCalls:  1,
			wantResult: "answer 1",
		},
		{
			name:       "rate limit then answer",
			maxRetries: 3,
			errs:       []error{apierr.ErrRateLimit, apierr.ErrTimeout, nil},
			wantCalls:  3,
			wantResult: "answer 3",
		},
		{
			name:       "auth failure is not retried",
			maxRetries: 5,
			errs:       []error{apierr.ErrAuthFailed},
			wantCalls:  1,
			wantErr:    apierr.ErrAuthFailed,
		},
		{
			name:       "transient then permanent stops at permanent",
			maxRetries: 5,
			errs:       []error{apierr.ErrRateLimit, apierr.ErrQuotaExceeded},
			wantCalls:  2,
			wantErr:    apierr.ErrQuotaExceeded,
		},
		{
			name:       "zero retries means single attempt",
			maxRetries: 0,
			errs:       []error{apierr.ErrTransport},
			wantCalls:  1,
			wantErr:    apierr.ErrTransport,
		},
		{
			name:       "negative retries normalized to zero",
			maxRetries: -5,
			errs:       []error{apierr.ErrTransport},
			wantCalls:  1,
			wantErr:    apierr.ErrTransport,
		},
		{
			name:       "exhausted retries wrap last error",
			maxRetries: 2,
			errs:       []error{apierr.ErrTransport, apierr.ErrTransport, apierr.ErrTimeout},
			wantCalls:  3,
			wantErr:    apierr.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			result, err := apierr.RetryWithBackoff(
				context.Background(),
				apierr.RetryConfig{MaxRetries: tt.maxRetries, BaseDelay: time.Second, Sleep: noSleep},
				func() (string, error) {
					e := tt.errs[calls]
					calls++
					if e != nil {
						return "", e
					}
					return "answer " + string(rune('0'+calls)), nil
				},
				apierr.IsTransient,
			)

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.wantResult {
				t.Errorf("result = %q, want %q", result, tt.wantResult)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRetryWithBackoff_Cancellation - real timer honours the context
// ---------------------------------------------------------------------------

func TestRetryWithBackoff_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("already cancelled context stops before the first wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := apierr.RetryWithBackoff(ctx,
			apierr.RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Minute},
			func() (string, error) {
				calls++
				return "", apierr.ErrRateLimit
			},
			apierr.IsTransient,
		)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("cancel during backoff stops early", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := apierr.RetryWithBackoff(ctx,
			apierr.RetryConfig{MaxRetries: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: 100 * time.Millisecond},
			func() (string, error) {
				calls++
				if calls == 1 {
					go func() {
						time.Sleep(5 * time.Millisecond)
						cancel()
					}()
				}
				return "", apierr.ErrTransport
			},
			apierr.IsTransient,
		)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if calls >= 5 {
			t.Errorf("calls = %d, want fewer than 5", calls)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRetryWithBackoff_Schedule - delays observed through injected Sleep
// ---------------------------------------------------------------------------

func TestRetryWithBackoff_Schedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     apierr.RetryConfig
		errs    []error
		want    []time.Duration
		wantErr bool
	}{
		{
			name: "exponential with cap",
			cfg:  apierr.RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 3 * time.Second},
			errs: []error{apierr.ErrTransport, apierr.ErrTransport, apierr.ErrTransport, nil},
			want: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		},
		{
			name: "zero BaseDelay normalized to 1ms",
			cfg:  apierr.RetryConfig{MaxRetries: 1},
			errs: []error{apierr.ErrTransport, nil},
			want: []time.Duration{time.Millisecond},
		},
		{
			name: "fixed backoff for malformed responses only",
			cfg: apierr.RetryConfig{
				MaxRetries: 3,
				BaseDelay:  2 * time.Second,
				MaxDelay:   time.Minute,
				Backoff: apierr.FixedBackoffFor(time.Second, func(err error) bool {
					return errors.Is(err, apierr.ErrMalformedResponse)
				}),
			},
			errs: []error{apierr.ErrMalformedResponse, apierr.ErrTransport, apierr.ErrMalformedResponse, nil},
			want: []time.Duration{time.Second, 4 * time.Second, time.Second},
		},
		{
			name:    "exhausted attempts",
			cfg:     apierr.RetryConfig{MaxRetries: 2, BaseDelay: time.Second, MaxDelay: time.Second},
			errs:    []error{apierr.ErrTimeout, apierr.ErrTimeout, apierr.ErrTimeout},
			want:    []time.Duration{time.Second, time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var slept []time.Duration
			cfg := tt.cfg
			cfg.Sleep = func(_ context.Context, d time.Duration) error {
				slept = append(slept, d)
				return nil
			}

			call := 0
			_, err := apierr.RetryWithBackoff(context.Background(), cfg,
				func() (int, error) {
					e := tt.errs[call]
					call++
					return call, e
				},
				func(error) bool { return true },
			)

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(slept) != len(tt.want) {
				t.Fatalf("slept %v, want %v", slept, tt.want)
			}
			for i := range slept {
				if slept[i] != tt.want[i] {
					t.Errorf("delay[%d] = %v, want %v", i, slept[i], tt.want[i])
				}
			}
		})
	}
}
