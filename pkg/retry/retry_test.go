package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestNew_WithZeroValues(t *testing.T) {
	retrier := New(&Config{})

	if retrier.config.InitialInterval != 25*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 25ms (default)", retrier.config.InitialInterval)
	}
	if retrier.config.MaxInterval != time.Second {
		t.Errorf("MaxInterval = %v, want 1s (default)", retrier.config.MaxInterval)
	}
	if retrier.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0 (default)", retrier.config.Multiplier)
	}
}

func TestRetrier_Do_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("serialization failure")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestRetrier_Do_MaxRetriesExceeded(t *testing.T) {
	cause := errors.New("deadlock detected")
	result := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return cause
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if !errors.Is(result.Err, cause) {
		t.Errorf("Err = %v, want it to wrap the last cause", result.Err)
	}
	if result.LastError != cause {
		t.Errorf("LastError = %v, want %v", result.LastError, cause)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestRetrier_Do_PermanentError(t *testing.T) {
	cause := errors.New("out of stock")
	calls := 0
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})

	if result.Err != cause {
		t.Errorf("Err = %v, want %v", result.Err, cause)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetrier_Do_ShouldRetryRejects(t *testing.T) {
	retryable := errors.New("retry me")
	final := errors.New("domain rejection")
	cfg := fastConfig(5)
	cfg.ShouldRetry = func(err error) bool { return errors.Is(err, retryable) }

	calls := 0
	result := New(cfg).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return retryable
		}
		return final
	})

	if result.Err != final {
		t.Errorf("Err = %v, want %v", result.Err, final)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(fastConfig(3)).Do(ctx, func(ctx context.Context) error {
		t.Error("operation should not run")
		return nil
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
}

func TestRetrier_DoWithCallback(t *testing.T) {
	var attempts []int
	New(fastConfig(2)).DoWithCallback(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("callback attempts = %v, want [1 2]", attempts)
	}
}

func TestCalculateInterval_Capped(t *testing.T) {
	r := New(&Config{InitialInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond, Multiplier: 2})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 50 * time.Millisecond}
	for i, w := range want {
		if got := r.calculateInterval(i); got != w {
			t.Errorf("calculateInterval(%d) = %v, want %v", i, got, w)
		}
	}
}
