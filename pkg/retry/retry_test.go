package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/selivandex/newspulse/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitDefault()
	m.Run()
}

func fastPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialDelay:   time.Millisecond,
		Multiplier:     2.0,
		MaxDelay:       10 * time.Millisecond,
		ImmediateFirst: true,
	}
}

func TestDo_ExhaustsAllAttempts(t *testing.T) {
	boom := errors.New("upstream unavailable")
	attempts := 0

	_, err := Do(context.Background(), fastPolicy(), "test", func(ctx context.Context) (int, error) {
		attempts++
		return 0, boom
	})

	// 1 initial + 1 immediate + 3 backoff
	if attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected original error to be wrapped, got %v", err)
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	boom := errors.New("bad request")
	attempts := 0

	p := fastPolicy()
	p.Retryable = func(err error) bool { return false }

	_, err := Do(context.Background(), p, "test", func(ctx context.Context) (int, error) {
		attempts++
		return 0, boom
	})

	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected original error, got %v", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("non-retryable failure should not report exhaustion")
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	attempts := 0

	got, err := Do(context.Background(), fastPolicy(), "test", func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_ImmediateRetryHasZeroDelay(t *testing.T) {
	boom := errors.New("transient")
	attempts := 0

	p := fastPolicy()
	p.InitialDelay = time.Second // would be visible if the immediate retry slept

	start := time.Now()
	got, err := Do(context.Background(), p, "test", func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, boom
		}
		return 42, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("immediate retry should not sleep, took %v", elapsed)
	}
}

func TestDo_BackoffExponentSkipsImmediateRetry(t *testing.T) {
	// With ImmediateFirst the delays must be 0, d, 2d, 4d: the immediate
	// retry must not consume the first exponent slot.
	p := Policy{
		MaxRetries:     2,
		InitialDelay:   20 * time.Millisecond,
		Multiplier:     2.0,
		MaxDelay:       time.Second,
		ImmediateFirst: true,
	}

	var gaps []time.Duration
	last := time.Now()

	_, _ = Do(context.Background(), p, "test", func(ctx context.Context) (int, error) {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return 0, errors.New("always fails")
	})

	// gaps[1] is the immediate retry, gaps[2] the first backoff (20ms),
	// gaps[3] the second backoff (40ms).
	if len(gaps) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(gaps))
	}
	if gaps[1] > 10*time.Millisecond {
		t.Errorf("immediate retry gap too large: %v", gaps[1])
	}
	if gaps[2] < 15*time.Millisecond {
		t.Errorf("first backoff shorter than InitialDelay: %v", gaps[2])
	}
	if gaps[3] < 30*time.Millisecond {
		t.Errorf("second backoff did not double: %v", gaps[3])
	}
}

func TestDo_MaxDelayCapsBackoff(t *testing.T) {
	p := Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		Multiplier:   1000,
		MaxDelay:     5 * time.Millisecond,
	}

	if d := backoffDelay(p, 2); d != 5*time.Millisecond {
		t.Errorf("expected delay capped at 5ms, got %v", d)
	}
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxRetries:   2,
		InitialDelay: time.Minute,
		Multiplier:   2.0,
	}

	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, "test", func(ctx context.Context) (int, error) {
			attempts++
			return 0, errors.New("fail")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}

	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}
