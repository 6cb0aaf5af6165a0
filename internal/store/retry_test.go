package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// scriptedKV fails the first n calls with err, then delegates to a MemoryKV.
type scriptedKV struct {
	mu    sync.Mutex
	fails int
	err   error
	calls int
	mem   *MemoryKV
}

func newScriptedKV(fails int, err error) *scriptedKV {
	return &scriptedKV{fails: fails, err: err, mem: NewMemoryKV()}
}

func (s *scriptedKV) next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.fails {
		return s.err
	}
	return nil
}

func (s *scriptedKV) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.next(); err != nil {
		return nil, false, err
	}
	return s.mem.Get(ctx, key)
}

func (s *scriptedKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next(); err != nil {
		return err
	}
	return s.mem.Set(ctx, key, value)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	inner := newScriptedKV(0, nil)
	kv := WithRetry(inner, retryConfig())

	if err := kv.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", inner.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	inner := newScriptedKV(1, errors.New("connection reset"))
	ctx := context.Background()
	if err := inner.mem.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	kv := WithRetry(inner, retryConfig())

	v, ok, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v; want \"v\", true", v, ok)
	}
	if inner.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := errors.New("down")
	inner := newScriptedKV(10, down)
	kv := WithRetry(inner, retryConfig())

	err := kv.Set(context.Background(), "k", []byte("v"))
	if !errors.Is(err, down) {
		t.Fatalf("expected %v, got %v", down, err)
	}
	if inner.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", inner.CallCount())
	}
}

func TestRetry_ContextErrorNotRetried(t *testing.T) {
	inner := newScriptedKV(10, context.DeadlineExceeded)
	kv := WithRetry(inner, retryConfig())

	_, _, err := kv.Get(context.Background(), "k")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if inner.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", inner.CallCount())
	}
}

func TestRetry_CanceledDuringBackoff(t *testing.T) {
	inner := newScriptedKV(10, errors.New("down"))
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	kv := WithRetry(inner, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := kv.Set(ctx, "k", []byte("v"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
	if inner.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", inner.CallCount())
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	kv := WithRetry(NewMemoryKV(), retryConfig())
	for attempt := 0; attempt < 10; attempt++ {
		got := kv.backoff(attempt)
		if got > 12*time.Millisecond {
			t.Errorf("backoff(%d) = %v, want <= 12ms", attempt, got)
		}
	}
}
