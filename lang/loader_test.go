package lang

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardnew/hypereval/log"
)

type loaded struct{ id int64 }

func TestLazyRegistry_ConcurrentRequestsShareOneLoad(t *testing.T) {
	var calls atomic.Int64

	started := make(chan struct{})
	release := make(chan struct{})

	lazy := NewLazyRegistry[*loaded](log.Logger{})
	lazy.Define("slow", "command", func(context.Context) (*loaded, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
		}

		<-release

		return &loaded{id: n}, nil
	})

	ctx := t.Context()

	var (
		wg      sync.WaitGroup
		results [2]*loaded
		errs    [2]error
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		results[0], errs[0] = lazy.Get(ctx, "slow")
	}()

	<-started

	if got := lazy.Status("slow"); got != StatusLoading {
		t.Errorf("expected status loading, got %v", got)
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		results[1], errs[1] = lazy.Get(ctx, "slow")
	}()

	// Give the second request time to join the flight.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one load, got %d", calls.Load())
	}

	if results[0] != results[1] {
		t.Errorf("expected identical values, got %p and %p", results[0], results[1])
	}

	third, err := lazy.Get(ctx, "slow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if third != results[0] || calls.Load() != 1 {
		t.Errorf("expected cached value without another load (calls=%d)", calls.Load())
	}

	if got := lazy.Status("slow"); got != StatusLoaded {
		t.Errorf("expected status loaded, got %v", got)
	}

	if stats := lazy.Stats(); stats.Loads != 1 || stats.Hits < 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestLazyRegistry_FailureIsNotCached(t *testing.T) {
	var calls atomic.Int64

	boom := errors.New("boom")

	lazy := NewLazyRegistry[string](log.Logger{})
	lazy.Define("flaky", "command", func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}

		return "ok", nil
	})

	_, err := lazy.Get(t.Context(), "flaky")
	if !errors.Is(err, ErrLoad) || !errors.Is(err, boom) {
		t.Fatalf("expected load error wrapping cause, got %v", err)
	}

	if lazy.IsValid("flaky") {
		t.Error("expected entry to be invalid after a failed load")
	}

	if !lazy.Has("flaky") {
		t.Error("expected failed entry to remain defined")
	}

	v, err := lazy.Get(t.Context(), "flaky")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	if v != "ok" || calls.Load() != 2 {
		t.Errorf("expected retried load, got %q after %d calls", v, calls.Load())
	}

	if !lazy.IsValid("flaky") {
		t.Error("expected entry to be valid after a successful load")
	}
}

func TestLazyRegistry_UnknownKey(t *testing.T) {
	lazy := NewLazyRegistry[int](log.Logger{})

	if lazy.Has("nope") || lazy.IsValid("nope") {
		t.Error("expected undefined key to be absent")
	}

	if got := lazy.Status("nope"); got != StatusUndefined {
		t.Errorf("expected undefined status, got %v", got)
	}

	_, err := lazy.Get(t.Context(), "nope")
	if !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestLazyRegistry_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	lazy := NewLazyRegistry[int](log.Logger{})
	lazy.Define("slow", "command", func(ctx context.Context) (int, error) {
		close(started)
		<-release

		// The load outlives the caller that started it.
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		return 7, nil
	})

	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)

	go func() {
		_, err := lazy.Get(ctx, "slow")
		done <- err
	}()

	<-started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	close(release)

	v, err := lazy.Get(t.Context(), "slow")
	if err != nil || v != 7 {
		t.Errorf("expected detached load to complete with 7, got %v, %v", v, err)
	}
}

func TestLazyRegistry_WarmUp(t *testing.T) {
	var calls atomic.Int64

	lazy := NewLazyRegistry[string](log.Logger{})

	for _, key := range []string{"a", "b", "c"} {
		category := "letters"
		if key == "c" {
			category = "other"
		}

		lazy.Define(key, category, func(context.Context) (string, error) {
			calls.Add(1)

			return key, nil
		})
	}

	if err := lazy.WarmUpCategory(t.Context(), "letters"); err != nil {
		t.Fatalf("warm up error: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("expected 2 loads, got %d", calls.Load())
	}

	if lazy.Status("c") != StatusUnloaded {
		t.Errorf("expected c to stay unloaded, got %v", lazy.Status("c"))
	}

	if err := lazy.WarmUp(t.Context(), lazy.Keys()...); err != nil {
		t.Fatalf("warm up error: %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("expected only c to load, got %d loads", calls.Load())
	}

	if cats := lazy.Categories(); len(cats) != 2 || cats[0] != "letters" || cats[1] != "other" {
		t.Errorf("unexpected categories %v", cats)
	}

	if keys := lazy.KeysIn("letters"); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestLazyRegistry_ForgetAndRedefine(t *testing.T) {
	var calls atomic.Int64

	lazy := NewLazyRegistry[int64](log.Logger{})
	lazy.Define("n", "x", func(context.Context) (int64, error) {
		return calls.Add(1), nil
	})

	first, _ := lazy.Get(t.Context(), "n")

	lazy.Forget("n")

	second, _ := lazy.Get(t.Context(), "n")
	if first == second {
		t.Errorf("expected reload after forget, got %d twice", first)
	}

	lazy.Define("n", "x", func(context.Context) (int64, error) { return 100, nil })

	if v, _ := lazy.Get(t.Context(), "n"); v != 100 {
		t.Errorf("expected redefined loader, got %d", v)
	}
}

func TestRuntime_LoaderBacksRegistry(t *testing.T) {
	var calls atomic.Int64

	lazy := NewLazyRegistry[Implementation](log.Logger{})
	lazy.Define(OpLessThan, "comparison", func(context.Context) (Implementation, error) {
		calls.Add(1)

		return NewExpr(OpLessThan, "comparison",
			func(context.Context, *ExecutionContext, ...any) (any, error) {
				return "lazy", nil
			}, nil), nil
	})

	rt := NewRuntime(WithLoader(lazy))

	if calls.Load() != 0 {
		t.Fatal("expected no load before first use")
	}

	for range 3 {
		if v := evalNode(t, rt, Binary("<", Lit(1), Lit(2)), nil); v != "lazy" {
			t.Fatalf("expected lazily loaded operator, got %v", v)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected a single load, got %d", calls.Load())
	}

	if _, ok := rt.Registry().Get(OpLessThan); !ok {
		t.Error("expected loaded implementation to be registered")
	}
}

func TestLazyRegistry_RedefineDuringLoad(t *testing.T) {
	lazy := NewLazyRegistry[string](log.Logger{})

	release := make(chan struct{})
	lazy.Define("k", "x", func(context.Context) (string, error) {
		<-release

		return "old", nil
	})

	done := make(chan string)

	go func() {
		v, _ := lazy.Get(context.Background(), "k")
		done <- v
	}()

	deadline := time.Now().Add(5 * time.Second)
	for lazy.Status("k") != StatusLoading {
		if time.Now().After(deadline) {
			t.Fatal("load did not start")
		}

		time.Sleep(time.Millisecond)
	}

	lazy.Define("k", "x", func(context.Context) (string, error) { return "new", nil })
	close(release)

	if v := <-done; v != "old" {
		t.Errorf("expected the pending request to receive old, got %q", v)
	}

	v, err := lazy.Get(t.Context(), "k")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}

	if v != "new" {
		t.Errorf("expected new after redefinition, got %q", v)
	}
}
