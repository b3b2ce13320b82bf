package asset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

// gatedLoader blocks every Load until release is closed, counting calls.
type gatedLoader struct {
	calls   atomic.Int32
	release chan struct{}
	result  func(url string) State
}

func newGatedLoader(result func(url string) State) *gatedLoader {
	return &gatedLoader{release: make(chan struct{}), result: result}
}

func (l *gatedLoader) Load(ctx context.Context, url string) State {
	l.calls.Add(1)
	select {
	case <-l.release:
	case <-ctx.Done():
		return Failed(&LoadError{URL: url, Op: OpFetch, Err: ctx.Err()})
	}
	return l.result(url)
}

func readyGraph(url string) State {
	return Ready(&SceneGraph{URL: url, Root: &Node{Name: "scene"}})
}

func awaitState(t *testing.T, c *Cache, url string) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.Await(ctx, url)
	if err != nil {
		t.Fatalf("Await(%q): %v", url, err)
	}
	return st
}

func newTestCache(l Loader) *Cache {
	log, _ := test.NewNullLogger()
	return NewCache(l, log)
}

func TestCacheDeduplicatesConcurrentRequests(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Preload("/shoe.glb")
			if st := c.Get("/shoe.glb"); st.Status != StatusPending {
				t.Errorf("expected pending before release, got %v", st.Status)
			}
		}()
	}
	wg.Wait()
	close(l.release)

	st := awaitState(t, c, "/shoe.glb")
	if st.Status != StatusReady {
		t.Fatalf("expected ready, got %v", st.Status)
	}
	if got := l.calls.Load(); got != 1 {
		t.Errorf("expected exactly one load, got %d", got)
	}
}

func TestCacheStateIsMonotonic(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)
	defer c.Close()

	var seen []Status
	record := func() {
		s := c.Get("/shoe.glb").Status
		if len(seen) == 0 || seen[len(seen)-1] != s {
			seen = append(seen, s)
		}
	}
	record()
	record()
	close(l.release)
	awaitState(t, c, "/shoe.glb")
	for i := 0; i < 5; i++ {
		record()
	}

	if len(seen) != 2 || seen[0] != StatusPending || seen[1] != StatusReady {
		t.Errorf("unexpected state sequence %v", seen)
	}
}

func TestCacheFailureIsTerminalUntilEvicted(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	var calls atomic.Int32
	c := newTestCache(LoaderFunc(func(ctx context.Context, url string) State {
		calls.Add(1)
		if fail.Load() {
			return Failed(&LoadError{URL: url, Op: OpFetch, Err: errors.New("boom")})
		}
		return readyGraph(url)
	}))
	defer c.Close()

	st := awaitState(t, c, "/bad.glb")
	if st.Status != StatusFailed || !IsLoadError(st.Err) {
		t.Fatalf("expected failed with LoadError, got %+v", st)
	}
	fail.Store(false)
	if st := c.Get("/bad.glb"); st.Status != StatusFailed {
		t.Errorf("failure should stick without eviction, got %v", st.Status)
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retry, got %d loads", calls.Load())
	}

	if !c.Evict("/bad.glb") {
		t.Fatal("Evict should report an existing entry")
	}
	if st := awaitState(t, c, "/bad.glb"); st.Status != StatusReady {
		t.Errorf("expected ready after evict and reload, got %v", st.Status)
	}
	if calls.Load() != 2 {
		t.Errorf("expected a fresh load after eviction, got %d loads", calls.Load())
	}
}

func TestCacheEvictRestartsAtPending(t *testing.T) {
	c := newTestCache(LoaderFunc(func(ctx context.Context, url string) State { return readyGraph(url) }))
	defer c.Close()

	awaitState(t, c, "/shoe.glb")
	c.Evict("/shoe.glb")
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
	if c.Evict("/shoe.glb") {
		t.Error("second Evict should report no entry")
	}
}

func TestCacheEvictDuringFlightJoinsOutstandingFetch(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)
	defer c.Close()

	c.Preload("/shoe.glb")
	waitFor(t, func() bool { return l.calls.Load() == 1 })
	c.Evict("/shoe.glb")
	if st := c.Get("/shoe.glb"); st.Status != StatusPending {
		t.Fatalf("new entry should start pending, got %v", st.Status)
	}
	close(l.release)

	if st := awaitState(t, c, "/shoe.glb"); st.Status != StatusReady {
		t.Fatalf("expected ready, got %v", st.Status)
	}
	if got := l.calls.Load(); got != 1 {
		t.Errorf("expected one outstanding fetch per url, got %d", got)
	}
}

func TestCacheAwaitHonorsContext(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := c.Await(ctx, "/stalled.glb")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if st.Status != StatusPending {
		t.Errorf("stalled load should stay pending, got %v", st.Status)
	}
	if got := c.Get("/stalled.glb").Status; got != StatusPending {
		t.Errorf("entry should still be pending, got %v", got)
	}
}

func TestCacheCloseCancelsInFlightLoads(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)

	c.Preload("/shoe.glb")
	c.Close()
	st := awaitState(t, c, "/shoe.glb")
	if st.Status != StatusFailed || !errors.Is(st.Err, context.Canceled) {
		t.Errorf("expected canceled failure, got %+v", st)
	}
}

func TestCacheUnsettledLoaderResultBecomesFailure(t *testing.T) {
	c := newTestCache(LoaderFunc(func(ctx context.Context, url string) State { return Pending() }))
	defer c.Close()

	st := awaitState(t, c, "/odd.glb")
	if st.Status != StatusFailed || !errors.Is(st.Err, errUnsettled) {
		t.Errorf("expected unsettled failure, got %+v", st)
	}
}

func TestCacheURLs(t *testing.T) {
	c := newTestCache(LoaderFunc(func(ctx context.Context, url string) State { return readyGraph(url) }))
	defer c.Close()
	c.Preload("/b.glb")
	c.Preload("/a.glb")
	got := c.URLs()
	if len(got) != 2 || got[0] != "/a.glb" || got[1] != "/b.glb" {
		t.Errorf("URLs() = %v", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCachePeekDoesNotLoad(t *testing.T) {
	l := newGatedLoader(readyGraph)
	c := newTestCache(l)
	defer c.Close()

	if _, ok := c.Peek("/shoe.glb"); ok {
		t.Fatal("Peek reported an entry for an unknown url")
	}
	if c.Len() != 0 || l.calls.Load() != 0 {
		t.Fatal("Peek started a load")
	}
	close(l.release)
	awaitState(t, c, "/shoe.glb")
	if st, ok := c.Peek("/shoe.glb"); !ok || st.Status != StatusReady {
		t.Errorf("Peek = %v, %v", st.Status, ok)
	}
}
