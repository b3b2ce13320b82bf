package asset

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache holds one entry per URL for the life of the process. Entries are only removed by Evict.
//
// At most one fetch per URL is outstanding at any time: entry creation is serialized under mu, and
// the load itself goes through a singleflight group, so a URL evicted and requested again while its
// first fetch is still running joins that fetch instead of starting another.
type Cache struct {
	loader Loader
	log    logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	flight singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	state State
	done  chan struct{}
}

// NewCache returns an empty cache that loads through loader. Loads run on a context owned by the
// cache, so callers that go away do not cancel them; Close cancels everything still in flight.
func NewCache(loader Loader, log logrus.FieldLogger) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{
		loader:  loader,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

// Preload starts loading url without waiting. Calling it again before the load settles does nothing.
func (c *Cache) Preload(url string) {
	c.ensure(url)
}

// Get returns the current state for url, starting a load if the url has no entry.
func (c *Cache) Get(url string) State {
	e := c.ensure(url)
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.state
}

// Peek returns the state for url without starting a load. ok is false when url has no entry.
func (c *Cache) Peek(url string) (st State, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return Pending(), false
	}
	return e.state, true
}

// Await blocks until the entry for url settles or ctx is done. On ctx expiry it returns the
// still-pending state with ctx.Err().
func (c *Cache) Await(ctx context.Context, url string) (State, error) {
	e := c.ensure(url)
	select {
	case <-e.done:
	case <-ctx.Done():
		return Pending(), ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.state, nil
}

// Evict drops the entry for url in whatever state it is. It reports whether an entry existed.
// A load still running for the evicted entry completes but its result is discarded.
func (c *Cache) Evict(url string) bool {
	c.mu.Lock()
	_, ok := c.entries[url]
	delete(c.entries, url)
	c.mu.Unlock()
	if ok {
		c.log.WithField("url", url).Debug("asset evicted")
	}
	return ok
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// URLs returns the cached urls, sorted.
func (c *Cache) URLs() []string {
	c.mu.Lock()
	out := make([]string, 0, len(c.entries))
	for u := range c.entries {
		out = append(out, u)
	}
	c.mu.Unlock()
	sort.Strings(out)
	return out
}

// Close cancels loads in flight. Entries that have not settled are left pending.
func (c *Cache) Close() {
	c.cancel()
}

func (c *Cache) ensure(url string) *entry {
	c.mu.Lock()
	e, ok := c.entries[url]
	if !ok {
		e = &entry{state: Pending(), done: make(chan struct{})}
		c.entries[url] = e
	}
	c.mu.Unlock()
	if !ok {
		c.log.WithField("url", url).Debug("asset load started")
		ch := c.flight.DoChan(url, func() (interface{}, error) {
			return c.loader.Load(c.ctx, url), nil
		})
		go c.wait(url, e, ch)
	}
	return e
}

func (c *Cache) wait(url string, e *entry, ch <-chan singleflight.Result) {
	res := <-ch
	st, _ := res.Val.(State)
	if !st.Settled() {
		st = Failed(&LoadError{URL: url, Op: OpFetch, Err: errUnsettled})
	}
	c.settle(url, e, st)
}

func (c *Cache) settle(url string, e *entry, st State) {
	c.mu.Lock()
	if e.state.Settled() {
		c.mu.Unlock()
		return
	}
	e.state = st
	close(e.done)
	c.mu.Unlock()

	log := c.log.WithField("url", url)
	if st.Status == StatusReady {
		log.Info("asset ready")
	} else {
		log.WithError(st.Err).Debug("asset load failed")
	}
}
