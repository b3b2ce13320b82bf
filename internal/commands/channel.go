package commands

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ResetCamera asks the camera controller to return to its home pose.
const ResetCamera = "reset-camera"

// Handler reacts to a named command. Commands carry no payload.
type Handler func()

// Channel delivers named commands between parts of the viewer that hold no reference to
// each other. Producers do not learn whether anyone is listening.
type Channel interface {
	// Emit calls every handler subscribed to name, synchronously, and returns how many ran.
	Emit(name string) int
	// Subscribe registers h for name. The returned func removes it and is safe to call repeatedly.
	Subscribe(name string, h Handler) (unsubscribe func())
}

// Bus is the in-process Channel. Commands emitted with no subscriber are dropped, counted,
// and logged at debug level; nothing is queued for later subscribers.
type Bus struct {
	log    logrus.FieldLogger
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]Handler
	misses atomic.Int64
}

var _ Channel = (*Bus)(nil)

// NewBus returns an empty bus. log may be nil.
func NewBus(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{log: log, subs: make(map[string]map[uint64]Handler)}
}

// Emit runs handlers in subscription order outside the lock, so a handler may subscribe,
// unsubscribe, or emit without deadlocking.
func (b *Bus) Emit(name string) int {
	b.mu.Lock()
	set := b.subs[name]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, len(ids))
	for i, id := range ids {
		handlers[i] = set[id]
	}
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.misses.Add(1)
		b.log.WithField("command", name).Debug("command dropped: no subscribers")
		return 0
	}
	for _, h := range handlers {
		h()
	}
	return len(handlers)
}

// Subscribe registers h for name.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[name] == nil {
		b.subs[name] = make(map[uint64]Handler)
	}
	b.subs[name][id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[name], id)
			if len(b.subs[name]) == 0 {
				delete(b.subs, name)
			}
			b.mu.Unlock()
		})
	}
}

// Subscribers returns the number of handlers currently registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}

// Misses returns how many emits found no subscriber.
func (b *Bus) Misses() int64 {
	return b.misses.Load()
}
