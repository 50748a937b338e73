package fqncache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"weak"

	"github.com/dgraph-io/ristretto/v2"
	"go.opentelemetry.io/otel/metric"
)

// Slot is an expirable holder for a cached payload. Load may start returning
// nil at any time after the payload was stored, independently of the trie.
type Slot[T any] interface {
	Load() *T
}

// Strategy decides how payloads are held by the cache.
type Strategy[T any] interface {
	// Hold wraps payload (possibly nil) for the node at fqn.
	Hold(fqn string, payload *T) Slot[T]
	// Release drops a slot whose node was removed or overwritten.
	Release(slot Slot[T])
	// Reset drops every slot handed out so far.
	Reset()
	// Close frees resources owned by the strategy.
	Close()
}

// Weak holds payloads through weak pointers: the cache never keeps a payload
// alive, and a payload collected by the garbage collector reads as absent.
type Weak[T any] struct{}

type weakSlot[T any] struct {
	ptr weak.Pointer[T]
}

func (s weakSlot[T]) Load() *T { return s.ptr.Value() }

func (Weak[T]) Hold(_ string, payload *T) Slot[T] {
	return weakSlot[T]{ptr: weak.Make(payload)}
}

func (Weak[T]) Release(Slot[T]) {}
func (Weak[T]) Reset()          {}
func (Weak[T]) Close()          {}

// Strong holds payloads through ordinary pointers.
type Strong[T any] struct{}

type strongSlot[T any] struct {
	ptr *T
}

func (s strongSlot[T]) Load() *T { return s.ptr }

func (Strong[T]) Hold(_ string, payload *T) Slot[T] {
	return strongSlot[T]{ptr: payload}
}

func (Strong[T]) Release(Slot[T]) {}
func (Strong[T]) Reset()          {}
func (Strong[T]) Close()          {}

// ExpiringOptions configures the Expiring strategy.
type ExpiringOptions struct {
	// TTL is the lifetime of a stored payload. Zero means no expiry.
	TTL time.Duration

	// MaxEntries bounds the number of live payloads; beyond it the admission
	// policy evicts or rejects entries.
	MaxEntries int64

	// MeterProvider receives the eviction counter. Nil selects the global
	// provider.
	MeterProvider metric.MeterProvider
}

// Expiring substitutes an explicit TTL and capacity policy for garbage
// collector driven reclamation. Payloads live in a ristretto store; a slot
// reads as absent once its entry expired, was evicted or was never admitted.
type Expiring[T any] struct {
	store *ristretto.Cache[string, *T]
	ttl   time.Duration
	gen   atomic.Uint64
}

type expiringSlot[T any] struct {
	store *ristretto.Cache[string, *T]
	key   string
}

func (s expiringSlot[T]) Load() *T {
	v, ok := s.store.Get(s.key)
	if !ok {
		return nil
	}
	return v
}

// NewExpiringStrategy creates the ristretto-backed store.
func NewExpiringStrategy[T any](opts ExpiringOptions) (*Expiring[T], error) {
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1 << 16
	}
	metrics := newCacheMetrics(opts.MeterProvider)
	store, err := ristretto.NewCache(&ristretto.Config[string, *T]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
		OnEvict: func(*ristretto.Item[*T]) {
			metrics.recordEviction(context.Background())
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating expiring store: %w", err)
	}
	return &Expiring[T]{store: store, ttl: opts.TTL}, nil
}

func (e *Expiring[T]) Hold(fqn string, payload *T) Slot[T] {
	key := fmt.Sprintf("%s#%d", fqn, e.gen.Add(1))
	if payload != nil {
		e.store.SetWithTTL(key, payload, 1, e.ttl)
		e.store.Wait()
	}
	return expiringSlot[T]{store: e.store, key: key}
}

func (e *Expiring[T]) Release(slot Slot[T]) {
	if s, ok := slot.(expiringSlot[T]); ok {
		e.store.Del(s.key)
	}
}

func (e *Expiring[T]) Reset() { e.store.Clear() }

func (e *Expiring[T]) Close() { e.store.Close() }
