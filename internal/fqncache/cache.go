// Package fqncache caches type and symbol metadata by fully-qualified name.
//
// Names are split on config.FqnDelimiter into a trie of Nodes. Each node that
// was registered with Add carries a Slot produced by the cache's Strategy; the
// strategy decides whether the cache keeps payloads alive:
//
//   - Weak (default): weak pointers, payloads vanish once collected.
//   - Strong: ordinary pointers.
//   - Expiring: a TTL and capacity bounded store.
//
// A node survives the loss of its payload. Contains reports path existence;
// Get reports only live payloads, so a name can be contained while Get
// returns nil. Callers treat that as "not currently cached".
//
// # Malformed names
//
// The empty name and names with an empty segment ("a..b", ".a", "a.") are
// rejected by Validate. Mutators ignore them and queries report them absent.
//
// # Concurrency
//
// A Cache has no internal locking and assumes a single owner or external
// synchronization. Traversals snapshot the root's direct children, so
// callbacks may add or remove top-level names; deeper structural changes
// during a traversal are not supported.
package fqncache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/funvibe/typecore/internal/config"
	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
	"go.opentelemetry.io/otel/metric"
)

// ErrInvalidFqn is returned by Validate for malformed names.
var ErrInvalidFqn = errors.New("invalid fully-qualified name")

// FqnCache is the capability set shared by every cache backing.
type FqnCache[T any] interface {
	// Add registers fqn, creating missing intermediate nodes, and holds
	// payload (possibly nil). An existing registration is overwritten.
	Add(fqn string, payload *T)
	// Remove deletes the node at fqn and its subtree. It reports whether a
	// node existed.
	Remove(fqn string) bool
	// RemoveAll removes each name independently.
	RemoveAll(fqns []string)
	// Get returns the live payload at fqn, or nil.
	Get(fqn string) *T
	// GetNode returns the node at fqn, or nil.
	GetNode(fqn string) *Node[T]
	// Contains reports whether a node exists at fqn.
	Contains(fqn string) bool
	// Clear resets the cache to an empty root.
	Clear()
	// Fqns returns every registered name.
	Fqns() *set.Set[string]
	// VisitDepthFirst walks all nodes below the root in pre-order until the
	// visitor returns false.
	VisitDepthFirst(visitor func(payload *T) bool)
	// VisitNodeDepthFirst is VisitDepthFirst over the nodes themselves.
	VisitNodeDepthFirst(visitor func(node *Node[T]) bool)
	// VisitBreadthFirst walks each top-level subtree in level order. A false
	// result ends the walk of the current top-level subtree only.
	VisitBreadthFirst(visitor func(payload *T) bool)
}

// Cache is the trie-backed FqnCache.
type Cache[T any] struct {
	root     *Node[T]
	strategy Strategy[T]
	id       string
	logger   *slog.Logger
	metrics  *cacheMetrics
}

var _ FqnCache[struct{}] = (*Cache[struct{}])(nil)

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

func resolveOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider sets the provider for the hit, miss and eviction
// counters. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// New creates a cache holding payloads with the given strategy.
func New[T any](strategy Strategy[T], opts ...Option) *Cache[T] {
	o := resolveOptions(opts)
	id := uuid.NewString()[:8]
	return &Cache[T]{
		root:     newNode[T]("", nil),
		strategy: strategy,
		id:       id,
		logger:   o.logger.With(slog.String("cache", id)),
		metrics:  newCacheMetrics(o.meterProvider),
	}
}

// NewWeak creates a cache that never keeps its payloads alive.
func NewWeak[T any](opts ...Option) *Cache[T] {
	return New[T](Weak[T]{}, opts...)
}

// NewStrong creates a cache that keeps its payloads alive.
func NewStrong[T any](opts ...Option) *Cache[T] {
	return New[T](Strong[T]{}, opts...)
}

// NewExpiring creates a cache whose payloads expire after a TTL or are
// evicted beyond a capacity.
func NewExpiring[T any](eo ExpiringOptions, opts ...Option) (*Cache[T], error) {
	if eo.MeterProvider == nil {
		eo.MeterProvider = resolveOptions(opts).meterProvider
	}
	strategy, err := NewExpiringStrategy[T](eo)
	if err != nil {
		return nil, err
	}
	return New[T](strategy, opts...), nil
}

// Validate checks that fqn is a well-formed name.
func Validate(fqn string) error {
	if fqn == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFqn)
	}
	for _, part := range strings.Split(fqn, config.FqnDelimiter) {
		if part == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidFqn, fqn)
		}
	}
	return nil
}

func split(fqn string) ([]string, bool) {
	if Validate(fqn) != nil {
		return nil, false
	}
	return strings.Split(fqn, config.FqnDelimiter), true
}

// ID returns the identifier used to tag this cache's logs and metrics.
func (c *Cache[T]) ID() string { return c.id }

// Root returns the empty-segment sentinel node.
func (c *Cache[T]) Root() *Node[T] { return c.root }

func (c *Cache[T]) Add(fqn string, payload *T) {
	parts, ok := split(fqn)
	if !ok {
		c.logger.Debug("ignoring malformed name", slog.String("fqn", fqn))
		return
	}
	n := c.root
	for _, part := range parts {
		n = n.getOrCreateChild(part)
	}
	if n.slot != nil {
		c.strategy.Release(n.slot)
	}
	n.slot = c.strategy.Hold(fqn, payload)
}

func (c *Cache[T]) Remove(fqn string) bool {
	n := c.GetNode(fqn)
	if n == nil {
		return false
	}
	n.release(c.strategy)
	parent := n.parent
	parent.deleteChild(n)
	// Prune ancestors that only existed to reach the removed node.
	for parent != c.root && !parent.IsRegistered() && parent.IsLeaf() {
		grand := parent.parent
		grand.deleteChild(parent)
		parent = grand
	}
	return true
}

func (c *Cache[T]) RemoveAll(fqns []string) {
	removed := 0
	for _, fqn := range fqns {
		if c.Remove(fqn) {
			removed++
		}
	}
	c.logger.Debug("batch remove", slog.Int("requested", len(fqns)), slog.Int("removed", removed))
}

func (c *Cache[T]) Get(fqn string) *T {
	var payload *T
	if n := c.GetNode(fqn); n != nil {
		payload = n.Payload()
	}
	c.metrics.recordLookup(context.Background(), c.id, payload != nil)
	return payload
}

func (c *Cache[T]) GetNode(fqn string) *Node[T] {
	parts, ok := split(fqn)
	if !ok {
		return nil
	}
	n := c.root
	for _, part := range parts {
		n = n.Child(part)
		if n == nil {
			return nil
		}
	}
	return n
}

func (c *Cache[T]) Contains(fqn string) bool {
	return c.GetNode(fqn) != nil
}

// Clear resets the cache. Nodes obtained before the call are detached from
// the cache and no longer reflect its contents.
func (c *Cache[T]) Clear() {
	c.strategy.Reset()
	c.root = newNode[T]("", nil)
	c.logger.Debug("cleared")
}

func (c *Cache[T]) Fqns() *set.Set[string] {
	fqns := set.New[string](0)
	c.VisitNodeDepthFirst(func(n *Node[T]) bool {
		if n.IsRegistered() {
			fqns.Insert(n.FQN())
		}
		return true
	})
	return fqns
}

func (c *Cache[T]) VisitDepthFirst(visitor func(payload *T) bool) {
	for _, child := range c.root.Children() {
		if !child.visitDepthFirst(visitor) {
			return
		}
	}
}

func (c *Cache[T]) VisitNodeDepthFirst(visitor func(node *Node[T]) bool) {
	for _, child := range c.root.Children() {
		if !child.visitNodeDepthFirst(visitor) {
			return
		}
	}
}

// VisitBreadthFirst deliberately keeps visiting the remaining top-level
// subtrees after a visitor returns false.
func (c *Cache[T]) VisitBreadthFirst(visitor func(payload *T) bool) {
	for _, child := range c.root.Children() {
		child.visitBreadthFirst(visitor)
	}
}

// Close releases resources held by the strategy.
func (c *Cache[T]) Close() {
	c.strategy.Close()
}
