package fqncache

import (
	"slices"
	"strings"

	"github.com/funvibe/typecore/internal/config"
)

// Node is a single namespace segment of the trie.
//
// A node carries a slot once its path has been registered with Add; nodes
// created only to reach a deeper path are structural and carry none.
type Node[T any] struct {
	segment  string
	parent   *Node[T]
	children map[string]*Node[T]
	order    []*Node[T] // insertion order of children
	slot     Slot[T]
}

func newNode[T any](segment string, parent *Node[T]) *Node[T] {
	return &Node[T]{segment: segment, parent: parent}
}

// Segment returns the path component this node represents.
func (n *Node[T]) Segment() string { return n.segment }

// Parent returns the enclosing node, or nil for the root and detached nodes.
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// IsRoot reports whether n is the empty-segment sentinel of its cache.
func (n *Node[T]) IsRoot() bool { return n.parent == nil && n.segment == "" }

// IsRegistered reports whether the node's path was added explicitly.
func (n *Node[T]) IsRegistered() bool { return n.slot != nil }

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool { return len(n.order) == 0 }

// Payload returns the held payload, or nil when the node is structural or the
// payload is no longer live.
func (n *Node[T]) Payload() *T {
	if n.slot == nil {
		return nil
	}
	return n.slot.Load()
}

// FQN reconstructs the fully-qualified name of the node.
func (n *Node[T]) FQN() string {
	var parts []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.parent {
		parts = append(parts, cur.segment)
	}
	slices.Reverse(parts)
	return strings.Join(parts, config.FqnDelimiter)
}

// Child returns the direct child with the given segment, or nil.
func (n *Node[T]) Child(segment string) *Node[T] {
	return n.children[segment]
}

// Children returns a copy of the direct children in insertion order.
func (n *Node[T]) Children() []*Node[T] {
	return slices.Clone(n.order)
}

func (n *Node[T]) getOrCreateChild(segment string) *Node[T] {
	if child, ok := n.children[segment]; ok {
		return child
	}
	if n.children == nil {
		n.children = make(map[string]*Node[T])
	}
	child := newNode(segment, n)
	n.children[segment] = child
	n.order = append(n.order, child)
	return child
}

func (n *Node[T]) deleteChild(child *Node[T]) {
	if n.children[child.segment] != child {
		return
	}
	delete(n.children, child.segment)
	if i := slices.Index(n.order, child); i >= 0 {
		n.order = slices.Delete(n.order, i, i+1)
	}
	child.parent = nil
}

// visitDepthFirst walks the subtree in pre-order. A false result from the
// visitor stops the walk and is propagated to the caller.
func (n *Node[T]) visitDepthFirst(visitor func(*T) bool) bool {
	if !visitor(n.Payload()) {
		return false
	}
	for _, child := range n.order {
		if !child.visitDepthFirst(visitor) {
			return false
		}
	}
	return true
}

func (n *Node[T]) visitNodeDepthFirst(visitor func(*Node[T]) bool) bool {
	if !visitor(n) {
		return false
	}
	for _, child := range n.order {
		if !child.visitNodeDepthFirst(visitor) {
			return false
		}
	}
	return true
}

// visitBreadthFirst walks the subtree in level order, stopping the walk of
// this subtree on the first false.
func (n *Node[T]) visitBreadthFirst(visitor func(*T) bool) bool {
	queue := []*Node[T]{n}
	for i := 0; i < len(queue); i++ {
		node := queue[i]
		if !visitor(node.Payload()) {
			return false
		}
		queue = append(queue, node.order...)
	}
	return true
}

// release hands every slot in the subtree back to the strategy.
func (n *Node[T]) release(s Strategy[T]) {
	if n.slot != nil {
		s.Release(n.slot)
	}
	for _, child := range n.order {
		child.release(s)
	}
}
