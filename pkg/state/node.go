// Package state holds the immutable, versioned switch state tree. Every
// entity is a Node; every group of same-typed entities is a Map; the
// SwitchState root ties one Map or scalar node per domain together.
//
// Nodes and maps are copy-on-write. A published value is never changed in
// place: its read-only accessors hand out data, and the only way to obtain
// a writable handle is Modify, which copies a published node first.
package state

import (
	"net/netip"
	"sync/atomic"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Fields is the payload of a node. Key returns the node's identity inside
// its collection; Clone returns a copy that shares nothing mutable with the
// receiver.
type Fields[K comparable, F any] interface {
	Key() K
	Clone() F
}

// publisher is implemented by fields that own nested collections which
// must be frozen together with the node.
type publisher interface {
	publishChildren()
}

// fieldOptions makes the comparison of fields value based: netip types are
// compared with ==, and nil and empty maps/slices are equal.
var fieldOptions = gocmp.Options{
	cmpopts.EquateEmpty(),
	gocmp.Comparer(func(a, b netip.Addr) bool { return a == b }),
	gocmp.Comparer(func(a, b netip.Prefix) bool { return a == b }),
	gocmp.Comparer(func(a, b netip.AddrPort) bool { return a == b }),
}

// FieldsEqual reports whether two field values are equal. Types with an
// Equal method are compared through it.
func FieldsEqual[F any](a, b F) bool {
	return gocmp.Equal(a, b, fieldOptions)
}

// FieldsDiff returns a human readable diff of two field values, or "".
func FieldsDiff[F any](a, b F) string {
	return gocmp.Diff(a, b, fieldOptions)
}

// Node is one versioned entity.
type Node[K comparable, F Fields[K, F]] struct {
	fields     F
	generation uint64
	published  atomic.Bool
}

// NewNode creates an unpublished node at generation 0.
func NewNode[K comparable, F Fields[K, F]](fields F) *Node[K, F] {
	return &Node[K, F]{fields: fields}
}

// ID returns the node's key.
func (n *Node[K, F]) ID() K { return n.fields.Key() }

// Generation is incremented every time a modified copy is made.
func (n *Node[K, F]) Generation() uint64 { return n.generation }

// IsPublished reports whether the node has been frozen.
func (n *Node[K, F]) IsPublished() bool { return n.published.Load() }

// Publish freezes the node and any collections it owns.
func (n *Node[K, F]) Publish() {
	if n.published.Swap(true) {
		return
	}
	if p, ok := any(n.fields).(publisher); ok {
		p.publishChildren()
	}
}

// Fields returns the node's payload. For a published node it is a clone,
// so editing the maps and slices inside it cannot reach the node. An
// unpublished node hands out its own payload to the pass building it.
func (n *Node[K, F]) Fields() F {
	if n.IsPublished() {
		return n.fields.Clone()
	}
	return n.fields
}

// Equal reports whether the node already holds fields equal to f.
func (n *Node[K, F]) Equal(f F) bool {
	return FieldsEqual(n.fields, f)
}

// Modify returns a writable handle. An unpublished node is returned as is,
// so repeated calls during one pass hand back the same instance; a
// published node is cloned into a new unpublished node one generation
// later.
func (n *Node[K, F]) Modify() Writable[K, F] {
	if !n.IsPublished() {
		return Writable[K, F]{node: n}
	}
	return Writable[K, F]{node: n.Derive(n.fields.Clone())}
}

// Derive returns a new unpublished node carrying fields, one generation
// after n. n itself is untouched.
func (n *Node[K, F]) Derive(fields F) *Node[K, F] {
	return &Node[K, F]{fields: fields, generation: n.generation + 1}
}

// Writable is the only handle through which a node's fields can change.
type Writable[K comparable, F Fields[K, F]] struct {
	node *Node[K, F]
}

// Node returns the node behind the handle.
func (w Writable[K, F]) Node() *Node[K, F] { return w.node }

// Fields returns a pointer to the node's payload for in-place edits. It
// panics if the node was published after the handle was taken.
func (w Writable[K, F]) Fields() *F {
	if w.node.IsPublished() {
		panic("state: write to published node")
	}
	return &w.node.fields
}

// Singleton is the key of scalar nodes that have exactly one instance in
// the tree.
type Singleton struct{}
