package state

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/newtron-network/swreconcile/pkg/util"
)

// Map is an immutable collection of nodes ordered by key.
type Map[K comparable, F Fields[K, F]] struct {
	nodes      []*Node[K, F]
	index      map[K]int
	compare    func(a, b K) int
	generation uint64
	published  atomic.Bool
}

// NewMap returns an empty map ordered by compare.
func NewMap[K comparable, F Fields[K, F]](compare func(a, b K) int) *Map[K, F] {
	return &Map[K, F]{index: map[K]int{}, compare: compare}
}

// NewOrderedMap returns an empty map over a naturally ordered key.
func NewOrderedMap[K cmp.Ordered, F Fields[K, F]]() *Map[K, F] {
	return NewMap[K, F](cmp.Compare[K])
}

// Len returns the number of nodes.
func (m *Map[K, F]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.nodes)
}

// Get returns the node with key k, or nil.
func (m *Map[K, F]) Get(k K) *Node[K, F] {
	if m == nil {
		return nil
	}
	if i, ok := m.index[k]; ok {
		return m.nodes[i]
	}
	return nil
}

// Nodes returns the nodes in key order. The slice is a copy.
func (m *Map[K, F]) Nodes() []*Node[K, F] {
	if m == nil {
		return nil
	}
	return slices.Clone(m.nodes)
}

// Keys returns the keys in order.
func (m *Map[K, F]) Keys() []K {
	if m == nil {
		return nil
	}
	keys := make([]K, len(m.nodes))
	for i, n := range m.nodes {
		keys[i] = n.ID()
	}
	return keys
}

// Generation of the map itself.
func (m *Map[K, F]) Generation() uint64 {
	if m == nil {
		return 0
	}
	return m.generation
}

// IsPublished reports whether the map has been frozen.
func (m *Map[K, F]) IsPublished() bool { return m != nil && m.published.Load() }

// Publish freezes the map and every node in it.
func (m *Map[K, F]) Publish() {
	if m == nil || m.published.Swap(true) {
		return
	}
	for _, n := range m.nodes {
		n.Publish()
	}
}

// Equal reports whether two maps hold the very same node pointers in the
// same order.
func (m *Map[K, F]) Equal(o *Map[K, F]) bool {
	if m == o {
		return true
	}
	if m.Len() != o.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		if m.nodes[i] != o.nodes[i] {
			return false
		}
	}
	return true
}

// CloneWith builds a new unpublished map one generation after m holding
// exactly nodes, sorted by key. Node pointers are kept as given, so
// unchanged entries stay shared with m. A repeated key is a duplicate
// error.
func (m *Map[K, F]) CloneWith(nodes []*Node[K, F]) (*Map[K, F], error) {
	out := &Map[K, F]{
		nodes:      slices.Clone(nodes),
		index:      make(map[K]int, len(nodes)),
		compare:    m.compare,
		generation: m.generation + 1,
	}
	slices.SortStableFunc(out.nodes, func(a, b *Node[K, F]) int {
		return out.compare(a.ID(), b.ID())
	})
	for i, n := range out.nodes {
		if i > 0 && out.compare(out.nodes[i-1].ID(), n.ID()) == 0 {
			return nil, util.NewDuplicateError("node", n.ID())
		}
		out.index[n.ID()] = i
	}
	return out, nil
}

// Modify returns a writable handle on m, copying it first if published.
func (m *Map[K, F]) Modify() MapWriter[K, F] {
	if !m.IsPublished() {
		return MapWriter[K, F]{m: m}
	}
	cp, _ := m.CloneWith(m.nodes)
	return MapWriter[K, F]{m: cp}
}

// MapWriter edits an unpublished map in place.
type MapWriter[K comparable, F Fields[K, F]] struct {
	m *Map[K, F]
}

// Map returns the map behind the writer.
func (w MapWriter[K, F]) Map() *Map[K, F] { return w.m }

// Put inserts n, replacing any node with the same key.
func (w MapWriter[K, F]) Put(n *Node[K, F]) {
	w.check()
	m := w.m
	k := n.ID()
	if i, ok := m.index[k]; ok {
		m.nodes[i] = n
		return
	}
	i, _ := slices.BinarySearchFunc(m.nodes, k, func(e *Node[K, F], t K) int {
		return m.compare(e.ID(), t)
	})
	m.nodes = slices.Insert(m.nodes, i, n)
	m.reindex(i)
}

// Remove deletes the node with key k and reports whether it was present.
func (w MapWriter[K, F]) Remove(k K) bool {
	w.check()
	m := w.m
	i, ok := m.index[k]
	if !ok {
		return false
	}
	m.nodes = slices.Delete(m.nodes, i, i+1)
	delete(m.index, k)
	m.reindex(i)
	return true
}

func (w MapWriter[K, F]) check() {
	if w.m.IsPublished() {
		panic("state: write to published map")
	}
}

func (m *Map[K, F]) reindex(from int) {
	for i := from; i < len(m.nodes); i++ {
		m.index[m.nodes[i].ID()] = i
	}
}
