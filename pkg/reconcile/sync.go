package reconcile

import (
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// collection accumulates the next contents of one keyed domain from the
// configured entries, three ways against the previous collection: an equal
// entry keeps its old node, a different one derives from it, and a new one
// gets a fresh node. Entries of orig never put are dropped.
type collection[K comparable, F state.Fields[K, F]] struct {
	kind    string
	orig    *state.Map[K, F]
	nodes   []*state.Node[K, F]
	seen    map[K]bool
	matched int
	changed bool
}

func newCollection[K comparable, F state.Fields[K, F]](kind string, orig *state.Map[K, F]) *collection[K, F] {
	return &collection[K, F]{kind: kind, orig: orig, seen: map[K]bool{}}
}

// put records the desired fields of one configured entry.
func (c *collection[K, F]) put(f F) error {
	id := f.Key()
	if c.seen[id] {
		return util.NewDuplicateError(c.kind, id)
	}
	c.seen[id] = true

	old := c.orig.Get(id)
	switch {
	case old == nil:
		c.nodes = append(c.nodes, state.NewNode[K, F](f))
		c.changed = true
	case old.Equal(f):
		c.matched++
		c.nodes = append(c.nodes, old)
	default:
		c.matched++
		c.nodes = append(c.nodes, old.Derive(f))
		c.changed = true
	}
	return nil
}

// has reports whether id was put.
func (c *collection[K, F]) has(id K) bool { return c.seen[id] }

// done returns the next collection, or nil when it is unchanged and the
// previous one stays in place.
func (c *collection[K, F]) done() (*state.Map[K, F], error) {
	if c.matched != c.orig.Len() {
		c.changed = true
	}
	if !c.changed {
		return nil, nil
	}
	return c.orig.CloneWith(c.nodes)
}

// node reuses orig when it already holds f and derives from it otherwise.
// A nil orig yields a fresh node.
func node[K comparable, F state.Fields[K, F]](orig *state.Node[K, F], f F) (*state.Node[K, F], bool) {
	switch {
	case orig == nil:
		return state.NewNode[K, F](f), true
	case orig.Equal(f):
		return orig, false
	}
	return orig.Derive(f), true
}
