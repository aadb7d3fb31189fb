package treescanner

import (
	"fmt"
	"slices"

	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// TreeScanner implements the tagsub.Topic interface by routing events through a trie.
//
// The trie is laid out over the pipeline: an append-only ordering of every tag key seen
// at subscribe time. Depth d of the trie corresponds to pipeline[d]. A subscription with
// N constrained tags walks exactly N levels, taking the value edge for keys it constrains
// and the passthrough edge for keys it does not.
//
// Because the walk is bounded by the filter's size rather than by the keys it names, a
// filter only keeps all of its constraints when they occupy the first N pipeline slots.
// A filter whose keys were appended behind keys of earlier subscriptions is matched as if
// some of its constraints were absent.
//
// It is not safe for concurrent use.
type TreeScanner[L tagsub.Listener] struct {
	pipeline []string
	index    map[string]struct{}
	root     node[L]
	count    int
}

// New creates an empty TreeScanner with an empty pipeline.
func New[L tagsub.Listener]() *TreeScanner[L] {
	return &TreeScanner[L]{
		index: make(map[string]struct{}),
	}
}

// CheckFilter reports whether filter can be represented by a TreeScanner.
// Every constrained tag must accept exactly one value.
func CheckFilter(filter tagsub.Filter) error {
	for _, key := range filter.Keys() {
		vs, _ := filter.Values(key)
		if len(vs) != 1 {
			return fmt.Errorf("%w: tag %q must accept exactly one value, got %v", tagsub.ErrUnsupportedFilter, key, vs)
		}
	}
	return nil
}

// Subscribe extends the pipeline with the filter's unseen keys and stores listener at the
// end of its walk.
//
// Subscribe panics with an error wrapping tagsub.ErrUnsupportedFilter if the filter
// constrains a tag to anything other than a single value; use CheckFilter to validate
// untrusted filters first. A rejected filter leaves the scanner unchanged.
func (s *TreeScanner[L]) Subscribe(listener L, filter tagsub.Filter) {
	if err := CheckFilter(filter); err != nil {
		panic(err)
	}

	for _, key := range filter.Keys() {
		if _, ok := s.index[key]; !ok {
			s.index[key] = struct{}{}
			s.pipeline = append(s.pipeline, key)
		}
	}

	cur := &s.root
	for _, key := range s.pipeline[:filter.Len()] {
		vs, ok := filter.Values(key)
		if !ok {
			cur = cur.passthroughNode()
			continue
		}
		cur = cur.child(vs[0])
	}
	cur.interested = append(cur.interested, listener)
	s.count++
}

// Accept walks the trie breadth-first, one pipeline key per level, delivering evt to the
// interested listeners of every node it reaches. At each level the passthrough branch is
// queued before the value branch.
func (s *TreeScanner[L]) Accept(evt tagsub.Event) {
	frontier := []*node[L]{&s.root}
	var next []*node[L]

	for _, key := range s.pipeline {
		if len(frontier) == 0 {
			return
		}
		value, hasKey := evt.Tags[key]
		for _, n := range frontier {
			n.deliver(evt)
			if n.passthrough != nil {
				next = append(next, n.passthrough)
			}
			if hasKey {
				if c, ok := n.children[value]; ok {
					next = append(next, c)
				}
			}
		}
		frontier, next = next, frontier[:0]
	}

	for _, n := range frontier {
		n.deliver(evt)
	}
}

// Receive forwards to Accept so a TreeScanner can itself be subscribed into a topic.
func (s *TreeScanner[L]) Receive(evt tagsub.Event) {
	s.Accept(evt)
}

// Len returns the number of subscriptions.
func (s *TreeScanner[L]) Len() int {
	return s.count
}

// Pipeline returns a copy of the current key ordering.
func (s *TreeScanner[L]) Pipeline() []string {
	return slices.Clone(s.pipeline)
}

// Nodes returns the number of trie nodes, the root included.
func (s *TreeScanner[L]) Nodes() int {
	return s.root.count()
}

// Verify that TreeScanner implements the Topic interface at compile time
var _ tagsub.Topic[tagsub.Listener] = (*TreeScanner[tagsub.Listener])(nil)
