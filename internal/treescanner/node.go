package treescanner

import (
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// node is one level of the tag trie. Its depth is the number of pipeline keys consumed
// to reach it, which equals the filter size of every listener in interested.
type node[L tagsub.Listener] struct {
	// interested holds listeners whose subscription walk ended here
	interested []L

	// passthrough is followed by subscriptions that do not constrain the key at this depth
	passthrough *node[L]

	// children is keyed by the value taken for the key at this depth
	children map[string]*node[L]
}

func (n *node[L]) passthroughNode() *node[L] {
	if n.passthrough == nil {
		n.passthrough = &node[L]{}
	}
	return n.passthrough
}

func (n *node[L]) child(value string) *node[L] {
	if n.children == nil {
		n.children = make(map[string]*node[L])
	}
	c, ok := n.children[value]
	if !ok {
		c = &node[L]{}
		n.children[value] = c
	}
	return c
}

func (n *node[L]) deliver(evt tagsub.Event) {
	for i := range n.interested {
		n.interested[i].Receive(evt)
	}
}

// count returns the number of nodes in the subtree rooted at n, n included.
func (n *node[L]) count() int {
	total := 1
	if n.passthrough != nil {
		total += n.passthrough.count()
	}
	for _, c := range n.children {
		total += c.count()
	}
	return total
}
