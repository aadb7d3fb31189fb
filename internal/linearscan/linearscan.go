package linearscan

import (
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

type subscription[L tagsub.Listener] struct {
	listener L
	filter   tagsub.Filter
}

// LinearScan implements the tagsub.Topic interface by evaluating every subscription's
// filter against every accepted event, in subscription order.
// It is the reference strategy the indexed strategies are checked against.
// It is not safe for concurrent use.
type LinearScan[L tagsub.Listener] struct {
	subscriptions []subscription[L]
}

// New creates an empty LinearScan.
func New[L tagsub.Listener]() *LinearScan[L] {
	return &LinearScan[L]{}
}

// Subscribe stores listener together with a private copy of filter.
func (s *LinearScan[L]) Subscribe(listener L, filter tagsub.Filter) {
	s.subscriptions = append(s.subscriptions, subscription[L]{
		listener: listener,
		filter:   filter.Clone(),
	})
}

// Accept delivers evt to every listener whose filter matches, in subscription order.
func (s *LinearScan[L]) Accept(evt tagsub.Event) {
	for i := range s.subscriptions {
		sub := &s.subscriptions[i]
		if sub.filter.Matches(evt) {
			sub.listener.Receive(evt)
		}
	}
}

// Receive forwards to Accept so a LinearScan can itself be subscribed into a topic.
func (s *LinearScan[L]) Receive(evt tagsub.Event) {
	s.Accept(evt)
}

// Len returns the number of subscriptions.
func (s *LinearScan[L]) Len() int {
	return len(s.subscriptions)
}

// Verify that LinearScan implements the Topic interface at compile time
var _ tagsub.Topic[tagsub.Listener] = (*LinearScan[tagsub.Listener])(nil)
