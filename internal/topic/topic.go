package topic

import (
	"fmt"
	"sync"

	"github.com/rmacdonaldsmith/tagsub-go/internal/linearscan"
	"github.com/rmacdonaldsmith/tagsub-go/internal/treescanner"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// New creates an empty topic backed by the given strategy.
func New[L tagsub.Listener](strategy tagsub.Strategy) (tagsub.Topic[L], error) {
	switch strategy {
	case tagsub.StrategyLinear:
		return linearscan.New[L](), nil
	case tagsub.StrategyTree:
		return treescanner.New[L](), nil
	default:
		return nil, fmt.Errorf("%w: %v", tagsub.ErrUnknownStrategy, strategy)
	}
}

// CheckFilter reports whether filter can be subscribed to a topic of the given strategy
// without panicking.
func CheckFilter(strategy tagsub.Strategy, filter tagsub.Filter) error {
	switch strategy {
	case tagsub.StrategyLinear:
		return nil
	case tagsub.StrategyTree:
		return treescanner.CheckFilter(filter)
	default:
		return fmt.Errorf("%w: %v", tagsub.ErrUnknownStrategy, strategy)
	}
}

// Synchronized guards a topic with a single mutex so it can be shared between goroutines.
// Subscribe grows the structures Accept traverses, so both take the same exclusive lock.
// A listener that blocks holds the lock for the whole dispatch.
type Synchronized[L tagsub.Listener] struct {
	mu    sync.Mutex
	topic tagsub.Topic[L]
}

// NewSynchronized wraps topic.
func NewSynchronized[L tagsub.Listener](topic tagsub.Topic[L]) *Synchronized[L] {
	return &Synchronized[L]{topic: topic}
}

// Subscribe registers listener under filter while holding the lock.
func (s *Synchronized[L]) Subscribe(listener L, filter tagsub.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic.Subscribe(listener, filter)
}

// Accept dispatches evt while holding the lock.
func (s *Synchronized[L]) Accept(evt tagsub.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic.Accept(evt)
}

// Receive forwards to Accept.
func (s *Synchronized[L]) Receive(evt tagsub.Event) {
	s.Accept(evt)
}

// Len returns the number of subscriptions.
func (s *Synchronized[L]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic.Len()
}

// Verify that Synchronized implements the Topic interface at compile time
var _ tagsub.Topic[tagsub.Listener] = (*Synchronized[tagsub.Listener])(nil)
