package tagsub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFilter is the cause of the panic raised when a strategy cannot represent a filter
	ErrUnsupportedFilter = errors.New("unsupported filter")
	// ErrUnknownStrategy is returned when a strategy name cannot be resolved
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Listener is anything that can receive a matched event.
// Receive has no error channel: a listener that fails handles it itself or panics,
// and a panic aborts delivery to the remaining listeners of that Accept call.
type Listener interface {
	Receive(evt Event)
}

// ListenerFunc adapts an ordinary function to the Listener interface.
type ListenerFunc func(evt Event)

// Receive calls f(evt).
func (f ListenerFunc) Receive(evt Event) {
	f(evt)
}

// Topic is a matching strategy: listeners subscribe with a filter and every accepted
// event is delivered synchronously to each listener whose filter it satisfies.
//
// Implementations are not safe for concurrent use.
type Topic[L Listener] interface {
	// Listener lets a topic be subscribed into another topic; Receive forwards to Accept.
	Listener

	// Subscribe registers listener under filter. There is no unsubscribe.
	Subscribe(listener L, filter Filter)

	// Accept delivers evt to every matching listener exactly once and returns
	// after the last delivery.
	Accept(evt Event)

	// Len returns the number of subscriptions.
	Len() int
}

// Strategy selects a Topic implementation.
type Strategy int

const (
	// StrategyLinear evaluates every filter against every event
	StrategyLinear Strategy = iota

	// StrategyTree routes events through a shared trie of tag values
	StrategyTree
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLinear:
		return "linear"
	case StrategyTree:
		return "tree"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a configuration name ("linear" or "tree") to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "linear-scan":
		return StrategyLinear, nil
	case "tree", "tree-scanner":
		return StrategyTree, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
