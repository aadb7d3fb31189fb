// Package tagsub provides the types and interfaces for content-based event routing.
//
// This package defines the core abstractions shared by every matching strategy:
//   - Event: an immutable snapshot of one published message's tags
//   - Filter: a conjunction of per-tag equality constraints describing one subscriber's interest
//   - Listener: anything that can receive a matched event
//   - Topic: a matching strategy that subscribers register with and events are accepted into
//
// Two strategies implement Topic:
//   - LinearScan (internal/linearscan) re-evaluates every filter against every event
//   - TreeScanner (internal/treescanner) routes events through a trie built over a shared,
//     append-only ordering of tag keys (the "pipeline")
//
// Example usage:
//
//	t, err := topic.New[tagsub.Listener](tagsub.StrategyTree)
//	if err != nil {
//		return err
//	}
//
//	t.Subscribe(tagsub.ListenerFunc(func(evt tagsub.Event) {
//		fmt.Println("eu order:", evt.Tags)
//	}), tagsub.NewFilter(nil).Where("region", "eu").Where("kind", "order"))
//
//	t.Accept(tagsub.NewEvent(map[string]string{"region": "eu", "kind": "order"}))
//
// Filter semantics:
//   - a filter matches an event iff every tag it names is present on the event with one of
//     the accepted values
//   - tags the filter does not name are unconstrained
//   - an empty filter matches every event
//
// Strategies are synchronous and not safe for concurrent use. Wrap them with
// topic.Synchronized when several goroutines share one instance.
package tagsub
