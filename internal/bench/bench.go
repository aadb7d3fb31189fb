// Package bench measures Accept latency of the matching strategies under the
// "all subscriptions match" and "no subscription matches" workloads.
package bench

import (
	"fmt"
	"testing"

	"github.com/rmacdonaldsmith/tagsub-go/internal/topic"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// Workload is one event replayed against a prepared topic.
type Workload struct {
	Name  string
	Event tagsub.Event
	// Matching is true if every subscription should receive the event
	Matching bool
}

// Workloads returns the standard workloads for topics built by Subscribe.
func Workloads() []Workload {
	return []Workload{
		{Name: "all-match", Event: tagsub.NewEvent(map[string]string{"hello": "world"}), Matching: true},
		{Name: "none-match", Event: tagsub.NewEvent(map[string]string{"hello": "garbage"}), Matching: false},
	}
}

// Result is the measurement of one workload against one strategy.
type Result struct {
	Strategy      tagsub.Strategy
	Workload      string
	Subscriptions int
	Iterations    int
	NsPerOp       int64
	AllocsPerOp   int64
	BytesPerOp    int64
	// Delivered and Expected count deliveries over the final measured run
	Delivered int64
	Expected  int64
}

// OK reports whether the strategy delivered exactly the expected events.
func (r Result) OK() bool {
	return r.Delivered == r.Expected
}

type counter struct {
	n *int64
}

func (c counter) Receive(tagsub.Event) {
	*c.n++
}

// Subscribe registers n counting listeners on {hello: world}.
func Subscribe(t tagsub.Topic[counter], n int, total *int64) {
	filter := tagsub.NewFilter(nil).Where("hello", "world")
	for i := 0; i < n; i++ {
		t.Subscribe(counter{total}, filter)
	}
}

// Run measures every workload against strategy with the given number of subscriptions.
func Run(strategy tagsub.Strategy, subscriptions int) ([]Result, error) {
	if subscriptions <= 0 {
		return nil, fmt.Errorf("subscriptions must be positive, got %d", subscriptions)
	}

	var total int64
	t, err := topic.New[counter](strategy)
	if err != nil {
		return nil, err
	}
	Subscribe(t, subscriptions, &total)

	results := make([]Result, 0, len(Workloads()))
	for _, w := range Workloads() {
		var lastN int
		var lastDelivered int64
		br := testing.Benchmark(func(b *testing.B) {
			b.ReportAllocs()
			start := total
			for i := 0; i < b.N; i++ {
				t.Accept(w.Event)
			}
			lastN = b.N
			lastDelivered = total - start
		})

		expected := int64(0)
		if w.Matching {
			expected = int64(subscriptions) * int64(lastN)
		}
		results = append(results, Result{
			Strategy:      strategy,
			Workload:      w.Name,
			Subscriptions: subscriptions,
			Iterations:    br.N,
			NsPerOp:       br.NsPerOp(),
			AllocsPerOp:   br.AllocsPerOp(),
			BytesPerOp:    br.AllocedBytesPerOp(),
			Delivered:     lastDelivered,
			Expected:      expected,
		})
	}
	return results, nil
}

// RunAll measures every strategy.
func RunAll(subscriptions int) ([]Result, error) {
	var all []Result
	for _, s := range []tagsub.Strategy{tagsub.StrategyLinear, tagsub.StrategyTree} {
		results, err := Run(s, subscriptions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		all = append(all, results...)
	}
	return all, nil
}
