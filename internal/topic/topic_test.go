package topic

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/tagsub-go/internal/linearscan"
	"github.com/rmacdonaldsmith/tagsub-go/internal/treescanner"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

var strategies = []tagsub.Strategy{tagsub.StrategyLinear, tagsub.StrategyTree}

type counter struct {
	n *atomic.Int64
}

func (c counter) Receive(tagsub.Event) {
	c.n.Add(1)
}

func TestNew(t *testing.T) {
	linear, err := New[counter](tagsub.StrategyLinear)
	require.NoError(t, err)
	assert.IsType(t, &linearscan.LinearScan[counter]{}, linear)

	tree, err := New[counter](tagsub.StrategyTree)
	require.NoError(t, err)
	assert.IsType(t, &treescanner.TreeScanner[counter]{}, tree)

	_, err = New[counter](tagsub.Strategy(42))
	assert.ErrorIs(t, err, tagsub.ErrUnknownStrategy)
}

func TestCheckFilter(t *testing.T) {
	multi := tagsub.NewFilter(nil).Where("x", "a", "b")

	assert.NoError(t, CheckFilter(tagsub.StrategyLinear, multi))
	assert.ErrorIs(t, CheckFilter(tagsub.StrategyTree, multi), tagsub.ErrUnsupportedFilter)
	assert.ErrorIs(t, CheckFilter(tagsub.Strategy(42), multi), tagsub.ErrUnknownStrategy)
}

// Scenarios shared by every strategy
func TestScenarios(t *testing.T) {
	tests := []struct {
		name    string
		filters []tagsub.Filter
		event   tagsub.Event
		want    int64
	}{
		{
			name: "empty filter and matching filter",
			filters: []tagsub.Filter{
				tagsub.NewFilter(nil),
				tagsub.NewFilter(nil).Where("hello", "world"),
			},
			event: tagsub.NewEvent(map[string]string{"hello": "world"}),
			want:  2,
		},
		{
			name: "disjoint single-tag filters",
			filters: []tagsub.Filter{
				tagsub.NewFilter(nil).Where("a", "foo"),
				tagsub.NewFilter(nil).Where("b", "foo"),
			},
			event: tagsub.NewEvent(map[string]string{"a": "foo", "b": "foo"}),
			want:  2,
		},
		{
			name: "value mismatch",
			filters: []tagsub.Filter{
				tagsub.NewFilter(nil).Where("hello", "world"),
			},
			event: tagsub.NewEvent(map[string]string{"hello": "garbage"}),
			want:  0,
		},
		{
			name: "extra event tags",
			filters: []tagsub.Filter{
				tagsub.NewFilter(nil).Where("hello", "world"),
			},
			event: tagsub.NewEvent(map[string]string{"hello": "world", "region": "eu"}),
			want:  1,
		},
	}

	for _, strategy := range strategies {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s", strategy, tt.name), func(t *testing.T) {
				var n atomic.Int64
				topic, err := New[counter](strategy)
				require.NoError(t, err)

				for _, f := range tt.filters {
					topic.Subscribe(counter{&n}, f)
				}
				topic.Accept(tt.event)

				assert.Equal(t, tt.want, n.Load())
				assert.Equal(t, len(tt.filters), topic.Len())
			})
		}
	}
}

func TestSynchronized_ConcurrentAccess(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			inner, err := New[counter](strategy)
			require.NoError(t, err)
			topic := NewSynchronized(inner)

			var n atomic.Int64
			const numGoroutines = 10
			const numOps = 100
			filter := tagsub.NewFilter(nil).Where("hello", "world")
			evt := tagsub.NewEvent(map[string]string{"hello": "world"})

			var wg sync.WaitGroup
			for g := 0; g < numGoroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < numOps; i++ {
						topic.Subscribe(counter{&n}, filter)
						topic.Accept(evt)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, numGoroutines*numOps, topic.Len())

			// Every subscription is in place: one more event reaches all of them
			before := n.Load()
			topic.Receive(evt)
			assert.Equal(t, int64(numGoroutines*numOps), n.Load()-before)
		})
	}
}
