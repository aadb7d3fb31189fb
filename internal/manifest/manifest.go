// Package manifest loads named subscriptions from YAML documents.
//
// A manifest looks like:
//
//	subscriptions:
//	  - name: eu-orders
//	    filter:
//	      region: [eu]
//	      kind: [order]
//	  - name: everything
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rmacdonaldsmith/tagsub-go/internal/topic"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

var (
	// ErrEmptyName is returned when a subscription has no name
	ErrEmptyName = errors.New("subscription name cannot be empty")
	// ErrDuplicateName is returned when two subscriptions share a name
	ErrDuplicateName = errors.New("duplicate subscription name")
)

// Subscription is one named filter.
type Subscription struct {
	Name string              `yaml:"name"`
	Tags map[string][]string `yaml:"filter"`
}

// Filter returns the subscription's filter.
func (s Subscription) Filter() tagsub.Filter {
	return tagsub.NewFilter(s.Tags)
}

// Manifest is an ordered list of subscriptions. Order is preserved because it decides
// how a TreeScanner's pipeline grows.
type Manifest struct {
	Subscriptions []Subscription `yaml:"subscriptions"`
}

// Load decodes a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// LoadFile decodes the manifest stored at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks that names are present and unique and that every filter can be
// subscribed to a topic of the given strategy.
func (m *Manifest) Validate(strategy tagsub.Strategy) error {
	seen := make(map[string]struct{}, len(m.Subscriptions))
	for i, sub := range m.Subscriptions {
		if sub.Name == "" {
			return fmt.Errorf("subscription %d: %w", i, ErrEmptyName)
		}
		if _, ok := seen[sub.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, sub.Name)
		}
		seen[sub.Name] = struct{}{}

		if err := topic.CheckFilter(strategy, sub.Filter()); err != nil {
			return fmt.Errorf("subscription %q: %w", sub.Name, err)
		}
	}
	return nil
}

// Apply subscribes one listener per manifest entry, in manifest order.
// newListener is called with each subscription's name.
func Apply[L tagsub.Listener](m *Manifest, t tagsub.Topic[L], newListener func(name string) L) {
	for _, sub := range m.Subscriptions {
		t.Subscribe(newListener(sub.Name), sub.Filter())
	}
}
