package tagsub

import (
	"maps"
)

// Event represents one published message, described entirely by its tags.
type Event struct {
	// Tags maps tag name to a single tag value (immutable after creation)
	Tags map[string]string
}

// NewEvent creates a new Event with the given tags.
// The tags are copied to ensure immutability.
func NewEvent(tags map[string]string) Event {
	tagsCopy := make(map[string]string, len(tags))
	maps.Copy(tagsCopy, tags)
	return Event{Tags: tagsCopy}
}

// Get returns the value of the named tag and whether the event carries it.
func (e Event) Get(key string) (string, bool) {
	v, ok := e.Tags[key]
	return v, ok
}

// Clone returns a deep copy of the Event.
func (e Event) Clone() Event {
	return NewEvent(e.Tags)
}

// Equal reports whether both events carry exactly the same tags.
func (e Event) Equal(other Event) bool {
	return maps.Equal(e.Tags, other.Tags)
}
