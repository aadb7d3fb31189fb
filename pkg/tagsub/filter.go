package tagsub

import (
	"maps"
	"slices"
)

// Filter describes a subscriber's interest as a conjunction of per-tag constraints.
// Each constrained tag maps to the set of values accepted for it.
type Filter struct {
	// Tags maps tag name to the accepted values for that tag
	Tags map[string][]string
}

// NewFilter creates a new Filter from the given constraints.
// Value sets are copied, sorted and de-duplicated.
func NewFilter(tags map[string][]string) Filter {
	f := Filter{Tags: make(map[string][]string, len(tags))}
	for k, vs := range tags {
		f.Tags[k] = normalize(vs)
	}
	return f
}

// Where returns a copy of the filter that additionally constrains key to values.
// Calling Where for a key that is already constrained replaces its value set.
func (f Filter) Where(key string, values ...string) Filter {
	out := f.Clone()
	out.Tags[key] = normalize(values)
	return out
}

// Keys returns the constrained tag names in sorted order.
func (f Filter) Keys() []string {
	return slices.Sorted(maps.Keys(f.Tags))
}

// Values returns the sorted, de-duplicated set of values accepted for key,
// and whether key is constrained at all.
func (f Filter) Values(key string) ([]string, bool) {
	vs, ok := f.Tags[key]
	if !ok {
		return nil, false
	}
	return normalize(vs), true
}

// Len returns the number of constrained tags.
func (f Filter) Len() int {
	return len(f.Tags)
}

// Matches reports whether evt carries every constrained tag with an accepted value.
func (f Filter) Matches(evt Event) bool {
	for tag, values := range f.Tags {
		v, ok := evt.Tags[tag]
		if !ok || !slices.Contains(values, v) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the Filter.
func (f Filter) Clone() Filter {
	out := Filter{Tags: make(map[string][]string, len(f.Tags))}
	for k, vs := range f.Tags {
		out.Tags[k] = slices.Clone(vs)
	}
	return out
}

func normalize(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
