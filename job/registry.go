package job

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Option is one stored directive value: a name and its typed value.
type Option struct {
	Name  string
	Value any
}

// Registry is an ordered mapping from directive name to validated value.
// Presence means "emit this directive"; absence means "omit". Insertion order
// is preserved and determines render order; updating an existing entry keeps
// its position.
type Registry struct {
	entries *orderedmap.OrderedMap[string, any]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: orderedmap.New[string, any]()}
}

// Set validates value with the given rules and stores it under name.
//
// A nil value, or boolean false, removes the entry instead and reports
// false. The first failing rule aborts with a ValidationError attributed to
// setter, leaving the registry untouched. On success the value is stored
// (keeping the insertion position of an existing entry) and Set reports true.
func (r *Registry) Set(setter, name string, value any, rules ...Rule) (bool, error) {
	if value == nil {
		r.entries.Delete(name)
		return false, nil
	}
	if b, ok := value.(bool); ok && !b {
		r.entries.Delete(name)
		return false, nil
	}
	for _, rule := range rules {
		if !rule.Check(value) {
			return false, &ValidationError{Setter: setter, Message: rule.Message}
		}
	}
	r.entries.Set(name, value)
	return true, nil
}

// SetFrom pops key from an externally supplied keyword map and stores it
// under name via Set. An absent key is a no-op reporting false. The key is
// removed from kwargs even when validation fails, so a caller can report
// leftover keys after a batch without re-counting rejected ones.
func (r *Registry) SetFrom(setter string, kwargs map[string]any, key, name string, rules ...Rule) (bool, error) {
	value, ok := kwargs[key]
	if !ok {
		return false, nil
	}
	delete(kwargs, key)
	return r.Set(setter, name, value, rules...)
}

// Get returns the stored value for name.
func (r *Registry) Get(name string) (any, bool) {
	return r.entries.Get(name)
}

// Has reports whether name is present.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries.Get(name)
	return ok
}

// Delete removes name, reporting whether it was present.
func (r *Registry) Delete(name string) bool {
	_, present := r.entries.Delete(name)
	return present
}

// Len returns the number of stored options.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// Options returns a snapshot of all entries in insertion order.
func (r *Registry) Options() []Option {
	opts := make([]Option, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		opts = append(opts, Option{Name: pair.Key, Value: pair.Value})
	}
	return opts
}
