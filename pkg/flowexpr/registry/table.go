package registry

// Table is an immutable map from key to value. The zero value is an empty
// table. All methods are safe for concurrent use without locking because
// nothing mutates a Table after construction.
type Table[K comparable, V any] struct {
	entries map[K]V
}

// NewTable builds a table holding a copy of entries.
func NewTable[K comparable, V any](entries map[K]V) *Table[K, V] {
	return newTable(entries)
}

func newTable[K comparable, V any](entries map[K]V) *Table[K, V] {
	copied := make(map[K]V, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Table[K, V]{entries: copied}
}

// Get returns the value for a key and whether it exists.
func (t *Table[K, V]) Get(key K) (V, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Has returns true if the key exists in the table.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.entries[key]
	return ok
}

// Keys returns all keys in the table.
// The order is not guaranteed.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries in the table.
func (t *Table[K, V]) Len() int {
	return len(t.entries)
}

// Range calls fn for each entry until fn returns false.
func (t *Table[K, V]) Range(fn func(K, V) bool) {
	for k, v := range t.entries {
		if !fn(k, v) {
			return
		}
	}
}

// With returns a new table that also maps key to value. The receiver is
// left untouched.
func (t *Table[K, V]) With(key K, value V) *Table[K, V] {
	next := newTable(t.entries)
	next.entries[key] = value
	return next
}

// Without returns a new table lacking key. The receiver is left untouched.
func (t *Table[K, V]) Without(key K) *Table[K, V] {
	next := newTable(t.entries)
	delete(next.entries, key)
	return next
}
