package parse

// orderedMap keeps insertion order of its keys. Setting an existing key
// replaces the value in place.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]V)}
}

func (m *orderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m *orderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Each calls fn for every entry in insertion order.
func (m *orderedMap[K, V]) Each(fn func(K, V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}
