package compiler

// orderedMap is a map that remembers insertion order.
type orderedMap[K comparable, V any] struct {
	keys []K
	m    map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{m: make(map[K]V)}
}

// putIfAbsent stores v under k unless k is already present.
// Reports whether v was stored.
func (o *orderedMap[K, V]) putIfAbsent(k K, v V) bool {
	if _, ok := o.m[k]; ok {
		return false
	}
	o.keys = append(o.keys, k)
	o.m[k] = v
	return true
}

func (o *orderedMap[K, V]) get(k K) (V, bool) {
	v, ok := o.m[k]
	return v, ok
}

func (o *orderedMap[K, V]) set(k K, v V) {
	if _, ok := o.m[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.m[k] = v
}

func (o *orderedMap[K, V]) values() []V {
	out := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.m[k])
	}
	return out
}

type orderedSet[T comparable] struct {
	m *orderedMap[T, struct{}]
}

func newOrderedSet[T comparable]() orderedSet[T] {
	return orderedSet[T]{m: newOrderedMap[T, struct{}]()}
}

func (s orderedSet[T]) add(items ...T) {
	for _, it := range items {
		s.m.putIfAbsent(it, struct{}{})
	}
}

func (s orderedSet[T]) items() []T {
	out := make([]T, len(s.m.keys))
	copy(out, s.m.keys)
	return out
}
