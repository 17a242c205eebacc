package cim

import "strings"

// Fold normalizes a CIM element name for comparison.
// Class, property, method, qualifier and namespace names are all
// case-insensitive in CIM, so every lookup in the engine goes through
// this single folding rule.
func Fold(name string) string {
	return strings.ToLower(name)
}

// NameMap is an insertion-ordered map keyed by case-insensitive CIM names.
// The original spelling of the first insertion is preserved.
type NameMap[T any] struct {
	order []string // folded keys, insertion order
	orig  map[string]string
	vals  map[string]T
}

// NewNameMap creates an empty NameMap.
func NewNameMap[T any]() *NameMap[T] {
	return &NameMap[T]{
		orig: make(map[string]string),
		vals: make(map[string]T),
	}
}

// Len returns the number of entries.
func (m *NameMap[T]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Get looks up a value by name.
func (m *NameMap[T]) Get(name string) (T, bool) {
	if m == nil {
		var zero T
		return zero, false
	}
	v, ok := m.vals[Fold(name)]
	return v, ok
}

// Has reports whether a name is present.
func (m *NameMap[T]) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set inserts or replaces a value. The spelling of the first insertion wins.
func (m *NameMap[T]) Set(name string, v T) {
	key := Fold(name)
	if _, ok := m.vals[key]; !ok {
		m.order = append(m.order, key)
		m.orig[key] = name
	}
	m.vals[key] = v
}

// Del removes an entry, reporting whether it was present.
func (m *NameMap[T]) Del(name string) bool {
	key := Fold(name)
	if _, ok := m.vals[key]; !ok {
		return false
	}
	delete(m.vals, key)
	delete(m.orig, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the original-case names in insertion order.
func (m *NameMap[T]) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.order))
	for _, k := range m.order {
		names = append(names, m.orig[k])
	}
	return names
}

// Values returns the values in insertion order.
func (m *NameMap[T]) Values() []T {
	if m == nil {
		return nil
	}
	vals := make([]T, 0, len(m.order))
	for _, k := range m.order {
		vals = append(vals, m.vals[k])
	}
	return vals
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *NameMap[T]) Range(fn func(name string, v T) bool) {
	if m == nil {
		return
	}
	for _, k := range m.order {
		if !fn(m.orig[k], m.vals[k]) {
			return
		}
	}
}

// Copy returns a new map with every value passed through clone.
// A nil clone copies values as-is.
func (m *NameMap[T]) Copy(clone func(T) T) *NameMap[T] {
	out := NewNameMap[T]()
	if m == nil {
		return out
	}
	for _, k := range m.order {
		v := m.vals[k]
		if clone != nil {
			v = clone(v)
		}
		out.Set(m.orig[k], v)
	}
	return out
}
