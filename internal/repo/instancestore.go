package repo

import (
	"sync"

	"mywbem/internal/cim"
)

// InstanceStore holds the instances of one namespace, keyed by model
// path (class name plus key bindings, namespace- and host-agnostic).
type InstanceStore struct {
	mu    sync.RWMutex
	byKey map[string]*cim.Instance
	order []string
}

// NewInstanceStore creates an empty instance store.
func NewInstanceStore() *InstanceStore {
	return &InstanceStore{byKey: make(map[string]*cim.Instance)}
}

// Get looks up an instance by model path.
func (s *InstanceStore) Get(path *cim.InstanceName) (*cim.Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.byKey[path.ModelKey()]
	return inst, ok
}

// Has reports whether an instance with the given model path exists.
func (s *InstanceStore) Has(path *cim.InstanceName) bool {
	_, ok := s.Get(path)
	return ok
}

// Add stores an instance under its path. It reports false if an
// instance with the same model path is already present.
func (s *InstanceStore) Add(inst *cim.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := inst.Path.ModelKey()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = inst
	s.order = append(s.order, key)
	return true
}

// Replace swaps the stored instance with the same model path.
func (s *InstanceStore) Replace(inst *cim.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := inst.Path.ModelKey()
	if _, ok := s.byKey[key]; !ok {
		return false
	}
	s.byKey[key] = inst
	return true
}

// Remove deletes an instance by model path, reporting whether it was
// present.
func (s *InstanceStore) Remove(path *cim.InstanceName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := path.ModelKey()
	if _, ok := s.byKey[key]; !ok {
		return false
	}
	delete(s.byKey, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored instances.
func (s *InstanceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// List returns all instances in insertion order.
func (s *InstanceStore) List() []*cim.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*cim.Instance, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// ListClasses returns the instances whose class name is in the given
// folded-name set, in insertion order.
func (s *InstanceStore) ListClasses(folded map[string]bool) []*cim.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*cim.Instance
	for _, key := range s.order {
		inst := s.byKey[key]
		if folded[cim.Fold(inst.ClassName)] {
			out = append(out, inst)
		}
	}
	return out
}

// HasClass reports whether any stored instance belongs to one of the
// classes in the folded-name set.
func (s *InstanceStore) HasClass(folded map[string]bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.byKey {
		if folded[cim.Fold(inst.ClassName)] {
			return true
		}
	}
	return false
}
