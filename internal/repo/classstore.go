package repo

import (
	"sync"

	"mywbem/internal/cim"
)

// ClassStore holds the class declarations of one namespace and answers
// superclass-graph queries. Stored classes are shared pointers; callers
// copy before mutating or returning them.
type ClassStore struct {
	mu      sync.RWMutex
	classes *cim.NameMap[*cim.Class]
}

// NewClassStore creates an empty class store.
func NewClassStore() *ClassStore {
	return &ClassStore{classes: cim.NewNameMap[*cim.Class]()}
}

// Get looks up a class by name.
func (s *ClassStore) Get(name string) (*cim.Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.Get(name)
}

// Has reports whether a class exists.
func (s *ClassStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.Has(name)
}

// Set inserts or replaces a class.
func (s *ClassStore) Set(c *cim.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes.Set(c.Name, c)
}

// Delete removes a class, reporting whether it was present.
func (s *ClassStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.Del(name)
}

// Names returns all class names in insertion order.
func (s *ClassStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.Names()
}

// Len returns the number of classes.
func (s *ClassStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.Len()
}

// RootNames returns the names of classes without a superclass.
func (s *ClassStore) RootNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roots []string
	s.classes.Range(func(name string, c *cim.Class) bool {
		if c.SuperClass == "" {
			roots = append(roots, name)
		}
		return true
	})
	return roots
}

// SubclassNames returns the names of subclasses of the given class.
// With deep=false only direct children are returned.
func (s *ClassStore) SubclassNames(name string, deep bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subclassNames(name, deep)
}

func (s *ClassStore) subclassNames(name string, deep bool) []string {
	var subs []string
	s.classes.Range(func(sub string, c *cim.Class) bool {
		if c.SuperClass != "" && cim.Fold(c.SuperClass) == cim.Fold(name) {
			subs = append(subs, sub)
			if deep {
				subs = append(subs, s.subclassNames(sub, true)...)
			}
		}
		return true
	})
	return subs
}

// SuperclassNames returns the superclass chain of the given class, from
// direct parent to root.
func (s *ClassStore) SuperclassNames(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chain []string
	cur, ok := s.classes.Get(name)
	for ok && cur.SuperClass != "" {
		super, found := s.classes.Get(cur.SuperClass)
		if !found {
			break
		}
		chain = append(chain, super.Name)
		cur, ok = super, true
	}
	return chain
}

// IsSubclassOf reports whether name equals ancestor or derives from it.
func (s *ClassStore) IsSubclassOf(name, ancestor string) bool {
	if cim.Fold(name) == cim.Fold(ancestor) {
		return true
	}
	for _, super := range s.SuperclassNames(name) {
		if cim.Fold(super) == cim.Fold(ancestor) {
			return true
		}
	}
	return false
}
