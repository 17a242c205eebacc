package repo

import (
	"sync"

	"mywbem/internal/cim"
)

// QualifierStore holds the qualifier declarations of one namespace.
type QualifierStore struct {
	mu    sync.RWMutex
	decls *cim.NameMap[*cim.QualifierDecl]
}

// NewQualifierStore creates an empty qualifier store.
func NewQualifierStore() *QualifierStore {
	return &QualifierStore{decls: cim.NewNameMap[*cim.QualifierDecl]()}
}

// Get looks up a declaration by name.
func (s *QualifierStore) Get(name string) (*cim.QualifierDecl, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decls.Get(name)
}

// Has reports whether a declaration exists.
func (s *QualifierStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decls.Has(name)
}

// Set inserts or replaces a declaration.
func (s *QualifierStore) Set(d *cim.QualifierDecl) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decls.Set(d.Name, d)
}

// Delete removes a declaration, reporting whether it was present.
func (s *QualifierStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decls.Del(name)
}

// List returns all declarations in insertion order.
func (s *QualifierStore) List() []*cim.QualifierDecl {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decls.Values()
}

// Len returns the number of declarations.
func (s *QualifierStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decls.Len()
}
