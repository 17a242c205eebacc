package repo

import (
	"strings"
	"sync"

	"mywbem/internal/cim"
)

// Repository is the top-level namespace index. Each namespace owns an
// independent class store, instance store and qualifier store; namespace
// creation and removal are the only operations that mutate the index.
type Repository struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace // folded normalized name
	order      []string
}

// Namespace bundles the three per-namespace stores.
type Namespace struct {
	Name       string
	Classes    *ClassStore
	Instances  *InstanceStore
	Qualifiers *QualifierStore
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{namespaces: make(map[string]*Namespace)}
}

// NormalizeNamespace strips surrounding slashes from a namespace name.
// Folding for comparison is separate (cim.Fold).
func NormalizeNamespace(name string) string {
	return strings.Trim(name, "/")
}

// AddNamespace creates a namespace with empty stores.
func (r *Repository) AddNamespace(name string) error {
	name = NormalizeNamespace(name)
	if name == "" {
		return cim.NewError(cim.StatusInvalidNamespace, "namespace name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cim.Fold(name)
	if _, ok := r.namespaces[key]; ok {
		return cim.NewError(cim.StatusAlreadyExists, "namespace %s already exists", name)
	}
	r.namespaces[key] = &Namespace{
		Name:       name,
		Classes:    NewClassStore(),
		Instances:  NewInstanceStore(),
		Qualifiers: NewQualifierStore(),
	}
	r.order = append(r.order, key)
	return nil
}

// RemoveNamespace deletes a namespace. The namespace must hold no
// instances and no classes other than system classes (names starting
// with "__").
func (r *Repository) RemoveNamespace(name string) error {
	name = NormalizeNamespace(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cim.Fold(name)
	ns, ok := r.namespaces[key]
	if !ok {
		return cim.NewError(cim.StatusNotFound, "namespace %s does not exist", name)
	}
	if ns.Instances.Len() > 0 {
		return cim.NewError(cim.StatusFailed, "namespace %s is not empty: it contains instances", name)
	}
	for _, cls := range ns.Classes.Names() {
		if !strings.HasPrefix(cls, "__") {
			return cim.NewError(cim.StatusFailed, "namespace %s is not empty: it contains class %s", name, cls)
		}
	}
	delete(r.namespaces, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// HasNamespace reports whether a namespace exists.
func (r *Repository) HasNamespace(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.namespaces[cim.Fold(NormalizeNamespace(name))]
	return ok
}

// Namespaces returns the namespace names in creation order.
func (r *Repository) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.namespaces[key].Name)
	}
	return names
}

// Namespace looks up a namespace.
func (r *Repository) Namespace(name string) (*Namespace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.namespaces[cim.Fold(NormalizeNamespace(name))]
	if !ok {
		return nil, cim.NewError(cim.StatusInvalidNamespace, "namespace %s does not exist", name)
	}
	return ns, nil
}

// ClassStore returns the class store of a namespace.
func (r *Repository) ClassStore(name string) (*ClassStore, error) {
	ns, err := r.Namespace(name)
	if err != nil {
		return nil, err
	}
	return ns.Classes, nil
}

// InstanceStore returns the instance store of a namespace.
func (r *Repository) InstanceStore(name string) (*InstanceStore, error) {
	ns, err := r.Namespace(name)
	if err != nil {
		return nil, err
	}
	return ns.Instances, nil
}

// QualifierStore returns the qualifier store of a namespace.
func (r *Repository) QualifierStore(name string) (*QualifierStore, error) {
	ns, err := r.Namespace(name)
	if err != nil {
		return nil, err
	}
	return ns.Qualifiers, nil
}

// interopCandidates are the namespace names recognized as the interop
// namespace, in preference order.
var interopCandidates = []string{"interop", "root/interop"}

// InteropNamespace returns the interop namespace if one exists.
func (r *Repository) InteropNamespace() (string, bool) {
	for _, cand := range interopCandidates {
		if r.HasNamespace(cand) {
			ns, _ := r.Namespace(cand)
			return ns.Name, true
		}
	}
	return "", false
}
