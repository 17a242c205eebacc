package provider

import (
	"sort"
	"sync"

	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

// Registry maps (namespace, class, kind) to a provider. Registration
// never silently replaces an existing provider; providers are read-only
// after registration and shared across all matching operations.
type Registry struct {
	repo *repo.Repository

	mu sync.RWMutex
	m  map[string]map[string]map[Kind]Provider // folded ns -> folded class -> kind
}

// NewRegistry creates an empty registry over a repository. The
// repository is consulted to validate registration targets.
func NewRegistry(r *repo.Repository) *Registry {
	return &Registry{repo: r, m: make(map[string]map[string]map[Kind]Provider)}
}

// Register inserts a provider for its declared classes in the given
// namespaces, under every capability kind it implements. The whole
// registration is rejected if any (namespace, class, kind) slot is
// already taken.
func (r *Registry) Register(p Provider, namespaces ...string) error {
	classes := p.Classes()
	if len(classes) == 0 {
		return cim.NewError(cim.StatusInvalidParameter, "provider %s declares no classes", nameOf(p))
	}
	kinds := kindsOf(p)
	if len(kinds) == 0 {
		return cim.NewError(cim.StatusInvalidParameter,
			"provider %s implements no provider capability", nameOf(p))
	}
	if len(namespaces) == 0 {
		return cim.NewError(cim.StatusInvalidParameter, "no namespaces given for provider %s", nameOf(p))
	}
	for _, ns := range namespaces {
		cs, err := r.repo.ClassStore(ns)
		if err != nil {
			return err
		}
		for _, cls := range classes {
			if !cs.Has(cls) {
				return cim.NewError(cim.StatusInvalidClass,
					"provider %s serves class %s, which does not exist in namespace %s", nameOf(p), cls, ns)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// conflict check first so a rejected registration changes nothing
	for _, ns := range namespaces {
		for _, cls := range classes {
			for _, kind := range kinds {
				if _, ok := r.lookupLocked(ns, cls, kind); ok {
					return cim.NewError(cim.StatusAlreadyExists,
						"a %s provider is already registered for class %s in namespace %s", kind, cls, ns)
				}
			}
		}
	}
	for _, ns := range namespaces {
		nsKey := cim.Fold(repo.NormalizeNamespace(ns))
		byClass, ok := r.m[nsKey]
		if !ok {
			byClass = make(map[string]map[Kind]Provider)
			r.m[nsKey] = byClass
		}
		for _, cls := range classes {
			clsKey := cim.Fold(cls)
			byKind, ok := byClass[clsKey]
			if !ok {
				byKind = make(map[Kind]Provider)
				byClass[clsKey] = byKind
			}
			for _, kind := range kinds {
				byKind[kind] = p
			}
		}
	}
	return nil
}

// Lookup finds the provider registered for (namespace, class, kind).
func (r *Registry) Lookup(ns, class string, kind Kind) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(ns, class, kind)
}

func (r *Registry) lookupLocked(ns, class string, kind Kind) (Provider, bool) {
	byClass, ok := r.m[cim.Fold(repo.NormalizeNamespace(ns))]
	if !ok {
		return nil, false
	}
	byKind, ok := byClass[cim.Fold(class)]
	if !ok {
		return nil, false
	}
	p, ok := byKind[kind]
	return p, ok
}

// Entry is one registry slot, with the provider reduced to its
// identity. Entries define registry equality and serialization.
type Entry struct {
	Namespace string `json:"namespace"`
	Class     string `json:"class"`
	Kind      Kind   `json:"kind"`
	Provider  string `json:"provider"`
}

// Entries returns a sorted identity snapshot of the registry.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for ns, byClass := range r.m {
		for cls, byKind := range byClass {
			for kind, p := range byKind {
				out = append(out, Entry{Namespace: ns, Class: cls, Kind: kind, Provider: nameOf(p)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Kind < b.Kind
	})
	return out
}

// Equal reports whether two registries hold the same
// (namespace, class, kind) to provider-identity mapping.
func (r *Registry) Equal(o *Registry) bool {
	a, b := r.Entries(), o.Entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Restore re-registers providers from an identity snapshot. The factory
// maps provider identities to provider values; a missing identity fails
// the restore.
func (r *Registry) Restore(entries []Entry, factory map[string]Provider) error {
	registered := make(map[string]bool)
	for _, e := range entries {
		p, ok := factory[e.Provider]
		if !ok {
			return cim.NewError(cim.StatusFailed,
				"no provider factory for identity %s", e.Provider)
		}
		// one Register call covers every slot the provider fills
		key := e.Provider + "\x00" + e.Namespace
		if registered[key] {
			continue
		}
		registered[key] = true
		if err := r.Register(p, e.Namespace); err != nil {
			return err
		}
	}
	return nil
}
