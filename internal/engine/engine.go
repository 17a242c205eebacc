// Package engine implements the built-in WBEM operation engines over the
// in-memory repository: class resolution, instance CRUD, association
// traversal and the open/pull/close enumeration protocol.
package engine

import (
	"sort"

	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

// Engine executes the built-in store-backed operations. In lite mode the
// instance store has no backing schema: type and key validation are
// skipped and enumeration matches exact class names only.
type Engine struct {
	repo *repo.Repository
	lite bool
}

// New creates an engine with full schema validation.
func New(r *repo.Repository) *Engine {
	return &Engine{repo: r}
}

// NewLite creates an engine that skips schema validation.
func NewLite(r *repo.Repository) *Engine {
	return &Engine{repo: r, lite: true}
}

// Repository returns the backing repository.
func (e *Engine) Repository() *repo.Repository {
	return e.repo
}

// ClassOptions control the resolved view produced by GetClass and
// EnumerateClasses.
type ClassOptions struct {
	LocalOnly          bool
	IncludeQualifiers  bool
	IncludeClassOrigin bool
	// PropertyList filters the final property set: nil keeps all
	// properties, an empty non-nil list keeps none.
	PropertyList []string
}

// InstanceOptions control the view produced by instance read operations.
type InstanceOptions struct {
	LocalOnly          bool
	IncludeQualifiers  bool
	IncludeClassOrigin bool
	PropertyList       []string
}

// propertySet folds a property list into a lookup set. The second
// result distinguishes nil (no filtering) from an empty list.
func propertySet(list []string) (map[string]bool, bool) {
	if list == nil {
		return nil, false
	}
	set := make(map[string]bool, len(list))
	for _, name := range list {
		set[cim.Fold(name)] = true
	}
	return set, true
}

// BuildInstance constructs a typed instance of the named class from
// loosely-typed property values, coercing each value to the type the
// resolved class declares. Used by the protocol facade and the schema
// loader.
func (e *Engine) BuildInstance(ns, className string, props map[string]any) (*cim.Instance, error) {
	cls, err := e.GetClass(ns, className, ClassOptions{IncludeQualifiers: true})
	if err != nil {
		return nil, err
	}
	inst := cim.NewInstance(cls.Name)
	for _, name := range sortedKeys(props) {
		cp, ok := cls.Property(name)
		if !ok {
			return nil, cim.NewError(cim.StatusInvalidParameter,
				"property %s is not declared in class %s", name, cls.Name)
		}
		v, err := cim.Coerce(cp.Value.Type, cp.Value.Array, props[name])
		if err != nil {
			return nil, cim.NewError(cim.StatusInvalidParameter,
				"property %s: %v", name, err)
		}
		inst.SetProperty(cp.Name, v)
	}
	return inst, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// map iteration order is random; a stable order keeps error
	// messages deterministic
	sort.Strings(keys)
	return keys
}
