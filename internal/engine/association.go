package engine

import (
	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

// AssocFilter carries the optional association traversal filters. Empty
// fields do not filter.
type AssocFilter struct {
	AssocClass  string
	ResultClass string
	Role        string
	ResultRole  string
}

// refMatch is one association instance found by the reference scan,
// with the property that matched the source recorded so associator
// traversal can skip it.
type refMatch struct {
	inst        *cim.Instance
	matchedProp string
}

// referenceMatches scans every stored instance for reference-typed
// properties whose value equals the source path (host-insensitive).
// assocClass filters the association instance's class, role the
// matching property's name.
func (e *Engine) referenceMatches(ns string, src *cim.InstanceName, assocClass, role string) ([]refMatch, error) {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, cim.NewError(cim.StatusInvalidParameter, "source instance path is required")
	}
	var cs *repo.ClassStore
	if !e.lite {
		cs, err = e.repo.ClassStore(ns)
		if err != nil {
			return nil, err
		}
		if assocClass != "" && !cs.Has(assocClass) {
			return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", assocClass)
		}
	}
	var matches []refMatch
	for _, inst := range is.List() {
		if assocClass != "" && !e.classInSet(cs, inst.ClassName, assocClass) {
			continue
		}
		inst.Properties.Range(func(name string, p *cim.Property) bool {
			if p.Value.Type != cim.TypeReference || p.Value.IsNull() {
				return true
			}
			if role != "" && cim.Fold(name) != cim.Fold(role) {
				return true
			}
			ref, ok := p.Value.Data.(*cim.InstanceName)
			if !ok || !ref.ModelEqual(src) {
				return true
			}
			matches = append(matches, refMatch{inst: inst, matchedProp: cim.Fold(name)})
			return false // one match per association instance
		})
	}
	return matches, nil
}

func (e *Engine) classInSet(cs *repo.ClassStore, className, ancestor string) bool {
	if cs == nil {
		return cim.Fold(className) == cim.Fold(ancestor)
	}
	return cs.IsSubclassOf(className, ancestor)
}

// ReferenceNames returns the paths of the association instances that
// refer to the source.
func (e *Engine) ReferenceNames(ns string, src *cim.InstanceName, resultClass, role string) ([]*cim.InstanceName, error) {
	matches, err := e.referenceMatches(ns, src, resultClass, role)
	if err != nil {
		return nil, err
	}
	out := make([]*cim.InstanceName, 0, len(matches))
	for _, m := range matches {
		path := m.inst.Path.Copy()
		path.Namespace = ns
		out = append(out, path)
	}
	return out, nil
}

// References returns the association instances that refer to the
// source, filtered per the options.
func (e *Engine) References(ns string, src *cim.InstanceName, resultClass, role string, opts InstanceOptions) ([]*cim.Instance, error) {
	matches, err := e.referenceMatches(ns, src, resultClass, role)
	if err != nil {
		return nil, err
	}
	out := make([]*cim.Instance, 0, len(matches))
	for _, m := range matches {
		out = append(out, filterInstance(m.inst, ns, opts))
	}
	return out, nil
}

// AssociatorNames traverses the association instances that refer to the
// source and returns the paths found on their other reference
// properties, deduplicated by model path.
func (e *Engine) AssociatorNames(ns string, src *cim.InstanceName, f AssocFilter) ([]*cim.InstanceName, error) {
	matches, err := e.referenceMatches(ns, src, f.AssocClass, f.Role)
	if err != nil {
		return nil, err
	}
	var cs *repo.ClassStore
	if !e.lite {
		cs, err = e.repo.ClassStore(ns)
		if err != nil {
			return nil, err
		}
		if f.ResultClass != "" && !cs.Has(f.ResultClass) {
			return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", f.ResultClass)
		}
	}
	seen := make(map[string]bool)
	var out []*cim.InstanceName
	for _, m := range matches {
		m.inst.Properties.Range(func(name string, p *cim.Property) bool {
			if p.Value.Type != cim.TypeReference || p.Value.IsNull() {
				return true
			}
			if cim.Fold(name) == m.matchedProp {
				return true
			}
			if f.ResultRole != "" && cim.Fold(name) != cim.Fold(f.ResultRole) {
				return true
			}
			ref, ok := p.Value.Data.(*cim.InstanceName)
			if !ok {
				return true
			}
			if f.ResultClass != "" && !e.classInSet(cs, ref.ClassName, f.ResultClass) {
				return true
			}
			key := ref.ModelKey()
			if seen[key] {
				return true
			}
			seen[key] = true
			target := ref.Copy()
			if target.Namespace == "" {
				target.Namespace = ns
			}
			out = append(out, target)
			return true
		})
	}
	return out, nil
}

// Associators returns the full instances at the paths AssociatorNames
// yields, filtered per the options. Paths that resolve to no stored
// instance are skipped, matching the loose coupling of the reference
// graph.
func (e *Engine) Associators(ns string, src *cim.InstanceName, f AssocFilter, opts InstanceOptions) ([]*cim.Instance, error) {
	paths, err := e.AssociatorNames(ns, src, f)
	if err != nil {
		return nil, err
	}
	var out []*cim.Instance
	for _, path := range paths {
		inst, err := e.GetInstance(ns, path, opts)
		if err != nil {
			if cim.IsStatus(err, cim.StatusNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// ClassReferenceNames answers the class-level reference query: the
// association classes declaring a reference property that can hold the
// source class or one of its ancestors.
func (e *Engine) ClassReferenceNames(ns, className, resultClass, role string) ([]string, error) {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	if !cs.Has(className) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", className)
	}
	if resultClass != "" && !cs.Has(resultClass) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", resultClass)
	}
	var out []string
	for _, candidate := range cs.Names() {
		resolved, err := resolveClass(cs, candidate)
		if err != nil {
			continue
		}
		if !resolved.IsAssociation() {
			continue
		}
		if resultClass != "" && !cs.IsSubclassOf(candidate, resultClass) {
			continue
		}
		if _, ok := matchingReference(cs, resolved, className, role); ok {
			out = append(out, resolved.Name)
		}
	}
	return out, nil
}

// ClassAssociatorNames answers the class-level associator query: the
// classes reachable from the source class over association-class
// reference properties.
func (e *Engine) ClassAssociatorNames(ns, className string, f AssocFilter) ([]string, error) {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	if !cs.Has(className) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", className)
	}
	if f.ResultClass != "" && !cs.Has(f.ResultClass) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", f.ResultClass)
	}
	seen := make(map[string]bool)
	var out []string
	for _, candidate := range cs.Names() {
		resolved, err := resolveClass(cs, candidate)
		if err != nil {
			continue
		}
		if !resolved.IsAssociation() {
			continue
		}
		if f.AssocClass != "" && !cs.IsSubclassOf(candidate, f.AssocClass) {
			continue
		}
		matched, ok := matchingReference(cs, resolved, className, f.Role)
		if !ok {
			continue
		}
		for _, ref := range resolved.ReferenceProperties() {
			if cim.Fold(ref.Name) == cim.Fold(matched) {
				continue
			}
			if f.ResultRole != "" && cim.Fold(ref.Name) != cim.Fold(f.ResultRole) {
				continue
			}
			target := ref.ReferenceClass
			if target == "" {
				continue
			}
			if f.ResultClass != "" && !cs.IsSubclassOf(target, f.ResultClass) {
				continue
			}
			if key := cim.Fold(target); !seen[key] {
				seen[key] = true
				out = append(out, target)
			}
		}
	}
	return out, nil
}

// matchingReference finds a reference property of an association class
// whose declared reference class is the source class or an ancestor of
// it, honoring the role filter.
func matchingReference(cs *repo.ClassStore, assoc *cim.Class, className, role string) (string, bool) {
	for _, ref := range assoc.ReferenceProperties() {
		if role != "" && cim.Fold(ref.Name) != cim.Fold(role) {
			continue
		}
		if ref.ReferenceClass == "" {
			continue
		}
		if cs.IsSubclassOf(className, ref.ReferenceClass) {
			return ref.Name, true
		}
	}
	return "", false
}
