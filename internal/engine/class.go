package engine

import (
	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

// GetClass returns the filtered, resolved view of a class: local members
// merged with every ancestor's members, then reduced per the options.
func (e *Engine) GetClass(ns, name string, opts ClassOptions) (*cim.Class, error) {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveClass(cs, name)
	if err != nil {
		return nil, err
	}
	return applyClassOptions(resolved, opts), nil
}

// resolveClass walks the superclass chain from the stored class to the
// root, accumulating members not already present. Subclass members win
// on name collision; inherited members are stamped propagated with the
// class_origin of their most ancestral declarer.
func resolveClass(cs *repo.ClassStore, name string) (*cim.Class, error) {
	stored, ok := cs.Get(name)
	if !ok {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", name)
	}
	out := stored.Copy()
	out.Properties.Range(func(_ string, p *cim.Property) bool {
		if p.ClassOrigin == "" {
			p.ClassOrigin = stored.Name
		}
		return true
	})
	out.Methods.Range(func(_ string, m *cim.Method) bool {
		if m.ClassOrigin == "" {
			m.ClassOrigin = stored.Name
		}
		return true
	})
	for _, superName := range cs.SuperclassNames(name) {
		super, ok := cs.Get(superName)
		if !ok {
			break
		}
		super.Properties.Range(func(pn string, p *cim.Property) bool {
			if have, ok := out.Properties.Get(pn); ok {
				// an ancestor redeclares the member: the origin of a
				// propagated member tracks the most ancestral declarer,
				// a local override keeps its own class as origin
				if have.Propagated {
					have.ClassOrigin = super.Name
				}
				return true
			}
			cp := p.Copy()
			cp.Propagated = true
			cp.ClassOrigin = super.Name
			cp.Qualifiers.Range(func(_ string, q *cim.Qualifier) bool {
				q.Propagated = true
				return true
			})
			out.Properties.Set(pn, cp)
			return true
		})
		super.Methods.Range(func(mn string, m *cim.Method) bool {
			if have, ok := out.Methods.Get(mn); ok {
				if have.Propagated {
					have.ClassOrigin = super.Name
				}
				return true
			}
			cm := m.Copy()
			cm.Propagated = true
			cm.ClassOrigin = super.Name
			cm.Qualifiers.Range(func(_ string, q *cim.Qualifier) bool {
				q.Propagated = true
				return true
			})
			out.Methods.Set(mn, cm)
			return true
		})
		super.Qualifiers.Range(func(qn string, q *cim.Qualifier) bool {
			if !q.ToSubclass || out.Qualifiers.Has(qn) {
				return true
			}
			cq := q.Copy()
			cq.Propagated = true
			out.Qualifiers.Set(qn, cq)
			return true
		})
	}
	return out, nil
}

// applyClassOptions reduces a resolved class per the request options.
// LocalOnly filters after accumulation so overrides resolve first; a
// member survives LocalOnly iff it is not propagated, which after
// resolution is the same as its class_origin being the requested class.
func applyClassOptions(c *cim.Class, opts ClassOptions) *cim.Class {
	if opts.LocalOnly {
		for _, pn := range c.Properties.Names() {
			p, _ := c.Properties.Get(pn)
			if p.Propagated {
				c.Properties.Del(pn)
			}
		}
		for _, mn := range c.Methods.Names() {
			m, _ := c.Methods.Get(mn)
			if m.Propagated {
				c.Methods.Del(mn)
			}
		}
	}
	if set, filter := propertySet(opts.PropertyList); filter {
		for _, pn := range c.Properties.Names() {
			if !set[cim.Fold(pn)] {
				c.Properties.Del(pn)
			}
		}
	}
	if !opts.IncludeQualifiers {
		c.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
		c.Properties.Range(func(_ string, p *cim.Property) bool {
			p.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
			return true
		})
		c.Methods.Range(func(_ string, m *cim.Method) bool {
			m.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
			m.Parameters.Range(func(_ string, p *cim.Parameter) bool {
				p.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
				return true
			})
			return true
		})
	}
	if !opts.IncludeClassOrigin {
		c.Properties.Range(func(_ string, p *cim.Property) bool {
			p.ClassOrigin = ""
			return true
		})
		c.Methods.Range(func(_ string, m *cim.Method) bool {
			m.ClassOrigin = ""
			return true
		})
	}
	return c
}

// CreateClass stores a new class after validating its superclass and
// qualifier attachments.
func (e *Engine) CreateClass(ns string, c *cim.Class) error {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return err
	}
	if c.Name == "" {
		return cim.NewError(cim.StatusInvalidParameter, "class has no name")
	}
	if cs.Has(c.Name) {
		return cim.NewError(cim.StatusAlreadyExists, "class %s already exists in namespace %s", c.Name, ns)
	}
	if c.SuperClass != "" && !cs.Has(c.SuperClass) {
		return cim.NewError(cim.StatusInvalidParameter,
			"superclass %s of class %s does not exist in namespace %s", c.SuperClass, c.Name, ns)
	}
	if err := e.validateClassQualifiers(ns, c); err != nil {
		return err
	}
	stored := c.Copy()
	stored.Properties.Range(func(_ string, p *cim.Property) bool {
		if p.ClassOrigin == "" {
			p.ClassOrigin = stored.Name
		}
		return true
	})
	stored.Methods.Range(func(_ string, m *cim.Method) bool {
		if m.ClassOrigin == "" {
			m.ClassOrigin = stored.Name
		}
		return true
	})
	cs.Set(stored)
	return nil
}

// ModifyClass replaces an existing class declaration. The superclass
// cannot change.
func (e *Engine) ModifyClass(ns string, c *cim.Class) error {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return err
	}
	stored, ok := cs.Get(c.Name)
	if !ok {
		return cim.NewError(cim.StatusNotFound, "class %s does not exist in namespace %s", c.Name, ns)
	}
	if cim.Fold(stored.SuperClass) != cim.Fold(c.SuperClass) {
		return cim.NewError(cim.StatusInvalidParameter,
			"cannot change superclass of %s from %q to %q", c.Name, stored.SuperClass, c.SuperClass)
	}
	if err := e.validateClassQualifiers(ns, c); err != nil {
		return err
	}
	cs.Set(c.Copy())
	return nil
}

// DeleteClass removes a class that has no subclasses and no instances.
func (e *Engine) DeleteClass(ns, name string) error {
	nsp, err := e.repo.Namespace(ns)
	if err != nil {
		return err
	}
	if !nsp.Classes.Has(name) {
		return cim.NewError(cim.StatusNotFound, "class %s does not exist in namespace %s", name, ns)
	}
	if subs := nsp.Classes.SubclassNames(name, false); len(subs) > 0 {
		return cim.NewError(cim.StatusFailed, "class %s has subclasses", name)
	}
	folded := map[string]bool{cim.Fold(name): true}
	if nsp.Instances.HasClass(folded) {
		return cim.NewError(cim.StatusFailed, "class %s has instances", name)
	}
	nsp.Classes.Delete(name)
	return nil
}

// SubclassNames returns the subclass names of a class, or of the root
// classes when name is empty.
func (e *Engine) SubclassNames(ns, name string, deep bool) ([]string, error) {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	if name == "" {
		roots := cs.RootNames()
		if !deep {
			return roots, nil
		}
		all := append([]string(nil), roots...)
		for _, root := range roots {
			all = append(all, cs.SubclassNames(root, true)...)
		}
		return all, nil
	}
	if !cs.Has(name) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", name)
	}
	return cs.SubclassNames(name, deep), nil
}

// SuperclassNames returns the superclass chain of a class, parent first.
func (e *Engine) SuperclassNames(ns, name string) ([]string, error) {
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	if !cs.Has(name) {
		return nil, cim.NewError(cim.StatusInvalidClass, "class %s does not exist", name)
	}
	return cs.SuperclassNames(name), nil
}

// EnumerateClassNames lists class names: the root classes when name is
// empty, otherwise the subclasses of name.
func (e *Engine) EnumerateClassNames(ns, name string, deep bool) ([]string, error) {
	return e.SubclassNames(ns, name, deep)
}

// EnumerateClasses lists classes with the same selection rule as
// EnumerateClassNames, each filtered per the options.
func (e *Engine) EnumerateClasses(ns, name string, deep bool, opts ClassOptions) ([]*cim.Class, error) {
	names, err := e.SubclassNames(ns, name, deep)
	if err != nil {
		return nil, err
	}
	out := make([]*cim.Class, 0, len(names))
	for _, cls := range names {
		c, err := e.GetClass(ns, cls, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// validateClassQualifiers checks every qualifier attachment on a class
// against the namespace's qualifier declarations. Skipped in lite mode.
func (e *Engine) validateClassQualifiers(ns string, c *cim.Class) error {
	if e.lite {
		return nil
	}
	qs, err := e.repo.QualifierStore(ns)
	if err != nil {
		return err
	}
	scope := cim.ScopeClass
	if c.IsAssociation() {
		scope = cim.ScopeAssociation
	}
	if err := checkQualifiers(qs, c.Qualifiers, scope, "class "+c.Name); err != nil {
		return err
	}
	var qerr error
	c.Properties.Range(func(_ string, p *cim.Property) bool {
		ps := cim.ScopeProperty
		if p.Value.Type == cim.TypeReference {
			ps = cim.ScopeReference
		}
		qerr = checkQualifiers(qs, p.Qualifiers, ps, "property "+p.Name)
		return qerr == nil
	})
	if qerr != nil {
		return qerr
	}
	c.Methods.Range(func(_ string, m *cim.Method) bool {
		qerr = checkQualifiers(qs, m.Qualifiers, cim.ScopeMethod, "method "+m.Name)
		if qerr != nil {
			return false
		}
		m.Parameters.Range(func(_ string, p *cim.Parameter) bool {
			qerr = checkQualifiers(qs, p.Qualifiers, cim.ScopeParameter, "parameter "+p.Name)
			return qerr == nil
		})
		return qerr == nil
	})
	return qerr
}

func checkQualifiers(qs *repo.QualifierStore, m *cim.NameMap[*cim.Qualifier], scope cim.Scope, where string) error {
	var err error
	m.Range(func(name string, q *cim.Qualifier) bool {
		decl, ok := qs.Get(name)
		if !ok {
			err = cim.NewError(cim.StatusInvalidParameter,
				"qualifier %s on %s has no declaration", name, where)
			return false
		}
		if !decl.HasScope(scope) {
			err = cim.NewError(cim.StatusInvalidParameter,
				"qualifier %s on %s is not valid in %s scope", name, where, scope)
			return false
		}
		if !q.Value.IsNull() && q.Value.Type != decl.Value.Type {
			err = cim.NewError(cim.StatusInvalidParameter,
				"qualifier %s on %s has type %s, declared %s", name, where, q.Value.Type, decl.Value.Type)
			return false
		}
		return true
	})
	return err
}

// GetQualifier returns a qualifier declaration.
func (e *Engine) GetQualifier(ns, name string) (*cim.QualifierDecl, error) {
	qs, err := e.repo.QualifierStore(ns)
	if err != nil {
		return nil, err
	}
	decl, ok := qs.Get(name)
	if !ok {
		return nil, cim.NewError(cim.StatusNotFound, "qualifier %s is not declared in namespace %s", name, ns)
	}
	return decl.Copy(), nil
}

// EnumerateQualifiers lists all qualifier declarations of a namespace.
func (e *Engine) EnumerateQualifiers(ns string) ([]*cim.QualifierDecl, error) {
	qs, err := e.repo.QualifierStore(ns)
	if err != nil {
		return nil, err
	}
	decls := qs.List()
	out := make([]*cim.QualifierDecl, len(decls))
	for i, d := range decls {
		out[i] = d.Copy()
	}
	return out, nil
}

// SetQualifier creates or replaces a qualifier declaration.
func (e *Engine) SetQualifier(ns string, d *cim.QualifierDecl) error {
	qs, err := e.repo.QualifierStore(ns)
	if err != nil {
		return err
	}
	if d.Name == "" {
		return cim.NewError(cim.StatusInvalidParameter, "qualifier declaration has no name")
	}
	if err := d.Value.Validate(); err != nil {
		return cim.NewError(cim.StatusInvalidParameter, "qualifier %s: %v", d.Name, err)
	}
	qs.Set(d.Copy())
	return nil
}

// DeleteQualifier removes a qualifier declaration.
func (e *Engine) DeleteQualifier(ns, name string) error {
	qs, err := e.repo.QualifierStore(ns)
	if err != nil {
		return err
	}
	if !qs.Delete(name) {
		return cim.NewError(cim.StatusNotFound, "qualifier %s is not declared in namespace %s", name, ns)
	}
	return nil
}
