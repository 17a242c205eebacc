package engine

import (
	"mywbem/internal/cim"
)

// GetInstance locates an instance by model path and returns a filtered
// copy.
func (e *Engine) GetInstance(ns string, path *cim.InstanceName, opts InstanceOptions) (*cim.Instance, error) {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, cim.NewError(cim.StatusInvalidParameter, "instance path is required")
	}
	if !e.lite {
		cs, err := e.repo.ClassStore(ns)
		if err != nil {
			return nil, err
		}
		if !cs.Has(path.ClassName) {
			return nil, cim.NewError(cim.StatusInvalidClass,
				"class %s does not exist in namespace %s", path.ClassName, ns)
		}
	}
	stored, ok := is.Get(path)
	if !ok {
		return nil, cim.NewError(cim.StatusNotFound, "instance %s not found", path)
	}
	return filterInstance(stored, ns, opts), nil
}

// CreateInstance validates an instance against its resolved class,
// computes its path from the Key-qualified properties and stores a deep
// copy. Returns the new path.
func (e *Engine) CreateInstance(ns string, inst *cim.Instance) (*cim.InstanceName, error) {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return nil, err
	}
	if e.lite {
		if inst.Path == nil || inst.Path.KeyBindings.Len() == 0 {
			return nil, cim.NewError(cim.StatusInvalidParameter,
				"instance of %s has no path; lite mode cannot derive keys without a schema", inst.ClassName)
		}
		stored := inst.Copy()
		stored.Path.Namespace = ns
		if !is.Add(stored) {
			return nil, cim.NewError(cim.StatusAlreadyExists, "instance %s already exists", stored.Path)
		}
		return stored.Path.Copy(), nil
	}

	cls, err := e.GetClass(ns, inst.ClassName, ClassOptions{
		IncludeQualifiers:  true,
		IncludeClassOrigin: true,
	})
	if err != nil {
		return nil, err
	}
	stored := cim.NewInstance(cls.Name)
	var perr error
	inst.Properties.Range(func(name string, p *cim.Property) bool {
		cp, ok := cls.Property(name)
		if !ok {
			perr = cim.NewError(cim.StatusInvalidParameter,
				"property %s is not declared in class %s", name, cls.Name)
			return false
		}
		if perr = checkPropertyType(cp, p); perr != nil {
			return false
		}
		np := p.Copy()
		np.Name = cp.Name
		np.ClassOrigin = cp.ClassOrigin
		np.Propagated = cp.Propagated
		stored.Properties.Set(np.Name, np)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	path := cim.NewInstanceName(cls.Name)
	path.Namespace = ns
	for _, key := range cls.KeyProperties() {
		p, ok := stored.Property(key.Name)
		if !ok || p.Value.IsNull() {
			continue
		}
		path.SetKey(key.Name, p.Value.Copy())
	}
	if path.KeyBindings.Len() == 0 {
		return nil, cim.NewError(cim.StatusInvalidParameter,
			"no key property of class %s has a value", cls.Name)
	}
	stored.Path = path
	if !is.Add(stored) {
		return nil, cim.NewError(cim.StatusAlreadyExists, "instance %s already exists", path)
	}
	return path.Copy(), nil
}

// ModifyInstance applies property changes to a stored instance. Key
// properties are immutable: a changed key names an instance that does
// not exist, so the operation fails NotFound.
func (e *Engine) ModifyInstance(ns string, modified *cim.Instance, propertyList []string) error {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return err
	}
	if modified.Path == nil {
		return cim.NewError(cim.StatusInvalidParameter, "modified instance has no path")
	}
	if cim.Fold(modified.ClassName) != cim.Fold(modified.Path.ClassName) {
		return cim.NewError(cim.StatusInvalidClass,
			"instance class %s disagrees with path class %s", modified.ClassName, modified.Path.ClassName)
	}

	var cls *cim.Class
	if !e.lite {
		cls, err = e.GetClass(ns, modified.ClassName, ClassOptions{IncludeQualifiers: true})
		if err != nil {
			return err
		}
	}

	stored, ok := is.Get(modified.Path)
	if !ok {
		return cim.NewError(cim.StatusNotFound, "instance %s not found", modified.Path)
	}

	set, filter := propertySet(propertyList)
	next := stored.Copy()
	var perr error
	modified.Properties.Range(func(name string, p *cim.Property) bool {
		if filter && !set[cim.Fold(name)] {
			return true
		}
		if cls != nil {
			cp, ok := cls.Property(name)
			if !ok {
				perr = cim.NewError(cim.StatusInvalidParameter,
					"property %s is not declared in class %s", name, cls.Name)
				return false
			}
			if perr = checkPropertyType(cp, p); perr != nil {
				return false
			}
			if cp.IsKey() {
				if old, ok := stored.Property(name); !ok || !old.Value.Equal(p.Value) {
					perr = cim.NewError(cim.StatusNotFound,
						"instance %s not found (key property %s cannot change)", modified.Path, name)
					return false
				}
				return true
			}
		} else if _, isKey := modified.Path.Key(name); isKey {
			// lite mode: key bindings define identity even without a schema
			if old, ok := stored.Property(name); !ok || !old.Value.Equal(p.Value) {
				perr = cim.NewError(cim.StatusNotFound,
					"instance %s not found (key property %s cannot change)", modified.Path, name)
				return false
			}
			return true
		}
		np := p.Copy()
		if old, ok := next.Property(name); ok {
			np.Name = old.Name
			np.ClassOrigin = old.ClassOrigin
			np.Propagated = old.Propagated
		}
		next.Properties.Set(np.Name, np)
		return true
	})
	if perr != nil {
		return perr
	}
	is.Replace(next)
	return nil
}

// DeleteInstance removes a stored instance. Dependent association
// instances are not cascaded; that is the caller's responsibility.
func (e *Engine) DeleteInstance(ns string, path *cim.InstanceName) error {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return err
	}
	if path == nil {
		return cim.NewError(cim.StatusInvalidParameter, "instance path is required")
	}
	if !is.Remove(path) {
		return cim.NewError(cim.StatusNotFound, "instance %s not found", path)
	}
	return nil
}

// EnumerateInstances returns the instances of a class and, with deep
// inheritance, of its subclasses, each filtered per the options. In
// lite mode only exact class matches are returned.
func (e *Engine) EnumerateInstances(ns, className string, deep bool, opts InstanceOptions) ([]*cim.Instance, error) {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return nil, err
	}
	folded, err := e.targetClassSet(ns, className, deep)
	if err != nil {
		return nil, err
	}
	var out []*cim.Instance
	for _, stored := range is.ListClasses(folded) {
		out = append(out, filterInstance(stored, ns, opts))
	}
	return out, nil
}

// EnumerateInstanceNames returns the paths of the instances
// EnumerateInstances would return, always with deep inheritance.
func (e *Engine) EnumerateInstanceNames(ns, className string) ([]*cim.InstanceName, error) {
	is, err := e.repo.InstanceStore(ns)
	if err != nil {
		return nil, err
	}
	folded, err := e.targetClassSet(ns, className, true)
	if err != nil {
		return nil, err
	}
	var out []*cim.InstanceName
	for _, stored := range is.ListClasses(folded) {
		path := stored.Path.Copy()
		path.Namespace = ns
		out = append(out, path)
	}
	return out, nil
}

// targetClassSet folds {class} plus, when deep, its subclasses. Lite
// mode has no subclass knowledge and matches the exact class only.
func (e *Engine) targetClassSet(ns, className string, deep bool) (map[string]bool, error) {
	folded := map[string]bool{cim.Fold(className): true}
	if e.lite {
		return folded, nil
	}
	cs, err := e.repo.ClassStore(ns)
	if err != nil {
		return nil, err
	}
	if !cs.Has(className) {
		return nil, cim.NewError(cim.StatusInvalidClass,
			"class %s does not exist in namespace %s", className, ns)
	}
	if deep {
		for _, sub := range cs.SubclassNames(className, true) {
			folded[cim.Fold(sub)] = true
		}
	}
	return folded, nil
}

// filterInstance deep-copies a stored instance and reduces it per the
// options. LocalOnly retains only properties the instance's own class
// declares (non-propagated).
func filterInstance(stored *cim.Instance, ns string, opts InstanceOptions) *cim.Instance {
	out := stored.Copy()
	if out.Path != nil {
		out.Path.Namespace = ns
	}
	if opts.LocalOnly {
		for _, pn := range out.Properties.Names() {
			p, _ := out.Properties.Get(pn)
			if p.Propagated {
				out.Properties.Del(pn)
			}
		}
	}
	if set, filter := propertySet(opts.PropertyList); filter {
		for _, pn := range out.Properties.Names() {
			if !set[cim.Fold(pn)] {
				out.Properties.Del(pn)
			}
		}
	}
	if !opts.IncludeQualifiers {
		out.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
		out.Properties.Range(func(_ string, p *cim.Property) bool {
			p.Qualifiers = cim.NewNameMap[*cim.Qualifier]()
			return true
		})
	}
	if !opts.IncludeClassOrigin {
		out.Properties.Range(func(_ string, p *cim.Property) bool {
			p.ClassOrigin = ""
			return true
		})
	}
	return out
}

// checkPropertyType verifies an instance property against its class
// declaration, including the array/scalar dimension.
func checkPropertyType(decl, p *cim.Property) error {
	if p.Value.Type != decl.Value.Type && !p.Value.IsNull() {
		return cim.NewError(cim.StatusInvalidParameter,
			"property %s has type %s, class declares %s", p.Name, p.Value.Type, decl.Value.Type)
	}
	if p.Value.Array != decl.Value.Array {
		want, got := "scalar", "array"
		if decl.Value.Array {
			want, got = "array", "scalar"
		}
		return cim.NewError(cim.StatusInvalidParameter,
			"property %s is %s, class declares %s", p.Name, got, want)
	}
	if err := p.Value.Validate(); err != nil {
		return cim.NewError(cim.StatusInvalidParameter, "property %s: %v", p.Name, err)
	}
	return nil
}
