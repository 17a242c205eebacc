package provider

import (
	"mywbem/internal/cim"
	"mywbem/internal/engine"
)

// Dispatcher routes each operation to a registered provider or falls
// through to the built-in engine. Providers are an override, not a
// requirement; only InvokeMethod has no built-in fallback.
type Dispatcher struct {
	registry *Registry
	engine   *engine.Engine
	env      *Env
}

// NewDispatcher wires a dispatcher over a registry and engine.
func NewDispatcher(reg *Registry, eng *engine.Engine) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		engine:   eng,
		env:      &Env{Repo: eng.Repository(), Engine: eng},
	}
}

// Registry returns the dispatcher's provider registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Engine returns the built-in engine providers fall through to.
func (d *Dispatcher) Engine() *engine.Engine {
	return d.engine
}

// CreateInstance dispatches to an instance-write provider or the
// built-in engine.
func (d *Dispatcher) CreateInstance(ns string, inst *cim.Instance) (*cim.InstanceName, error) {
	if p, ok := d.registry.Lookup(ns, inst.ClassName, KindInstanceWrite); ok {
		return p.(InstanceWriteProvider).CreateInstance(d.env, ns, inst)
	}
	return d.engine.CreateInstance(ns, inst)
}

// ModifyInstance dispatches to an instance-write provider or the
// built-in engine.
func (d *Dispatcher) ModifyInstance(ns string, inst *cim.Instance, propertyList []string) error {
	if p, ok := d.registry.Lookup(ns, inst.ClassName, KindInstanceWrite); ok {
		return p.(InstanceWriteProvider).ModifyInstance(d.env, ns, inst, propertyList)
	}
	return d.engine.ModifyInstance(ns, inst, propertyList)
}

// DeleteInstance dispatches to an instance-write provider or the
// built-in engine.
func (d *Dispatcher) DeleteInstance(ns string, path *cim.InstanceName) error {
	if path != nil {
		if p, ok := d.registry.Lookup(ns, path.ClassName, KindInstanceWrite); ok {
			return p.(InstanceWriteProvider).DeleteInstance(d.env, ns, path)
		}
	}
	return d.engine.DeleteInstance(ns, path)
}

// InvokeMethod dispatches to a method provider. CIM methods have no
// universal semantics, so without a registered provider the method is
// not available.
func (d *Dispatcher) InvokeMethod(ns string, obj *cim.InstanceName, method string, params map[string]cim.Value) (cim.Value, map[string]cim.Value, error) {
	if obj == nil {
		return cim.Value{}, nil, cim.NewError(cim.StatusInvalidParameter, "method target is required")
	}
	p, ok := d.registry.Lookup(ns, obj.ClassName, KindMethod)
	if !ok {
		return cim.Value{}, nil, cim.NewError(cim.StatusMethodNotAvailable,
			"no method provider is registered for class %s in namespace %s", obj.ClassName, ns)
	}
	return p.(MethodProvider).InvokeMethod(d.env, ns, obj, method, params)
}

// ReferenceNames dispatches to an association provider registered for
// the source class, or the built-in reference scan.
func (d *Dispatcher) ReferenceNames(ns string, src *cim.InstanceName, resultClass, role string) ([]*cim.InstanceName, error) {
	if src != nil {
		if p, ok := d.registry.Lookup(ns, src.ClassName, KindAssociation); ok {
			return p.(AssociationProvider).ReferenceNames(d.env, ns, src, resultClass, role)
		}
	}
	return d.engine.ReferenceNames(ns, src, resultClass, role)
}

// References composes the full-instance variant over ReferenceNames so
// an association provider's override carries through.
func (d *Dispatcher) References(ns string, src *cim.InstanceName, resultClass, role string, opts engine.InstanceOptions) ([]*cim.Instance, error) {
	if src != nil {
		if _, ok := d.registry.Lookup(ns, src.ClassName, KindAssociation); ok {
			paths, err := d.ReferenceNames(ns, src, resultClass, role)
			if err != nil {
				return nil, err
			}
			out := make([]*cim.Instance, 0, len(paths))
			for _, path := range paths {
				inst, err := d.engine.GetInstance(ns, path, opts)
				if err != nil {
					return nil, err
				}
				out = append(out, inst)
			}
			return out, nil
		}
	}
	return d.engine.References(ns, src, resultClass, role, opts)
}

// AssociatorNames falls through to the built-in traversal; association
// providers override the reference scan only.
func (d *Dispatcher) AssociatorNames(ns string, src *cim.InstanceName, f engine.AssocFilter) ([]*cim.InstanceName, error) {
	return d.engine.AssociatorNames(ns, src, f)
}

// Associators falls through to the built-in traversal.
func (d *Dispatcher) Associators(ns string, src *cim.InstanceName, f engine.AssocFilter, opts engine.InstanceOptions) ([]*cim.Instance, error) {
	return d.engine.Associators(ns, src, f, opts)
}
