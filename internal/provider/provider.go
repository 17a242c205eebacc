// Package provider implements the provider registry and operation
// dispatch: custom code registered per (namespace, class) overrides the
// built-in store-backed engines for instance writes, method invocation
// and reference queries.
package provider

import (
	"reflect"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
	"mywbem/internal/repo"
)

// Kind identifies a provider capability.
type Kind string

// Provider capability kinds.
const (
	KindInstanceWrite Kind = "instance-write"
	KindMethod        Kind = "method"
	KindAssociation   Kind = "association"
)

// Env is the handle a provider receives: full read/write access to the
// stores plus the built-in engine, so an override can still consult the
// resolved schema or delegate to the default behavior.
type Env struct {
	Repo   *repo.Repository
	Engine *engine.Engine
}

// Provider is the base contract: the classes a provider serves. The
// capability interfaces below determine which operations it overrides.
type Provider interface {
	Classes() []string
}

// Named lets a provider choose its registry identity. Providers without
// it are identified by their Go type.
type Named interface {
	Name() string
}

// InstanceWriteProvider overrides CreateInstance, ModifyInstance and
// DeleteInstance for its classes.
type InstanceWriteProvider interface {
	Provider
	CreateInstance(env *Env, ns string, inst *cim.Instance) (*cim.InstanceName, error)
	ModifyInstance(env *Env, ns string, inst *cim.Instance, propertyList []string) error
	DeleteInstance(env *Env, ns string, path *cim.InstanceName) error
}

// MethodProvider serves InvokeMethod for its classes. There is no
// built-in method execution: a class without a method provider cannot
// be invoked.
type MethodProvider interface {
	Provider
	InvokeMethod(env *Env, ns string, obj *cim.InstanceName, method string, params map[string]cim.Value) (cim.Value, map[string]cim.Value, error)
}

// AssociationProvider overrides reference queries for its classes.
type AssociationProvider interface {
	Provider
	ReferenceNames(env *Env, ns string, src *cim.InstanceName, resultClass, role string) ([]*cim.InstanceName, error)
}

// kindsOf probes the capability interfaces a provider implements.
func kindsOf(p Provider) []Kind {
	var kinds []Kind
	if _, ok := p.(InstanceWriteProvider); ok {
		kinds = append(kinds, KindInstanceWrite)
	}
	if _, ok := p.(MethodProvider); ok {
		kinds = append(kinds, KindMethod)
	}
	if _, ok := p.(AssociationProvider); ok {
		kinds = append(kinds, KindAssociation)
	}
	return kinds
}

// nameOf returns a provider's registry identity: its declared name, or
// the name of its Go type.
func nameOf(p Provider) string {
	if n, ok := p.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
