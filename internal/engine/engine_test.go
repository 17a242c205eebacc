package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

const testNS = "root/cimv2"

// newTestEngine builds an engine over a namespace seeded with the
// standard qualifier declarations the tests attach.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	r := repo.New()
	require.NoError(t, r.AddNamespace(testNS))
	qs, err := r.QualifierStore(testNS)
	require.NoError(t, err)
	qs.Set(&cim.QualifierDecl{
		Name:   "Key",
		Value:  cim.Value{Type: cim.TypeBoolean, Data: false},
		Scopes: []cim.Scope{cim.ScopeProperty, cim.ScopeReference},
	})
	qs.Set(&cim.QualifierDecl{
		Name:   "Association",
		Value:  cim.Value{Type: cim.TypeBoolean, Data: false},
		Scopes: []cim.Scope{cim.ScopeAssociation},
	})
	qs.Set(&cim.QualifierDecl{
		Name:       "Description",
		Value:      cim.Value{Type: cim.TypeString},
		Scopes:     []cim.Scope{cim.ScopeAny},
		ToSubclass: true,
	})
	return New(r)
}

func prop(name string, t cim.Type) *cim.Property {
	return cim.NewProperty(name, cim.Value{Type: t})
}

func keyProp(name string, t cim.Type) *cim.Property {
	p := prop(name, t)
	p.Qualifiers.Set("Key", cim.BoolQualifier("Key", true))
	return p
}

func refKeyProp(name, refClass string) *cim.Property {
	p := cim.NewProperty(name, cim.Value{Type: cim.TypeReference})
	p.ReferenceClass = refClass
	p.Qualifiers.Set("Key", cim.BoolQualifier("Key", true))
	return p
}

func addProps(c *cim.Class, props ...*cim.Property) *cim.Class {
	for _, p := range props {
		c.Properties.Set(p.Name, p)
	}
	return c
}

// seedHierarchy creates the three-level CIM_Foo hierarchy:
// CIM_Foo(InstanceID key, Caption), CIM_Foo_sub(+Color),
// CIM_Foo_sub_sub(+Size, overrides Caption).
func seedHierarchy(t *testing.T, e *Engine) {
	t.Helper()
	base := addProps(cim.NewClass("CIM_Foo", ""),
		keyProp("InstanceID", cim.TypeString),
		prop("Caption", cim.TypeString))
	require.NoError(t, e.CreateClass(testNS, base))

	sub := addProps(cim.NewClass("CIM_Foo_sub", "CIM_Foo"),
		prop("Color", cim.TypeString))
	require.NoError(t, e.CreateClass(testNS, sub))

	subsub := addProps(cim.NewClass("CIM_Foo_sub_sub", "CIM_Foo_sub"),
		prop("Size", cim.TypeUint32),
		prop("Caption", cim.TypeString))
	require.NoError(t, e.CreateClass(testNS, subsub))
}

// createFoo stores a CIM_Foo instance with the given key and returns
// its path.
func createFoo(t *testing.T, e *Engine, class, id string) *cim.InstanceName {
	t.Helper()
	inst := cim.NewInstance(class)
	inst.SetProperty("InstanceID", cim.Value{Type: cim.TypeString, Data: id})
	path, err := e.CreateInstance(testNS, inst)
	require.NoError(t, err)
	return path
}
