package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
)

func TestResolveClassMergesAncestors(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	cls, err := e.GetClass(testNS, "CIM_Foo_sub_sub", ClassOptions{
		IncludeQualifiers:  true,
		IncludeClassOrigin: true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"Size", "Caption", "InstanceID", "Color"},
		cls.Properties.Names())

	id, _ := cls.Property("InstanceID")
	assert.True(t, id.Propagated)
	assert.Equal(t, "CIM_Foo", id.ClassOrigin)
	keyQual, ok := id.Qualifier("Key")
	require.True(t, ok)
	assert.True(t, keyQual.Propagated)

	color, _ := cls.Property("Color")
	assert.True(t, color.Propagated)
	assert.Equal(t, "CIM_Foo_sub", color.ClassOrigin)

	// the local override keeps its own class as origin
	caption, _ := cls.Property("Caption")
	assert.False(t, caption.Propagated)
	assert.Equal(t, "CIM_Foo_sub_sub", caption.ClassOrigin)

	size, _ := cls.Property("Size")
	assert.False(t, size.Propagated)
	assert.Equal(t, "CIM_Foo_sub_sub", size.ClassOrigin)
}

func TestGetClassLocalOnly(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	cls, err := e.GetClass(testNS, "CIM_Foo_sub_sub", ClassOptions{LocalOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Size", "Caption"}, cls.Properties.Names())

	cls, err = e.GetClass(testNS, "CIM_Foo_sub_sub", ClassOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"Size", "Caption", "InstanceID", "Color"},
		cls.Properties.Names())
}

func TestGetClassPropertyList(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	cls, err := e.GetClass(testNS, "CIM_Foo_sub_sub", ClassOptions{
		PropertyList: []string{"SIZE", "instanceid"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Size", "InstanceID"}, cls.Properties.Names())

	cls, err = e.GetClass(testNS, "CIM_Foo_sub_sub", ClassOptions{
		PropertyList: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cls.Properties.Len())
}

func TestGetClassQualifierAndOriginStripping(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	cls, err := e.GetClass(testNS, "CIM_Foo", ClassOptions{})
	require.NoError(t, err)
	id, _ := cls.Property("InstanceID")
	assert.Equal(t, 0, id.Qualifiers.Len())
	assert.Equal(t, "", id.ClassOrigin)
}

func TestGetClassUnknown(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetClass(testNS, "CIM_Nope", ClassOptions{})
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidClass))

	_, err = e.GetClass("root/missing", "CIM_Foo", ClassOptions{})
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidNamespace))
}

func TestGetClassIdempotent(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	opts := ClassOptions{IncludeQualifiers: true, IncludeClassOrigin: true}
	first, err := e.GetClass(testNS, "CIM_Foo_sub_sub", opts)
	require.NoError(t, err)
	second, err := e.GetClass(testNS, "CIM_Foo_sub_sub", opts)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCreateClassValidation(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	err := e.CreateClass(testNS, cim.NewClass("CIM_Foo", ""))
	assert.True(t, cim.IsStatus(err, cim.StatusAlreadyExists))

	err = e.CreateClass(testNS, cim.NewClass("CIM_Orphan", "CIM_Missing"))
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidParameter))

	// qualifier without a declaration
	bad := cim.NewClass("CIM_Bad", "")
	bad.Qualifiers.Set("Frobnicate", cim.BoolQualifier("Frobnicate", true))
	err = e.CreateClass(testNS, bad)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidParameter))

	// Key is declared for property scope only
	scoped := cim.NewClass("CIM_Scoped", "")
	scoped.Qualifiers.Set("Key", cim.BoolQualifier("Key", true))
	err = e.CreateClass(testNS, scoped)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidParameter))
}

func TestModifyClass(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	err := e.ModifyClass(testNS, cim.NewClass("CIM_Missing", ""))
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))

	err = e.ModifyClass(testNS, cim.NewClass("CIM_Foo_sub", "CIM_Foo_sub_sub"))
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidParameter))

	next := addProps(cim.NewClass("CIM_Foo_sub", "CIM_Foo"),
		prop("Color", cim.TypeString),
		prop("Shade", cim.TypeString))
	require.NoError(t, e.ModifyClass(testNS, next))

	cls, err := e.GetClass(testNS, "CIM_Foo_sub", ClassOptions{LocalOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Color", "Shade"}, cls.Properties.Names())
}

func TestDeleteClassGuards(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	err := e.DeleteClass(testNS, "CIM_Foo")
	assert.True(t, cim.IsStatus(err, cim.StatusFailed), "class with subclasses")

	createFoo(t, e, "CIM_Foo_sub_sub", "X")
	err = e.DeleteClass(testNS, "CIM_Foo_sub_sub")
	assert.True(t, cim.IsStatus(err, cim.StatusFailed), "class with instances")

	require.NoError(t, e.DeleteInstance(testNS, mustPath(t, `CIM_Foo_sub_sub.InstanceID="X"`)))
	require.NoError(t, e.DeleteClass(testNS, "CIM_Foo_sub_sub"))

	err = e.DeleteClass(testNS, "CIM_Foo_sub_sub")
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))
}

func TestEnumerateClassNames(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	roots, err := e.EnumerateClassNames(testNS, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"CIM_Foo"}, roots)

	all, err := e.EnumerateClassNames(testNS, "", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CIM_Foo", "CIM_Foo_sub", "CIM_Foo_sub_sub"}, all)

	subs, err := e.EnumerateClassNames(testNS, "CIM_Foo", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"CIM_Foo_sub"}, subs)

	_, err = e.EnumerateClassNames(testNS, "CIM_Missing", false)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidClass))
}

func TestQualifierDeclarationOps(t *testing.T) {
	e := newTestEngine(t)

	decl := &cim.QualifierDecl{
		Name:   "Abstract",
		Value:  cim.Value{Type: cim.TypeBoolean, Data: false},
		Scopes: []cim.Scope{cim.ScopeClass},
	}
	require.NoError(t, e.SetQualifier(testNS, decl))

	got, err := e.GetQualifier(testNS, "ABSTRACT")
	require.NoError(t, err)
	assert.Equal(t, "Abstract", got.Name)

	decls, err := e.EnumerateQualifiers(testNS)
	require.NoError(t, err)
	assert.Len(t, decls, 4) // Key, Association, Description, Abstract

	require.NoError(t, e.DeleteQualifier(testNS, "Abstract"))
	_, err = e.GetQualifier(testNS, "Abstract")
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))
	err = e.DeleteQualifier(testNS, "Abstract")
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))
}

func mustPath(t *testing.T, s string) *cim.InstanceName {
	t.Helper()
	p, err := cim.ParseInstanceName(s)
	require.NoError(t, err)
	return p
}
