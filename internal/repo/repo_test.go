package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
)

func TestNamespaceLifecycle(t *testing.T) {
	r := New()

	require.NoError(t, r.AddNamespace("root/cimv2"))
	assert.True(t, r.HasNamespace("ROOT/CIMV2"))
	assert.True(t, r.HasNamespace("/root/cimv2/"))

	err := r.AddNamespace("Root/CimV2")
	assert.True(t, cim.IsStatus(err, cim.StatusAlreadyExists))

	err = r.AddNamespace("")
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidNamespace))

	require.NoError(t, r.AddNamespace("interop"))
	assert.Equal(t, []string{"root/cimv2", "interop"}, r.Namespaces())

	require.NoError(t, r.RemoveNamespace("interop"))
	err = r.RemoveNamespace("interop")
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))
}

func TestRemoveNamespaceNotEmpty(t *testing.T) {
	r := New()
	require.NoError(t, r.AddNamespace("root/test"))
	ns, err := r.Namespace("root/test")
	require.NoError(t, err)

	ns.Classes.Set(cim.NewClass("CIM_Foo", ""))
	err = r.RemoveNamespace("root/test")
	assert.True(t, cim.IsStatus(err, cim.StatusFailed))

	ns.Classes.Delete("CIM_Foo")
	// system classes do not block removal
	ns.Classes.Set(cim.NewClass("__Namespace", ""))
	assert.NoError(t, r.RemoveNamespace("root/test"))
}

func TestStoreLookupUnknownNamespace(t *testing.T) {
	r := New()
	_, err := r.ClassStore("root/missing")
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidNamespace))
}

func TestInteropNamespace(t *testing.T) {
	r := New()
	_, ok := r.InteropNamespace()
	assert.False(t, ok)

	require.NoError(t, r.AddNamespace("root/interop"))
	name, ok := r.InteropNamespace()
	assert.True(t, ok)
	assert.Equal(t, "root/interop", name)
}

func TestClassStoreHierarchyQueries(t *testing.T) {
	s := NewClassStore()
	s.Set(cim.NewClass("Base", ""))
	s.Set(cim.NewClass("Mid", "Base"))
	s.Set(cim.NewClass("Leaf", "Mid"))
	s.Set(cim.NewClass("Other", ""))

	assert.ElementsMatch(t, []string{"Base", "Other"}, s.RootNames())
	assert.Equal(t, []string{"Mid"}, s.SubclassNames("base", false))
	assert.ElementsMatch(t, []string{"Mid", "Leaf"}, s.SubclassNames("Base", true))
	assert.Equal(t, []string{"Mid", "Base"}, s.SuperclassNames("Leaf"))
	assert.True(t, s.IsSubclassOf("Leaf", "BASE"))
	assert.True(t, s.IsSubclassOf("Leaf", "Leaf"))
	assert.False(t, s.IsSubclassOf("Base", "Leaf"))
}

func TestInstanceStoreModelPathIdentity(t *testing.T) {
	s := NewInstanceStore()

	inst := cim.NewInstance("CIM_Foo")
	inst.Path = cim.NewInstanceName("CIM_Foo").
		SetKey("InstanceID", cim.Value{Type: cim.TypeString, Data: "X"})
	require.True(t, s.Add(inst))

	dup := cim.NewInstance("cim_foo")
	dup.Path = cim.NewInstanceName("cim_foo").
		SetKey("instanceid", cim.Value{Type: cim.TypeString, Data: "x"})
	assert.False(t, s.Add(dup), "same model path must not be stored twice")

	lookup := cim.NewInstanceName("CIM_FOO").
		SetKey("InstanceID", cim.Value{Type: cim.TypeString, Data: "X"})
	lookup.Namespace = "root/elsewhere"
	lookup.Host = "otherhost"
	_, ok := s.Get(lookup)
	assert.True(t, ok, "lookup must ignore namespace and host")

	assert.True(t, s.Remove(lookup))
	assert.Equal(t, 0, s.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := New()
	require.NoError(t, r.AddNamespace("root/cimv2"))
	ns, err := r.Namespace("root/cimv2")
	require.NoError(t, err)

	ns.Qualifiers.Set(&cim.QualifierDecl{
		Name:   "Key",
		Value:  cim.Value{Type: cim.TypeBoolean, Data: false},
		Scopes: []cim.Scope{cim.ScopeProperty},
	})

	cls := cim.NewClass("CIM_Foo", "")
	p := cim.NewProperty("InstanceID", cim.Value{Type: cim.TypeString})
	p.Qualifiers.Set("Key", cim.BoolQualifier("Key", true))
	cls.Properties.Set(p.Name, p)
	ns.Classes.Set(cls)

	inst := cim.NewInstance("CIM_Foo")
	inst.SetProperty("InstanceID", cim.Value{Type: cim.TypeString, Data: "X"})
	inst.Path = cim.NewInstanceName("CIM_Foo").
		SetKey("InstanceID", cim.Value{Type: cim.TypeString, Data: "X"})
	require.True(t, ns.Instances.Add(inst))

	path := t.TempDir() + "/snapshot.json"
	require.NoError(t, r.SaveFile(path))

	restored := New()
	require.NoError(t, restored.LoadFile(path))

	assert.Equal(t, r.Namespaces(), restored.Namespaces())
	rns, err := restored.Namespace("root/cimv2")
	require.NoError(t, err)
	assert.True(t, rns.Qualifiers.Has("Key"))

	rcls, ok := rns.Classes.Get("CIM_Foo")
	require.True(t, ok)
	rp, ok := rcls.Property("InstanceID")
	require.True(t, ok)
	assert.True(t, rp.IsKey())

	rinst, ok := rns.Instances.Get(inst.Path)
	require.True(t, ok)
	got, ok := rinst.Property("InstanceID")
	require.True(t, ok)
	assert.True(t, got.Value.Equal(cim.Value{Type: cim.TypeString, Data: "X"}))
}

func TestImportRejectsDuplicateNamespace(t *testing.T) {
	r := New()
	require.NoError(t, r.AddNamespace("root/cimv2"))
	err := r.Import([]NamespaceExport{{Name: "root/cimv2"}})
	assert.Error(t, err)
}
