package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
	"mywbem/internal/repo"
)

func newLiteEngine(t *testing.T) *Engine {
	t.Helper()
	r := repo.New()
	require.NoError(t, r.AddNamespace(testNS))
	return NewLite(r)
}

func liteInstance(class, id string) *cim.Instance {
	inst := cim.NewInstance(class)
	inst.SetProperty("InstanceID", cim.Value{Type: cim.TypeString, Data: id})
	inst.Path = cim.NewInstanceName(class).
		SetKey("InstanceID", cim.Value{Type: cim.TypeString, Data: id})
	return inst
}

func TestLiteCreateRequiresExplicitPath(t *testing.T) {
	e := newLiteEngine(t)

	pathless := cim.NewInstance("CIM_Foo")
	pathless.SetProperty("InstanceID", cim.Value{Type: cim.TypeString, Data: "X"})
	_, err := e.CreateInstance(testNS, pathless)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidParameter))

	path, err := e.CreateInstance(testNS, liteInstance("CIM_Foo", "X"))
	require.NoError(t, err)
	assert.True(t, path.ModelEqual(mustPath(t, `CIM_Foo.InstanceID="X"`)))

	_, err = e.CreateInstance(testNS, liteInstance("CIM_Foo", "X"))
	assert.True(t, cim.IsStatus(err, cim.StatusAlreadyExists))
}

func TestLiteSkipsSchemaValidation(t *testing.T) {
	e := newLiteEngine(t)

	// no class store lookup; any class name and property set is accepted
	inst := liteInstance("CIM_Whatever", "X")
	inst.SetProperty("Undeclared", cim.Value{Type: cim.TypeUint32, Data: uint32(9)})
	path, err := e.CreateInstance(testNS, inst)
	require.NoError(t, err)

	got, err := e.GetInstance(testNS, path, InstanceOptions{})
	require.NoError(t, err)
	assert.True(t, got.Properties.Has("Undeclared"))
}

func TestLiteEnumeratesExactClassOnly(t *testing.T) {
	e := newLiteEngine(t)

	_, err := e.CreateInstance(testNS, liteInstance("CIM_Foo", "one"))
	require.NoError(t, err)
	_, err = e.CreateInstance(testNS, liteInstance("CIM_Foo_sub", "two"))
	require.NoError(t, err)

	// deep enumeration cannot see subclasses without a schema
	out, err := e.EnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CIM_Foo", out[0].ClassName)
}

func TestLiteKeyBindingsAreIdentity(t *testing.T) {
	e := newLiteEngine(t)
	path, err := e.CreateInstance(testNS, liteInstance("CIM_Foo", "X"))
	require.NoError(t, err)

	// the path's key bindings make InstanceID immutable
	mod := cim.NewInstance("CIM_Foo")
	mod.Path = path
	mod.SetProperty("InstanceID", cim.Value{Type: cim.TypeString, Data: "Y"})
	err = e.ModifyInstance(testNS, mod, nil)
	assert.True(t, cim.IsStatus(err, cim.StatusNotFound))

	free := cim.NewInstance("CIM_Foo")
	free.Path = path
	free.SetProperty("Caption", cim.Value{Type: cim.TypeString, Data: "added"})
	require.NoError(t, e.ModifyInstance(testNS, free, nil))

	got, err := e.GetInstance(testNS, path, InstanceOptions{})
	require.NoError(t, err)
	assert.True(t, got.Properties.Has("Caption"))
}
