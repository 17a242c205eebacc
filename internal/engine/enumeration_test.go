package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
)

func seedFoos(t *testing.T, e *Engine, n int) {
	t.Helper()
	seedHierarchy(t, e)
	for i := 0; i < n; i++ {
		createFoo(t, e, "CIM_Foo", fmt.Sprintf("inst-%02d", i))
	}
}

func TestOpenWithZeroMaxObjectCount(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 5)
	sm := NewSessionManager(e)

	batch, ctx, eos, err := sm.OpenEnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{}, 0)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.False(t, eos)
	require.NotNil(t, ctx)
	assert.NotEmpty(t, ctx.ID)

	rest, eos, err := sm.PullInstancesWithPath(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, rest, 5)
	assert.True(t, eos)
	assert.Equal(t, 0, sm.Len())
}

func TestOpenExhaustsInOneShot(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 3)
	sm := NewSessionManager(e)

	batch, ctx, eos, err := sm.OpenEnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{}, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 3)
	assert.True(t, eos)
	assert.Nil(t, ctx, "an exhausted open leaves no context behind")
	assert.Equal(t, 0, sm.Len())
}

func TestPaginationYieldsSameSet(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 7)
	sm := NewSessionManager(e)

	oneShot, _, eos, err := sm.OpenEnumerateInstancePaths(testNS, "CIM_Foo", 7)
	require.NoError(t, err)
	require.True(t, eos)

	for _, m := range []int{1, 2, 3, 5} {
		var paged []*cim.InstanceName
		batch, ctx, eos, err := sm.OpenEnumerateInstancePaths(testNS, "CIM_Foo", m)
		require.NoError(t, err)
		paged = append(paged, batch...)
		for !eos {
			batch, eos, err = sm.PullInstancePaths(ctx, m)
			require.NoError(t, err)
			paged = append(paged, batch...)
		}
		assert.ElementsMatch(t, modelKeys(oneShot), modelKeys(paged), "MaxObjectCount=%d", m)
	}
}

func TestPullAfterExhaustionFails(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 2)
	sm := NewSessionManager(e)

	_, ctx, eos, err := sm.OpenEnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{}, 1)
	require.NoError(t, err)
	require.False(t, eos)

	_, eos, err = sm.PullInstancesWithPath(ctx, 10)
	require.NoError(t, err)
	require.True(t, eos)

	_, _, err = sm.PullInstancesWithPath(ctx, 10)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidEnumerationContext))
}

func TestCloseEnumerationTwice(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 3)
	sm := NewSessionManager(e)

	_, ctx, eos, err := sm.OpenEnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{}, 1)
	require.NoError(t, err)
	require.False(t, eos)

	require.NoError(t, sm.CloseEnumeration(ctx))
	err = sm.CloseEnumeration(ctx)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidEnumerationContext))
}

func TestPullKindMismatch(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 3)
	sm := NewSessionManager(e)

	_, ctx, _, err := sm.OpenEnumerateInstancePaths(testNS, "CIM_Foo", 1)
	require.NoError(t, err)

	_, _, err = sm.PullInstancesWithPath(ctx, 1)
	assert.True(t, cim.IsStatus(err, cim.StatusFailed))
}

func TestPullNamespaceMismatch(t *testing.T) {
	e := newTestEngine(t)
	seedFoos(t, e, 3)
	sm := NewSessionManager(e)

	_, ctx, _, err := sm.OpenEnumerateInstances(testNS, "CIM_Foo", true, InstanceOptions{}, 1)
	require.NoError(t, err)

	wrong := &Context{ID: ctx.ID, Namespace: "root/other"}
	_, _, err = sm.PullInstancesWithPath(wrong, 1)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidEnumerationContext))
}

func TestPullUnknownContext(t *testing.T) {
	e := newTestEngine(t)
	sm := NewSessionManager(e)

	_, _, err := sm.PullInstancesWithPath(&Context{ID: "bogus", Namespace: testNS}, 1)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidEnumerationContext))

	_, _, err = sm.PullInstancesWithPath(nil, 1)
	assert.True(t, cim.IsStatus(err, cim.StatusInvalidEnumerationContext))
}

func TestOpenAssociationEnumerations(t *testing.T) {
	e := newTestEngine(t)
	seedAssociations(t, e)
	sm := NewSessionManager(e)

	sys := mustPath(t, `TST_System.Name="srv1"`)

	refs, ctx, eos, err := sm.OpenReferenceInstancePaths(testNS, sys, "", "", 1)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
	require.False(t, eos)
	rest, eos, err := sm.PullInstancePaths(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.True(t, eos)

	disks, ctx, eos, err := sm.OpenAssociatorInstances(testNS, sys, AssocFilter{}, InstanceOptions{}, 10)
	require.NoError(t, err)
	assert.Len(t, disks, 2)
	assert.True(t, eos)
	assert.Nil(t, ctx)
}
