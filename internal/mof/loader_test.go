package mof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
	"mywbem/internal/repo"
)

// testSchema declares the subclass before its parent on purpose; compile
// order must not depend on document order.
const testSchema = `
version: "1.0"
namespace: root/test
qualifiers:
  - name: Key
    type: boolean
    scopes: [property, reference]
    overridable: false
  - name: Association
    type: boolean
    scopes: [association]
    overridable: false
  - name: Description
    type: string
    scopes: [any]
classes:
  - name: TST_FastDisk
    superclass: TST_Disk
  - name: TST_Disk
    qualifiers:
      - name: Description
        value: A block device.
    properties:
      - name: DeviceID
        type: string
        qualifiers:
          - name: Key
      - name: CapacityBytes
        type: uint64
    methods:
      - name: Reset
        return_type: uint32
        parameters:
          - name: Force
            type: boolean
  - name: TST_System
    properties:
      - name: Name
        type: string
        qualifiers:
          - name: Key
  - name: TST_SystemDevice
    qualifiers:
      - name: Association
    properties:
      - name: GroupComponent
        type: reference
        reference_class: TST_System
        qualifiers:
          - name: Key
      - name: PartComponent
        type: reference
        reference_class: TST_Disk
        qualifiers:
          - name: Key
instances:
  - class: TST_System
    properties:
      Name: srv1
  - class: TST_Disk
    properties:
      DeviceID: d0
      CapacityBytes: 1024
  - class: TST_SystemDevice
    properties:
      GroupComponent: TST_System.Name="srv1"
      PartComponent: TST_Disk.DeviceID="d0"
`

func parseValid(t *testing.T, doc string) *SchemaFile {
	t.Helper()
	schema, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, NewValidator(schema).Validate())
	return schema
}

func TestParseBytes(t *testing.T) {
	schema := parseValid(t, testSchema)
	assert.Equal(t, "1.0", schema.Version)
	assert.Equal(t, "root/test", schema.Namespace)
	assert.Len(t, schema.Qualifiers, 3)
	assert.Len(t, schema.Classes, 4)
	assert.Len(t, schema.Instances, 3)

	_, err := ParseBytes([]byte("classes: {not: [a, list"))
	assert.Error(t, err)
}

func TestValidatorRejects(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing version", "namespace: root/test", "version is required"},
		{"missing namespace", `version: "1.0"`, "namespace is required"},
		{
			"bad class name",
			`{version: "1.0", namespace: root/test, classes: [{name: "TST Disk"}]}`,
			"invalid name format",
		},
		{
			"duplicate class",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Disk}, {name: tst_disk}]}`,
			"duplicate class name",
		},
		{
			"duplicate property",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Disk, properties: [{name: A, type: string}, {name: a, type: string}]}]}`,
			"duplicate property name",
		},
		{
			"unknown type",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Disk, properties: [{name: A, type: float}]}]}`,
			"unknown CIM type",
		},
		{
			"unknown scope",
			`{version: "1.0", namespace: root/test, qualifiers: [{name: Key, type: boolean, scopes: [everything]}]}`,
			"invalid scope",
		},
		{
			"reference without target",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Link, properties: [{name: Ref, type: reference}]}]}`,
			"requires reference_class",
		},
		{
			"undeclared superclass",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_FastDisk, superclass: TST_Disk}]}`,
			"superclass TST_Disk is not declared",
		},
		{
			"undeclared reference class",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Link, properties: [{name: Ref, type: reference, reference_class: TST_Gone}]}]}`,
			"references undeclared class",
		},
		{
			"undeclared qualifier",
			`{version: "1.0", namespace: root/test, classes: [{name: TST_Disk, qualifiers: [{name: Abstract}]}]}`,
			"undeclared qualifier Abstract",
		},
		{
			"instance of unknown class",
			`{version: "1.0", namespace: root/test, instances: [{class: TST_Gone, properties: {}}]}`,
			"class TST_Gone is not declared",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema, err := ParseBytes([]byte(tc.doc))
			require.NoError(t, err)
			err = NewValidator(schema).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompile(t *testing.T) {
	r := repo.New()
	eng := engine.New(r)
	require.NoError(t, Compile(parseValid(t, testSchema), eng))

	qs, err := r.QualifierStore("root/test")
	require.NoError(t, err)
	key, ok := qs.Get("Key")
	require.True(t, ok)
	assert.False(t, key.Overridable)
	assert.True(t, key.ToSubclass, "flavor defaults apply when the document is silent")

	cs, err := r.ClassStore("root/test")
	require.NoError(t, err)
	assert.Equal(t, 4, cs.Len())
	assert.True(t, cs.IsSubclassOf("TST_FastDisk", "TST_Disk"))

	disk, ok := cs.Get("TST_Disk")
	require.True(t, ok)
	desc, ok := disk.Qualifiers.Get("Description")
	require.True(t, ok)
	assert.Equal(t, "A block device.", desc.Value.Data)
	id, ok := disk.Properties.Get("DeviceID")
	require.True(t, ok)
	keyQ, ok := id.Qualifiers.Get("Key")
	require.True(t, ok)
	assert.Equal(t, true, keyQ.Value.Data, "a bare boolean attachment means true")
	reset, ok := disk.Methods.Get("Reset")
	require.True(t, ok)
	assert.Equal(t, cim.TypeUint32, reset.ReturnType)
	assert.True(t, reset.Parameters.Has("Force"))

	link, ok := cs.Get("TST_SystemDevice")
	require.True(t, ok)
	assert.True(t, link.IsAssociation())

	is, err := r.InstanceStore("root/test")
	require.NoError(t, err)
	assert.Equal(t, 3, is.Len())

	// seeded references are typed, so association traversal works
	sys, err := cim.ParseInstanceName(`TST_System.Name="srv1"`)
	require.NoError(t, err)
	disks, err := eng.AssociatorNames("root/test", sys, engine.AssocFilter{})
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Equal(t, "TST_Disk", disks[0].ClassName)
}

func TestCompileInstanceErrors(t *testing.T) {
	doc := `
version: "1.0"
namespace: root/test
classes:
  - name: TST_Disk
    properties:
      - name: DeviceID
        type: string
      - name: CapacityBytes
        type: uint64
instances:
  - class: TST_Disk
    properties:
      DeviceID: d0
      CapacityBytes: not-a-number
`
	r := repo.New()
	err := Compile(parseValid(t, doc), engine.New(r))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instances[0]")
}

func TestLoaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))

	l := NewLoader(path)
	require.NoError(t, l.Load())
	require.NotNil(t, l.Schema())

	r := repo.New()
	require.NoError(t, l.Compile(engine.New(r)))
	assert.True(t, r.HasNamespace("root/test"))

	empty := NewLoader(path)
	err := empty.Compile(engine.New(repo.New()))
	assert.EqualError(t, err, "schema not loaded")

	missing := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, missing.Load())
}
