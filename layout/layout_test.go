package layout

import (
	"testing"

	"github.com/barewire/barewire/schema"
	"github.com/stretchr/testify/require"
)

func validated(t *testing.T, root string, define func(d *schema.DraftSchema)) *schema.ValidatedSchema {
	t.Helper()
	d := schema.NewDraftSchema(root)
	define(d)
	vs, errs := schema.Validate(d)
	require.Empty(t, errs)
	return vs
}

func TestComputeFixedStructLayout(t *testing.T) {
	sch := validated(t, "Point", func(d *schema.DraftSchema) {
		d.Define("Point", schema.Struct(
			schema.StructField("x", schema.U8()),
			schema.StructField("y", schema.U32()),
			schema.StructField("z", schema.U8()),
		))
	})

	l, err := Compute(sch, sch.RootType())
	require.NoError(t, err)

	x, err := l.Lookup("x")
	require.NoError(t, err)
	require.Equal(t, 0, x.Offset)

	y, err := l.Lookup("y")
	require.NoError(t, err)
	require.Equal(t, 4, y.Offset)
	require.Equal(t, 4, y.Alignment)

	z, err := l.Lookup("z")
	require.NoError(t, err)
	require.Equal(t, 8, z.Offset)

	require.Equal(t, 4, l.Alignment)
	require.Equal(t, 12, l.Size)
}

func TestComputeNestedStructFlattensPaths(t *testing.T) {
	sch := validated(t, "Person", func(d *schema.DraftSchema) {
		d.Define("Person", schema.Struct(
			schema.StructField("name", schema.String()),
			schema.StructField("addr", schema.UserDefined("Address")),
		))
		d.Define("Address", schema.Struct(
			schema.StructField("city", schema.String()),
		))
	})

	l, err := Compute(sch, sch.RootType())
	require.NoError(t, err)

	paths := l.Paths("")
	require.Contains(t, paths, "name")
	require.Contains(t, paths, "addr.city")
}

func TestVariableLengthFieldGetsHandleSlot(t *testing.T) {
	sch := validated(t, "Doc", func(d *schema.DraftSchema) {
		d.Define("Doc", schema.Struct(
			schema.StructField("id", schema.U8()),
			schema.StructField("body", schema.String()),
		))
	})

	l, err := Compute(sch, sch.RootType())
	require.NoError(t, err)

	body, err := l.Lookup("body")
	require.NoError(t, err)
	require.True(t, body.Handle)
	require.Equal(t, handleSize, body.Size)
	require.Equal(t, handleAlignment, body.Alignment)
	require.Equal(t, 8, body.Offset)
}

func TestComputeRejectsNonStructRoot(t *testing.T) {
	sch := validated(t, "N", func(d *schema.DraftSchema) {
		d.Define("N", schema.U32())
	})

	_, err := Compute(sch, sch.RootType())
	require.Error(t, err)
}

func TestLookupMissingPath(t *testing.T) {
	sch := validated(t, "Point", func(d *schema.DraftSchema) {
		d.Define("Point", schema.Struct(schema.StructField("x", schema.U8())))
	})
	l, err := Compute(sch, sch.RootType())
	require.NoError(t, err)

	_, err = l.Lookup("nope")
	require.Error(t, err)
}
