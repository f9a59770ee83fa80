package view

import (
	"testing"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/region"
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

func TestGetSetFixedField(t *testing.T) {
	sch := validated(t, "Point", func(d *schema.DraftSchema) {
		d.Define("Point", schema.Struct(
			schema.StructField("x", schema.U32()),
			schema.StructField("y", schema.U32()),
		))
	})
	r := region.New(make([]byte, 8))
	v, err := New(r, sch, sch.RootType())
	require.NoError(t, err)

	require.NoError(t, v.Set("x", bare.U32Value(7)))
	require.NoError(t, v.Set("y", bare.U32Value(9)))

	x, err := v.Get("x")
	require.NoError(t, err)
	require.Equal(t, uint64(7), x.Uint())

	y, err := v.Get("y")
	require.NoError(t, err)
	require.Equal(t, uint64(9), y.Uint())
}

func TestGetSetVariableField(t *testing.T) {
	sch := validated(t, "Doc", func(d *schema.DraftSchema) {
		d.Define("Doc", schema.Struct(
			schema.StructField("id", schema.U8()),
			schema.StructField("body", schema.String()),
		))
	})
	r := region.New(make([]byte, 8+16))
	v, err := New(r, sch, sch.RootType())
	require.NoError(t, err)

	require.NoError(t, v.Set("body", bare.StringValue("hello")))
	body, err := v.Get("body")
	require.NoError(t, err)
	require.Equal(t, "hello", body.Str())

	require.NoError(t, v.Set("body", bare.StringValue("a longer replacement string")))
	body, err = v.Get("body")
	require.NoError(t, err)
	require.Equal(t, "a longer replacement string", body.Str())
}

func TestUpdateAppliesFunction(t *testing.T) {
	sch := validated(t, "Counter", func(d *schema.DraftSchema) {
		d.Define("Counter", schema.Struct(schema.StructField("n", schema.U32())))
	})
	r := region.New(make([]byte, 4))
	v, err := New(r, sch, sch.RootType())
	require.NoError(t, err)
	require.NoError(t, v.Set("n", bare.U32Value(1)))

	err = v.Update("n", func(cur bare.Value) (bare.Value, error) {
		return bare.U32Value(uint32(cur.Uint()) + 1), nil
	})
	require.NoError(t, err)

	n, err := v.Get("n")
	require.NoError(t, err)
	require.Equal(t, uint64(2), n.Uint())
}

func TestNestedViewAndFieldExists(t *testing.T) {
	sch := validated(t, "Person", func(d *schema.DraftSchema) {
		d.Define("Person", schema.Struct(
			schema.StructField("age", schema.U8()),
			schema.StructField("addr", schema.UserDefined("Address")),
		))
		d.Define("Address", schema.Struct(schema.StructField("zip", schema.U32())))
	})
	r := region.New(make([]byte, 16))
	v, err := New(r, sch, sch.RootType())
	require.NoError(t, err)

	require.True(t, v.FieldExists("age"))
	require.True(t, v.FieldExists("addr.zip"))
	require.False(t, v.FieldExists("addr.missing"))

	nested, err := v.Nested("addr")
	require.NoError(t, err)
	require.NoError(t, nested.Set("zip", bare.U32Value(94110)))

	zip, err := v.Get("addr.zip")
	require.NoError(t, err)
	require.Equal(t, uint64(94110), zip.Uint())
}

func TestRootFieldNames(t *testing.T) {
	sch := validated(t, "Point", func(d *schema.DraftSchema) {
		d.Define("Point", schema.Struct(
			schema.StructField("x", schema.U8()),
			schema.StructField("y", schema.U8()),
		))
	})
	r := region.New(make([]byte, 2))
	v, err := New(r, sch, sch.RootType())
	require.NoError(t, err)

	names, err := v.RootFieldNames()
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, names)
}

func TestNewRejectsUndersizedRegion(t *testing.T) {
	sch := validated(t, "Point", func(d *schema.DraftSchema) {
		d.Define("Point", schema.Struct(schema.StructField("x", schema.U32())))
	})
	r := region.New(make([]byte, 2))
	_, err := New(r, sch, sch.RootType())
	require.Error(t, err)
}
