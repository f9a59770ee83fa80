package wire

import (
	"testing"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, d *schema.DraftSchema) *schema.ValidatedSchema {
	t.Helper()
	vs, errs := schema.Validate(d)
	require.Empty(t, errs)
	return vs
}

func TestStructRoundTripSpecExample(t *testing.T) {
	d := schema.NewDraftSchema("Person")
	d.Define("Person", schema.Struct(
		schema.StructField("name", schema.String()),
		schema.StructField("age", schema.I32()),
		schema.StructField("tags", schema.List(schema.String())),
	))
	sch := mustValidate(t, d)

	v := bare.StructValue([]bare.StructField{
		{Name: "name", Value: bare.StringValue("Ada")},
		{Name: "age", Value: bare.I32Value(37)},
		{Name: "tags", Value: bare.ListValue([]bare.Value{
			bare.StringValue("x"), bare.StringValue("y"),
		})},
	})

	encoded, err := Encode(sch, v)
	require.NoError(t, err)
	want := []byte{0x03, 0x41, 0x64, 0x61, 0x25, 0x00, 0x00, 0x00, 0x02, 0x01, 0x78, 0x01, 0x79}
	require.Equal(t, want, encoded)

	decoded, err := Decode(sch, encoded)
	require.NoError(t, err)
	name, _ := decoded.Field("name")
	age, _ := decoded.Field("age")
	require.Equal(t, "Ada", name.Str())
	require.Equal(t, int64(37), age.Int())
}

func TestUnionVoidCaseSingleByte(t *testing.T) {
	d := schema.NewDraftSchema("Result")
	d.Define("Result", schema.Union(
		schema.UnionCase(0, schema.I32()),
		schema.UnionCase(1, schema.String()),
		schema.UnionCase(2, schema.Void()),
	))
	sch := mustValidate(t, d)

	v := bare.UnionValue(2, bare.VoidValue())
	encoded, err := Encode(sch, v)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02}, encoded)

	decoded, err := Decode(sch, encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(2), decoded.Union().Tag)
}

func TestUnionUnknownTagOnDecode(t *testing.T) {
	d := schema.NewDraftSchema("Result")
	d.Define("Result", schema.Union(schema.UnionCase(0, schema.I32())))
	sch := mustValidate(t, d)

	_, err := Decode(sch, []byte{0x05})
	require.Error(t, err)
	require.True(t, bare.Is(err, bare.Decoding))
}

func TestOptionalNoneEncodesSingleZeroByte(t *testing.T) {
	d := schema.NewDraftSchema("Maybe")
	d.Define("Maybe", schema.Optional(schema.U32()))
	sch := mustValidate(t, d)

	encoded, err := Encode(sch, bare.NoneValue())
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, encoded)
}

func TestFixedListLengthMismatch(t *testing.T) {
	d := schema.NewDraftSchema("Fixed")
	d.Define("Fixed", schema.FixedList(schema.U8(), 3))
	sch := mustValidate(t, d)

	_, err := Encode(sch, bare.ListValue([]bare.Value{bare.U8Value(1), bare.U8Value(2)}))
	require.Error(t, err)
}

func TestMapCanonicalOrderRoundTrip(t *testing.T) {
	d := schema.NewDraftSchema("M")
	d.Define("M", schema.Map(schema.String(), schema.I32()))
	sch := mustValidate(t, d)

	entries := []bare.MapEntry{
		{Key: bare.StringValue("zebra"), Value: bare.I32Value(1)},
		{Key: bare.StringValue("apple"), Value: bare.I32Value(2)},
		{Key: bare.StringValue("mango"), Value: bare.I32Value(3)},
	}
	encoded, err := Encode(sch, bare.MapValue(entries))
	require.NoError(t, err)

	decoded, err := Decode(sch, encoded)
	require.NoError(t, err)
	got := decoded.Entries()
	require.Len(t, got, 3)
	require.Equal(t, "apple", got[0].Key.Str())
	require.Equal(t, "mango", got[1].Key.Str())
	require.Equal(t, "zebra", got[2].Key.Str())
}

func TestMapEncodingIsDeterministicAcrossInsertionOrder(t *testing.T) {
	d := schema.NewDraftSchema("M")
	d.Define("M", schema.Map(schema.String(), schema.I32()))
	sch := mustValidate(t, d)

	a := []bare.MapEntry{
		{Key: bare.StringValue("b"), Value: bare.I32Value(2)},
		{Key: bare.StringValue("a"), Value: bare.I32Value(1)},
	}
	b := []bare.MapEntry{
		{Key: bare.StringValue("a"), Value: bare.I32Value(1)},
		{Key: bare.StringValue("b"), Value: bare.I32Value(2)},
	}
	encA, err := Encode(sch, bare.MapValue(a))
	require.NoError(t, err)
	encB, err := Encode(sch, bare.MapValue(b))
	require.NoError(t, err)
	require.Equal(t, encA, encB)
}

func TestMapDuplicateKeyLastWins(t *testing.T) {
	d := schema.NewDraftSchema("M")
	d.Define("M", schema.Map(schema.String(), schema.I32()))
	sch := mustValidate(t, d)

	w := NewWriter()
	EncodeUint(w, 2)
	EncodeString(w, "k")
	EncodeI32(w, 1)
	EncodeString(w, "k")
	EncodeI32(w, 2)

	decoded, err := Decode(sch, w.Bytes())
	require.NoError(t, err)
	entries := decoded.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, int64(2), entries[0].Value.Int())
}

func TestEmptyListAndDataRoundTrip(t *testing.T) {
	d := schema.NewDraftSchema("L")
	d.Define("L", schema.List(schema.U8()))
	sch := mustValidate(t, d)

	encoded, err := Encode(sch, bare.ListValue(nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, encoded)

	decoded, err := Decode(sch, encoded)
	require.NoError(t, err)
	require.Empty(t, decoded.List())
}

func TestUserDefinedReferenceResolves(t *testing.T) {
	d := schema.NewDraftSchema("Wrapper")
	d.Define("Wrapper", schema.Struct(schema.StructField("inner", schema.UserDefined("Inner"))))
	d.Define("Inner", schema.U8())
	sch := mustValidate(t, d)

	v := bare.StructValue([]bare.StructField{{Name: "inner", Value: bare.U8Value(7)}})
	encoded, err := Encode(sch, v)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, encoded)
}
