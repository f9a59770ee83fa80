package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRootMissing(t *testing.T) {
	d := NewDraftSchema("Missing")
	_, errs := Validate(d)
	require.Len(t, errs, 1)
}

func TestValidateCycleDetection(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Struct(StructField("b", UserDefined("B"))))
	d.Define("B", Struct(StructField("a", UserDefined("A"))))
	_, errs := Validate(d)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if ve, ok := e.(*ValidationError); ok && containsCyclic(ve.Message) {
			found = true
		}
	}
	require.True(t, found, "expected a cyclic type reference error")
}

func containsCyclic(msg string) bool {
	for i := 0; i+len("cyclic") <= len(msg); i++ {
		if msg[i:i+len("cyclic")] == "cyclic" {
			return true
		}
	}
	return false
}

func TestValidateUndefinedReference(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Struct(StructField("b", UserDefined("Ghost"))))
	_, errs := Validate(d)
	require.NotEmpty(t, errs)
}

func TestValidateEmptyStructUnionEnum(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", &Type{Kind: KindStruct})
	_, errs := Validate(d)
	require.NotEmpty(t, errs)

	d2 := NewDraftSchema("A")
	d2.Define("A", &Type{Kind: KindUnion})
	_, errs2 := Validate(d2)
	require.NotEmpty(t, errs2)

	d3 := NewDraftSchema("A")
	d3.Define("A", &Type{Kind: KindEnum})
	_, errs3 := Validate(d3)
	require.NotEmpty(t, errs3)
}

func TestValidateVoidOutsideUnion(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Struct(StructField("v", Void())))
	_, errs := Validate(d)
	require.NotEmpty(t, errs)
}

func TestValidateVoidAllowedAsUnionCase(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Union(UnionCase(0, Int()), UnionCase(1, Void())))
	_, errs := Validate(d)
	require.Empty(t, errs)
}

func TestValidateInvalidMapKey(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Struct(StructField("m", Map(F64(), String()))))
	_, errs := Validate(d)
	require.NotEmpty(t, errs)
}

func TestValidateInvalidFixedListLength(t *testing.T) {
	d := NewDraftSchema("A")
	d.Define("A", Struct(StructField("l", FixedList(U8(), 0))))
	_, errs := Validate(d)
	require.NotEmpty(t, errs)
}

func TestValidateSuccess(t *testing.T) {
	d := NewDraftSchema("Person")
	d.Define("Person", Struct(
		StructField("name", String()),
		StructField("age", I32()),
		StructField("tags", List(String())),
	))
	vs, errs := Validate(d)
	require.Empty(t, errs)
	require.Equal(t, "Person", vs.Root())
}

func TestValidateIdempotence(t *testing.T) {
	d := NewDraftSchema("Person")
	d.Define("Person", Struct(StructField("name", String())))
	vs1, errs := Validate(d)
	require.Empty(t, errs)

	d2 := NewDraftSchema(vs1.Root())
	for _, n := range vs1.Names() {
		typ, _ := vs1.Lookup(n)
		d2.Define(n, typ)
	}
	vs2, errs2 := Validate(d2)
	require.Empty(t, errs2)
	require.Equal(t, vs1.Root(), vs2.Root())
}
