package main

import (
	"encoding/json"
	"testing"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
	"github.com/stretchr/testify/require"
)

func TestDecodeTypeJSONPrimitive(t *testing.T) {
	tp, err := decodeTypeJSON(json.RawMessage(`{"kind":"u32"}`))
	require.NoError(t, err)
	require.True(t, tp.Equal(schema.U32()))
}

func TestDecodeTypeJSONStruct(t *testing.T) {
	raw := json.RawMessage(`{
		"kind": "struct",
		"fields": [
			{"name": "name", "type": {"kind": "string"}},
			{"name": "age", "type": {"kind": "i32"}}
		]
	}`)
	tp, err := decodeTypeJSON(raw)
	require.NoError(t, err)
	want := schema.Struct(
		schema.StructField("name", schema.String()),
		schema.StructField("age", schema.I32()),
	)
	require.True(t, tp.Equal(want))
}

func TestDecodeTypeJSONUnknownKind(t *testing.T) {
	_, err := decodeTypeJSON(json.RawMessage(`{"kind":"nonsense"}`))
	require.Error(t, err)
}

func TestValueToJSONStruct(t *testing.T) {
	v := bare.StructValue([]bare.StructField{
		{Name: "name", Value: bare.StringValue("Ada")},
		{Name: "tags", Value: bare.ListValue([]bare.Value{bare.StringValue("a")})},
	})
	out, ok := valueToJSON(v).(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Ada", out["name"])
	require.Equal(t, []interface{}{"a"}, out["tags"])
}

func TestLoadValidatedSchemaRequiresPath(t *testing.T) {
	_, err := loadValidatedSchema("")
	require.Error(t, err)
}
