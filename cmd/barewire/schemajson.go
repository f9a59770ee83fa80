package main

import (
	"encoding/json"
	"fmt"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
)

// typeJSON is the on-disk shape of one schema.Type node. Only the fields
// relevant to Kind need be present, mirroring schema.Type itself.
type typeJSON struct {
	Kind     string          `json:"kind"`
	FixedLen int             `json:"fixed_len,omitempty"`
	Enum     []enumEntryJSON `json:"enum,omitempty"`
	Elem     json.RawMessage `json:"elem,omitempty"`
	Key      json.RawMessage `json:"key,omitempty"`
	Val      json.RawMessage `json:"val,omitempty"`
	Cases    []caseJSON      `json:"cases,omitempty"`
	Fields   []fieldJSON     `json:"fields,omitempty"`
	Ref      string          `json:"ref,omitempty"`
}

type enumEntryJSON struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

type fieldJSON struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type caseJSON struct {
	Tag  uint64          `json:"tag"`
	Type json.RawMessage `json:"type"`
}

var primitiveConstructors = map[string]func() *schema.Type{
	"uint":   schema.Uint,
	"int":    schema.Int,
	"u8":     schema.U8,
	"u16":    schema.U16,
	"u32":    schema.U32,
	"u64":    schema.U64,
	"i8":     schema.I8,
	"i16":    schema.I16,
	"i32":    schema.I32,
	"i64":    schema.I64,
	"f32":    schema.F32,
	"f64":    schema.F64,
	"bool":   schema.Bool,
	"string": schema.String,
	"data":   schema.Data,
	"void":   schema.Void,
}

// decodeTypeJSON parses one schema.Type node from its JSON form.
func decodeTypeJSON(raw json.RawMessage) (*schema.Type, error) {
	var tj typeJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return nil, err
	}

	if ctor, ok := primitiveConstructors[tj.Kind]; ok {
		return ctor(), nil
	}

	switch tj.Kind {
	case "fixed_data":
		return schema.FixedData(tj.FixedLen), nil
	case "enum":
		entries := make([]schema.EnumEntry, len(tj.Enum))
		for i, e := range tj.Enum {
			entries[i] = schema.EnumEntry{Name: e.Name, Value: e.Value}
		}
		return schema.Enum(entries...), nil
	case "optional":
		elem, err := decodeTypeJSON(tj.Elem)
		if err != nil {
			return nil, err
		}
		return schema.Optional(elem), nil
	case "list":
		elem, err := decodeTypeJSON(tj.Elem)
		if err != nil {
			return nil, err
		}
		return schema.List(elem), nil
	case "fixed_list":
		elem, err := decodeTypeJSON(tj.Elem)
		if err != nil {
			return nil, err
		}
		return schema.FixedList(elem, tj.FixedLen), nil
	case "map":
		key, err := decodeTypeJSON(tj.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodeTypeJSON(tj.Val)
		if err != nil {
			return nil, err
		}
		return schema.Map(key, val), nil
	case "union":
		cases := make([]schema.Field, len(tj.Cases))
		for i, c := range tj.Cases {
			t, err := decodeTypeJSON(c.Type)
			if err != nil {
				return nil, err
			}
			cases[i] = schema.UnionCase(c.Tag, t)
		}
		return schema.Union(cases...), nil
	case "struct":
		fields := make([]schema.Field, len(tj.Fields))
		for i, f := range tj.Fields {
			t, err := decodeTypeJSON(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = schema.StructField(f.Name, t)
		}
		return schema.Struct(fields...), nil
	case "user_defined":
		return schema.UserDefined(tj.Ref), nil
	default:
		return nil, bare.NewError(bare.InvalidValue, "unknown type kind %q", tj.Kind)
	}
}

// valueToJSON renders a decoded bare.Value as a plain interface{} tree
// suitable for json.Marshal, for the decode command's human-readable
// output.
func valueToJSON(v bare.Value) interface{} {
	switch v.Kind {
	case bare.KindUint, bare.KindU8, bare.KindU16, bare.KindU32, bare.KindU64, bare.KindEnum:
		return v.Uint()
	case bare.KindInt, bare.KindI8, bare.KindI16, bare.KindI32, bare.KindI64:
		return v.Int()
	case bare.KindF32, bare.KindF64:
		return v.Float()
	case bare.KindBool:
		return v.Bool()
	case bare.KindString:
		return v.Str()
	case bare.KindBytes:
		return fmt.Sprintf("%x", v.Bytes())
	case bare.KindVoid:
		return nil
	case bare.KindOptional:
		inner, ok := v.Optional()
		if !ok {
			return nil
		}
		return valueToJSON(inner)
	case bare.KindList:
		items := v.List()
		out := make([]interface{}, len(items))
		for i, it := range items {
			out[i] = valueToJSON(it)
		}
		return out
	case bare.KindMap:
		entries := v.Entries()
		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			out[fmt.Sprint(valueToJSON(e.Key))] = valueToJSON(e.Value)
		}
		return out
	case bare.KindUnion:
		u := v.Union()
		return map[string]interface{}{"tag": u.Tag, "value": valueToJSON(u.Value)}
	case bare.KindStruct:
		fields := v.Fields()
		out := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			out[f.Name] = valueToJSON(f.Value)
		}
		return out
	default:
		return nil
	}
}
