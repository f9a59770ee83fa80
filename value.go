package bare

// ValueKind discriminates the payload held by a Value. Per the design note
// in §9 ("Reflection-driven type conformance"), BAREWire does not dispatch
// on Go's runtime type information to decide how to encode an arbitrary
// value under a schema; instead callers convert their domain types into
// this explicit sum type, and serialization becomes a total function of
// (schema, Value) -> bytes.
type ValueKind int

const (
	KindUint ValueKind = iota
	KindInt
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindString
	KindBytes // data and fixed_data share a representation
	KindVoid
	KindEnum
	KindOptional
	KindList
	KindMap
	KindUnion
	KindStruct
)

// MapEntry is one (key, value) pair of a Value of KindMap. Keys and values
// are themselves Values so that arbitrarily nested schemas can populate a
// map without a reflection-based adapter.
type MapEntry struct {
	Key   Value
	Value Value
}

// UnionPayload is the payload of a Value of KindUnion: a selected case tag
// plus the case's inner value (which may be VoidValue() for a void case).
type UnionPayload struct {
	Tag   uint64
	Value Value
}

// StructField is one named field of a Value of KindStruct, kept in
// declaration order since BARE structs encode positionally rather than by
// name.
type StructField struct {
	Name  string
	Value Value
}

// Value is the explicit runtime representation of data conforming to a
// BARE schema. Exactly one of the typed fields below is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind

	u    uint64
	i    int64
	f    float64
	b    bool
	s    string
	data []byte

	optional *Value // nil means None
	list     []Value
	entries  []MapEntry
	union    *UnionPayload
	fields   []StructField
}

func UintValue(v uint64) Value    { return Value{Kind: KindUint, u: v} }
func IntValue(v int64) Value      { return Value{Kind: KindInt, i: v} }
func U8Value(v uint8) Value       { return Value{Kind: KindU8, u: uint64(v)} }
func U16Value(v uint16) Value     { return Value{Kind: KindU16, u: uint64(v)} }
func U32Value(v uint32) Value     { return Value{Kind: KindU32, u: uint64(v)} }
func U64Value(v uint64) Value     { return Value{Kind: KindU64, u: v} }
func I8Value(v int8) Value        { return Value{Kind: KindI8, i: int64(v)} }
func I16Value(v int16) Value      { return Value{Kind: KindI16, i: int64(v)} }
func I32Value(v int32) Value      { return Value{Kind: KindI32, i: int64(v)} }
func I64Value(v int64) Value      { return Value{Kind: KindI64, i: v} }
func F32Value(v float32) Value    { return Value{Kind: KindF32, f: float64(v)} }
func F64Value(v float64) Value    { return Value{Kind: KindF64, f: v} }
func BoolValue(v bool) Value      { return Value{Kind: KindBool, b: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, s: v} }
func BytesValue(v []byte) Value   { return Value{Kind: KindBytes, data: v} }
func VoidValue() Value            { return Value{Kind: KindVoid} }
func EnumValue(v uint64) Value    { return Value{Kind: KindEnum, u: v} }

// NoneValue builds an optional Value carrying no inner value.
func NoneValue() Value { return Value{Kind: KindOptional, optional: nil} }

// SomeValue builds an optional Value wrapping inner.
func SomeValue(inner Value) Value {
	v := inner
	return Value{Kind: KindOptional, optional: &v}
}

func ListValue(items []Value) Value { return Value{Kind: KindList, list: items} }

func MapValue(entries []MapEntry) Value { return Value{Kind: KindMap, entries: entries} }

func UnionValue(tag uint64, inner Value) Value {
	return Value{Kind: KindUnion, union: &UnionPayload{Tag: tag, Value: inner}}
}

func StructValue(fields []StructField) Value { return Value{Kind: KindStruct, fields: fields} }

func (v Value) Uint() uint64             { return v.u }
func (v Value) Int() int64               { return v.i }
func (v Value) Float() float64           { return v.f }
func (v Value) Bool() bool               { return v.b }
func (v Value) Str() string              { return v.s }
func (v Value) Bytes() []byte            { return v.data }
func (v Value) Optional() (Value, bool)  { return derefOptional(v.optional) }
func (v Value) List() []Value            { return v.list }
func (v Value) Entries() []MapEntry      { return v.entries }
func (v Value) Union() *UnionPayload     { return v.union }
func (v Value) Fields() []StructField    { return v.fields }

func derefOptional(p *Value) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	return *p, true
}

// Field looks up a struct field by name, returning ok=false if absent.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}
