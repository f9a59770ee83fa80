package wire

import (
	"fmt"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
)

// Encode serializes v, which must conform to sch's root type, into the
// BARE wire format described by §4.5.
func Encode(sch *schema.ValidatedSchema, v bare.Value) ([]byte, error) {
	w := NewWriter()
	if err := encodeType(w, sch.RootType(), v, sch, sch.Root()); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses buf as a value of sch's root type.
func Decode(sch *schema.ValidatedSchema, buf []byte) (bare.Value, error) {
	r := NewReader(buf)
	return decodeType(r, sch.RootType(), sch, sch.Root())
}

// EncodeField serializes v as a standalone value of type t, the same way a
// single field would be written inside a larger struct. The typed view uses
// this to encode an individual field's bytes for placement in, or append to,
// a region without re-encoding the whole enclosing struct.
func EncodeField(sch *schema.ValidatedSchema, t *schema.Type, v bare.Value) ([]byte, error) {
	w := NewWriter()
	if err := encodeType(w, t, v, sch, "field"); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeField parses buf as a standalone value of type t.
func DecodeField(sch *schema.ValidatedSchema, t *schema.Type, buf []byte) (bare.Value, error) {
	r := NewReader(buf)
	return decodeType(r, t, sch, "field")
}

func encodeType(w *Writer, t *schema.Type, v bare.Value, sch *schema.ValidatedSchema, path string) error {
	if t.Kind == schema.KindUserDefined {
		next, ok := sch.Lookup(t.Ref)
		if !ok {
			return bare.NewErrorPath(bare.Encoding, path, "undefined type reference %q", t.Ref)
		}
		return encodeType(w, next, v, sch, path)
	}

	if !kindMatches(v.Kind, t.Kind) {
		return bare.NewErrorPath(bare.Encoding, path, "value kind does not match schema type %s", t.Kind)
	}

	switch t.Kind {
	case schema.KindUint:
		EncodeUint(w, v.Uint())
	case schema.KindInt:
		EncodeInt(w, v.Int())
	case schema.KindU8:
		EncodeU8(w, uint8(v.Uint()))
	case schema.KindU16:
		EncodeU16(w, uint16(v.Uint()))
	case schema.KindU32:
		EncodeU32(w, uint32(v.Uint()))
	case schema.KindU64:
		EncodeU64(w, v.Uint())
	case schema.KindI8:
		EncodeI8(w, int8(v.Int()))
	case schema.KindI16:
		EncodeI16(w, int16(v.Int()))
	case schema.KindI32:
		EncodeI32(w, int32(v.Int()))
	case schema.KindI64:
		EncodeI64(w, v.Int())
	case schema.KindF32:
		EncodeF32(w, float32(v.Float()))
	case schema.KindF64:
		EncodeF64(w, v.Float())
	case schema.KindBool:
		EncodeBool(w, v.Bool())
	case schema.KindString:
		EncodeString(w, v.Str())
	case schema.KindData:
		EncodeData(w, v.Bytes())
	case schema.KindFixedData:
		if err := EncodeFixedData(w, v.Bytes(), t.FixedLen); err != nil {
			return annotatePath(err, path)
		}
	case schema.KindVoid:
		EncodeVoid(w)
	case schema.KindEnum:
		EncodeEnum(w, v.Uint())
	case schema.KindOptional:
		inner, ok := v.Optional()
		if !ok {
			EncodeBool(w, false)
			return nil
		}
		EncodeBool(w, true)
		return encodeType(w, t.Elem, inner, sch, path+".optional")
	case schema.KindList:
		items := v.List()
		EncodeUint(w, uint64(len(items)))
		for i, item := range items {
			if err := encodeType(w, t.Elem, item, sch, itemPath(path, i)); err != nil {
				return err
			}
		}
	case schema.KindFixedList:
		items := v.List()
		if len(items) != t.FixedLen {
			return bare.NewErrorPath(bare.Encoding, path, "fixed_list length mismatch: want %d, have %d", t.FixedLen, len(items))
		}
		for i, item := range items {
			if err := encodeType(w, t.Elem, item, sch, itemPath(path, i)); err != nil {
				return err
			}
		}
	case schema.KindMap:
		return encodeMapCanonical(w, t, v.Entries(), sch, path)
	case schema.KindUnion:
		return encodeUnion(w, t, v.Union(), sch, path)
	case schema.KindStruct:
		for _, f := range t.Fields {
			fv, ok := v.Field(f.Name)
			if !ok {
				return bare.NewErrorPath(bare.Encoding, path+"."+f.Name, "missing struct field %q", f.Name)
			}
			if err := encodeType(w, f.Type, fv, sch, path+"."+f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeUnion(w *Writer, t *schema.Type, u *bare.UnionPayload, sch *schema.ValidatedSchema, path string) error {
	if u == nil {
		return bare.NewErrorPath(bare.Encoding, path, "union value missing its selected case")
	}
	for _, c := range t.Cases {
		if c.Tag == u.Tag {
			EncodeUint(w, u.Tag)
			return encodeType(w, c.Type, u.Value, sch, unionCasePath(path, c.Tag))
		}
	}
	return bare.NewErrorPath(bare.Encoding, path, "union tag %d has no matching schema case", u.Tag)
}

func decodeType(r *Reader, t *schema.Type, sch *schema.ValidatedSchema, path string) (bare.Value, error) {
	if t.Kind == schema.KindUserDefined {
		next, ok := sch.Lookup(t.Ref)
		if !ok {
			return bare.Value{}, bare.NewErrorPath(bare.Decoding, path, "undefined type reference %q", t.Ref)
		}
		return decodeType(r, next, sch, path)
	}

	switch t.Kind {
	case schema.KindUint:
		v, _, err := DecodeUint(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.UintValue(v), nil
	case schema.KindInt:
		v, _, err := DecodeInt(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.IntValue(v), nil
	case schema.KindU8:
		v, err := DecodeU8(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.U8Value(v), nil
	case schema.KindU16:
		v, err := DecodeU16(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.U16Value(v), nil
	case schema.KindU32:
		v, err := DecodeU32(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.U32Value(v), nil
	case schema.KindU64:
		v, err := DecodeU64(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.U64Value(v), nil
	case schema.KindI8:
		v, err := DecodeI8(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.I8Value(v), nil
	case schema.KindI16:
		v, err := DecodeI16(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.I16Value(v), nil
	case schema.KindI32:
		v, err := DecodeI32(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.I32Value(v), nil
	case schema.KindI64:
		v, err := DecodeI64(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.I64Value(v), nil
	case schema.KindF32:
		v, err := DecodeF32(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.F32Value(v), nil
	case schema.KindF64:
		v, err := DecodeF64(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.F64Value(v), nil
	case schema.KindBool:
		v, err := DecodeBool(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.BoolValue(v), nil
	case schema.KindString:
		v, err := DecodeString(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.StringValue(v), nil
	case schema.KindData:
		v, err := DecodeData(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.BytesValue(v), nil
	case schema.KindFixedData:
		v, err := DecodeFixedData(r, t.FixedLen)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.BytesValue(v), nil
	case schema.KindVoid:
		_ = DecodeVoid(r)
		return bare.VoidValue(), nil
	case schema.KindEnum:
		v, err := DecodeEnum(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		return bare.EnumValue(v), nil
	case schema.KindOptional:
		present, err := DecodeBool(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		if !present {
			return bare.NoneValue(), nil
		}
		inner, err := decodeType(r, t.Elem, sch, path+".optional")
		if err != nil {
			return bare.Value{}, err
		}
		return bare.SomeValue(inner), nil
	case schema.KindList:
		n, _, err := DecodeUint(r)
		if err != nil {
			return bare.Value{}, annotatePath(err, path)
		}
		items := make([]bare.Value, 0, n)
		for i := uint64(0); i < n; i++ {
			item, err := decodeType(r, t.Elem, sch, itemPath(path, int(i)))
			if err != nil {
				return bare.Value{}, err
			}
			items = append(items, item)
		}
		return bare.ListValue(items), nil
	case schema.KindFixedList:
		items := make([]bare.Value, 0, t.FixedLen)
		for i := 0; i < t.FixedLen; i++ {
			item, err := decodeType(r, t.Elem, sch, itemPath(path, i))
			if err != nil {
				return bare.Value{}, err
			}
			items = append(items, item)
		}
		return bare.ListValue(items), nil
	case schema.KindMap:
		return decodeMap(r, t, sch, path)
	case schema.KindUnion:
		return decodeUnion(r, t, sch, path)
	case schema.KindStruct:
		fields := make([]bare.StructField, 0, len(t.Fields))
		for _, f := range t.Fields {
			fv, err := decodeType(r, f.Type, sch, path+"."+f.Name)
			if err != nil {
				return bare.Value{}, err
			}
			fields = append(fields, bare.StructField{Name: f.Name, Value: fv})
		}
		return bare.StructValue(fields), nil
	default:
		return bare.Value{}, bare.NewErrorPath(bare.Decoding, path, "unsupported type kind %s", t.Kind)
	}
}

func decodeUnion(r *Reader, t *schema.Type, sch *schema.ValidatedSchema, path string) (bare.Value, error) {
	tag, _, err := DecodeUint(r)
	if err != nil {
		return bare.Value{}, annotatePath(err, path)
	}
	for _, c := range t.Cases {
		if c.Tag == tag {
			inner, err := decodeType(r, c.Type, sch, unionCasePath(path, tag))
			if err != nil {
				return bare.Value{}, err
			}
			return bare.UnionValue(tag, inner), nil
		}
	}
	return bare.Value{}, bare.NewErrorPath(bare.Decoding, path, "unknown union tag %d", tag)
}

func kindMatches(vk bare.ValueKind, tk schema.TypeKind) bool {
	switch tk {
	case schema.KindUint:
		return vk == bare.KindUint
	case schema.KindInt:
		return vk == bare.KindInt
	case schema.KindU8:
		return vk == bare.KindU8
	case schema.KindU16:
		return vk == bare.KindU16
	case schema.KindU32:
		return vk == bare.KindU32
	case schema.KindU64:
		return vk == bare.KindU64
	case schema.KindI8:
		return vk == bare.KindI8
	case schema.KindI16:
		return vk == bare.KindI16
	case schema.KindI32:
		return vk == bare.KindI32
	case schema.KindI64:
		return vk == bare.KindI64
	case schema.KindF32:
		return vk == bare.KindF32
	case schema.KindF64:
		return vk == bare.KindF64
	case schema.KindBool:
		return vk == bare.KindBool
	case schema.KindString:
		return vk == bare.KindString
	case schema.KindData, schema.KindFixedData:
		return vk == bare.KindBytes
	case schema.KindVoid:
		return vk == bare.KindVoid
	case schema.KindEnum:
		return vk == bare.KindEnum
	case schema.KindOptional:
		return vk == bare.KindOptional
	case schema.KindList, schema.KindFixedList:
		return vk == bare.KindList
	case schema.KindMap:
		return vk == bare.KindMap
	case schema.KindUnion:
		return vk == bare.KindUnion
	case schema.KindStruct:
		return vk == bare.KindStruct
	default:
		return false
	}
}

func itemPath(path string, _ int) string {
	return path + ".item"
}

func unionCasePath(path string, tag uint64) string {
	return fmt.Sprintf("%s.case%d", path, tag)
}

func annotatePath(err error, path string) error {
	var be *bare.Error
	if e, ok := err.(*bare.Error); ok {
		be = e
	}
	if be != nil && be.Path == "" {
		be.Path = path
	}
	return err
}
