// Package schema implements the BARE type algebra (§3 of the design): a
// closed set of primitive and aggregate type tags, a schema container
// mapping type names to types with a designated root, and the draft/
// validated lifecycle that gates which schemas the wire codec and layout
// engine will accept.
//
// Per the design note on phantom state, draft and validated schemas are
// distinct Go types rather than one type carrying a status flag: only a
// *ValidatedSchema, produced exclusively by Validate, is accepted anywhere
// outside this package.
package schema

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// TypeKind is the tag of the closed BARE type algebra.
type TypeKind int

const (
	KindUint TypeKind = iota
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
	KindData
	KindFixedData
	KindVoid
	KindEnum
	KindOptional
	KindList
	KindFixedList
	KindMap
	KindUnion
	KindStruct
	KindUserDefined
)

func (k TypeKind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindData:
		return "data"
	case KindFixedData:
		return "fixed_data"
	case KindVoid:
		return "void"
	case KindEnum:
		return "enum"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindFixedList:
		return "fixed_list"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindStruct:
		return "struct"
	case KindUserDefined:
		return "user_defined"
	default:
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
}

// IsPrimitive reports whether k is one of the non-aggregate, non-reference
// tags of §3.
func (k TypeKind) IsPrimitive() bool {
	switch k {
	case KindUint, KindInt, KindU8, KindU16, KindU32, KindU64,
		KindI8, KindI16, KindI32, KindI64, KindF32, KindF64,
		KindBool, KindString, KindData, KindFixedData, KindVoid, KindEnum:
		return true
	default:
		return false
	}
}

// EnumEntry is one name->value pair of an enum declaration.
type EnumEntry struct {
	Name  string
	Value uint64
}

// Field is one ordered struct field, or one union case when used inside a
// Type of KindUnion (in which case Name is informational only — unions
// dispatch on Tag, not Name).
type Field struct {
	Name string
	Type *Type
	Tag  uint64 // meaningful only for union cases
}

// Type is a node of the BARE type algebra. Exactly the fields relevant to
// Kind are populated; the others are zero.
type Type struct {
	Kind TypeKind

	// KindFixedData, KindFixedList
	FixedLen int

	// KindEnum
	Enum []EnumEntry

	// KindOptional, KindList, KindFixedList
	Elem *Type

	// KindMap
	Key *Type
	Val *Type

	// KindUnion: cases ordered by declaration, dispatched by Tag
	Cases []Field

	// KindStruct: ordered fields
	Fields []Field

	// KindUserDefined: the referenced type name
	Ref string
}

func Uint() *Type       { return &Type{Kind: KindUint} }
func Int() *Type        { return &Type{Kind: KindInt} }
func U8() *Type         { return &Type{Kind: KindU8} }
func U16() *Type        { return &Type{Kind: KindU16} }
func U32() *Type        { return &Type{Kind: KindU32} }
func U64() *Type        { return &Type{Kind: KindU64} }
func I8() *Type         { return &Type{Kind: KindI8} }
func I16() *Type        { return &Type{Kind: KindI16} }
func I32() *Type        { return &Type{Kind: KindI32} }
func I64() *Type        { return &Type{Kind: KindI64} }
func F32() *Type        { return &Type{Kind: KindF32} }
func F64() *Type        { return &Type{Kind: KindF64} }
func Bool() *Type       { return &Type{Kind: KindBool} }
func String() *Type     { return &Type{Kind: KindString} }
func Data() *Type       { return &Type{Kind: KindData} }
func Void() *Type       { return &Type{Kind: KindVoid} }

func FixedData(n int) *Type { return &Type{Kind: KindFixedData, FixedLen: n} }

func Enum(entries ...EnumEntry) *Type { return &Type{Kind: KindEnum, Enum: entries} }

func Optional(elem *Type) *Type { return &Type{Kind: KindOptional, Elem: elem} }

func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

func FixedList(elem *Type, n int) *Type {
	return &Type{Kind: KindFixedList, Elem: elem, FixedLen: n}
}

func Map(key, val *Type) *Type { return &Type{Kind: KindMap, Key: key, Val: val} }

func Union(cases ...Field) *Type { return &Type{Kind: KindUnion, Cases: cases} }

func Struct(fields ...Field) *Type { return &Type{Kind: KindStruct, Fields: fields} }

func UserDefined(name string) *Type { return &Type{Kind: KindUserDefined, Ref: name} }

// StructField is a convenience constructor for a Type.Fields entry.
func StructField(name string, t *Type) Field { return Field{Name: name, Type: t} }

// UnionCase is a convenience constructor for a Type.Cases entry.
func UnionCase(tag uint64, t *Type) Field { return Field{Tag: tag, Type: t} }

// Equal reports structural equality of two types. user_defined types
// compare by referenced name only, per §4.2: "names are part of the
// identity only for user_defined".
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindFixedData:
		return t.FixedLen == o.FixedLen
	case KindFixedList:
		return t.FixedLen == o.FixedLen && t.Elem.Equal(o.Elem)
	case KindEnum:
		if len(t.Enum) != len(o.Enum) {
			return false
		}
		for i := range t.Enum {
			if t.Enum[i] != o.Enum[i] {
				return false
			}
		}
		return true
	case KindOptional, KindList:
		return t.Elem.Equal(o.Elem)
	case KindMap:
		return t.Key.Equal(o.Key) && t.Val.Equal(o.Val)
	case KindUnion:
		if len(t.Cases) != len(o.Cases) {
			return false
		}
		for i := range t.Cases {
			if t.Cases[i].Tag != o.Cases[i].Tag || !t.Cases[i].Type.Equal(o.Cases[i].Type) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindUserDefined:
		return t.Ref == o.Ref
	default:
		return true
	}
}

// DraftSchema is a mutable, in-progress schema under construction. It is
// built up by Define calls and must pass Validate before it can be used by
// the wire codec or layout engine.
type DraftSchema struct {
	root  string
	types map[string]*Type
}

// NewDraftSchema starts a new draft schema with the given root type name.
// The root need not already be defined; Validate checks root presence.
func NewDraftSchema(root string) *DraftSchema {
	return &DraftSchema{root: root, types: make(map[string]*Type)}
}

// Define adds or replaces a named type in the draft. It returns the
// receiver so calls can be chained.
func (d *DraftSchema) Define(name string, t *Type) *DraftSchema {
	d.types[name] = t
	return d
}

// Root returns the draft's designated root type name.
func (d *DraftSchema) Root() string { return d.root }

// ValidatedSchema is a schema that has passed the structural checks in
// validate.go. It is immutable and value-like: once constructed it may be
// freely shared and is the only schema representation the wire codec and
// layout engine accept.
type ValidatedSchema struct {
	root  string
	types map[string]*Type
}

// Root returns the validated schema's root type name.
func (s *ValidatedSchema) Root() string { return s.root }

// RootType returns the Type the root name resolves to. Validate guarantees
// this always succeeds for a *ValidatedSchema.
func (s *ValidatedSchema) RootType() *Type { return s.types[s.root] }

// Lookup resolves a type name against the schema's type map.
func (s *ValidatedSchema) Lookup(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names lists every declared type name in sorted order, so that callers
// get a stable ordering across runs despite the underlying map's random
// iteration.
func (s *ValidatedSchema) Names() []string {
	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Resolve follows t through any number of user_defined indirections and
// returns the first non-reference type. It assumes t belongs to s and that
// s has already been validated (so the chain is finite and every name
// resolves).
func (s *ValidatedSchema) Resolve(t *Type) *Type {
	for t != nil && t.Kind == KindUserDefined {
		t = s.types[t.Ref]
	}
	return t
}
