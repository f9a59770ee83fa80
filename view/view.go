// Package view implements the typed view of §4.8: read/write access to a
// struct value stored in a region, addressed by dotted field path and
// backed by a precomputed layout.Layout rather than a fresh schema walk on
// every access.
package view

import (
	"encoding/binary"
	"strings"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/layout"
	"github.com/barewire/barewire/region"
	"github.com/barewire/barewire/schema"
	"github.com/barewire/barewire/wire"
)

// handleWidth is the byte width of a handle slot; see layout.handleSize.
const handleWidth = 16

// View provides get/set/update access to a struct-shaped region. Variable
// length fields (string, data, list, map, union, optional, and the varint
// kinds uint/int/enum) are
// stored out of line: the fixed layout holds an (offset, length) handle
// into a variable area that begins right after the fixed area, and Set
// appends new bytes there rather than attempting in-place resizing.
type View struct {
	region   *region.Region
	sch      *schema.ValidatedSchema
	layout   *layout.Layout
	varStart int
	prefix   string
}

// New builds a View over region r for the struct type identified by root,
// which must be sch's root type or a type reachable from it.
func New(r *region.Region, sch *schema.ValidatedSchema, root *schema.Type) (*View, error) {
	l, err := layout.Compute(sch, root)
	if err != nil {
		return nil, err
	}
	if r.Len() < l.Size {
		return nil, bare.NewError(bare.InvalidValue, "region of %d bytes is too small for fixed layout of %d bytes", r.Len(), l.Size)
	}
	return &View{region: r, sch: sch, layout: l, varStart: l.Size}, nil
}

func (v *View) fullPath(path string) string {
	if v.prefix == "" {
		return path
	}
	if path == "" {
		return v.prefix
	}
	return v.prefix + "." + path
}

// FieldExists reports whether path names a field of this view.
func (v *View) FieldExists(path string) bool {
	_, err := v.layout.Lookup(v.fullPath(path))
	return err == nil
}

// RootFieldNames returns the immediate (non-nested) field names of this
// view's struct.
func (v *View) RootFieldNames() ([]string, error) {
	t, err := v.typeAt(v.prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names, nil
}

// Get reads the value at path.
func (v *View) Get(path string) (bare.Value, error) {
	full := v.fullPath(path)
	e, err := v.layout.Lookup(full)
	if err != nil {
		return bare.Value{}, err
	}

	if !e.Handle {
		buf := v.region.Bytes()[e.Offset : e.Offset+e.Size]
		return wire.DecodeField(v.sch, e.Type, buf)
	}

	off, length, err := v.readHandle(e)
	if err != nil {
		return bare.Value{}, err
	}
	start := v.varStart + off
	end := start + length
	if start < 0 || end > v.region.Len() {
		return bare.Value{}, bare.NewErrorPath(bare.OutOfBounds, full, "variable field handle [%d,%d) exceeds region", start, end)
	}
	buf := v.region.Bytes()[start:end]
	return wire.DecodeField(v.sch, e.Type, buf)
}

// Set writes val at path. Fixed-width fields are overwritten in place;
// variable-width fields are appended to the variable area and the field's
// handle is updated to point at the new bytes, leaving the old bytes as
// unreachable dead space rather than compacting the region.
func (v *View) Set(path string, val bare.Value) error {
	full := v.fullPath(path)
	e, err := v.layout.Lookup(full)
	if err != nil {
		return err
	}

	encoded, err := wire.EncodeField(v.sch, e.Type, val)
	if err != nil {
		return err
	}

	if !e.Handle {
		if len(encoded) != e.Size {
			return bare.NewErrorPath(bare.Encoding, full, "encoded size %d does not match fixed field size %d", len(encoded), e.Size)
		}
		copy(v.region.Bytes()[e.Offset:e.Offset+e.Size], encoded)
		return nil
	}

	oldLen := v.region.Len()
	grown, err := v.region.Resize(oldLen + len(encoded))
	if err != nil {
		return err
	}
	v.region = grown
	copy(v.region.Bytes()[oldLen:], encoded)
	return v.writeHandle(e, oldLen-v.varStart, len(encoded))
}

// Update reads path, applies fn, and writes the result back.
func (v *View) Update(path string, fn func(bare.Value) (bare.Value, error)) error {
	cur, err := v.Get(path)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return v.Set(path, next)
}

// Nested returns a View scoped to the struct field at path, sharing the
// same backing region, schema, and layout.
func (v *View) Nested(path string) (*View, error) {
	full := v.fullPath(path)
	t, err := v.typeAt(full)
	if err != nil {
		return nil, err
	}
	if t.Kind != schema.KindStruct {
		return nil, bare.NewErrorPath(bare.InvalidValue, full, "field is not a struct")
	}
	return &View{region: v.region, sch: v.sch, layout: v.layout, varStart: v.varStart, prefix: full}, nil
}

// Region returns the view's backing region.
func (v *View) Region() *region.Region { return v.region }

func (v *View) typeAt(path string) (*schema.Type, error) {
	cur := v.sch.Resolve(v.layout.Root)
	if path == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(path, ".") {
		if cur.Kind != schema.KindStruct {
			return nil, bare.NewErrorPath(bare.InvalidValue, path, "path descends into a non-struct type")
		}
		found := false
		for _, f := range cur.Fields {
			if f.Name == seg {
				cur = v.sch.Resolve(f.Type)
				found = true
				break
			}
		}
		if !found {
			return nil, bare.NewErrorPath(bare.InvalidValue, path, "no field named %q", seg)
		}
	}
	return cur, nil
}

func (v *View) readHandle(e layout.Entry) (offset int, length int, err error) {
	if e.Offset+handleWidth > v.region.Len() {
		return 0, 0, bare.NewErrorPath(bare.OutOfBounds, e.Path, "handle slot exceeds region")
	}
	b := v.region.Bytes()[e.Offset : e.Offset+handleWidth]
	return int(binary.LittleEndian.Uint64(b[0:8])), int(binary.LittleEndian.Uint64(b[8:16])), nil
}

func (v *View) writeHandle(e layout.Entry, offset, length int) error {
	if e.Offset+handleWidth > v.region.Len() {
		return bare.NewErrorPath(bare.OutOfBounds, e.Path, "handle slot exceeds region")
	}
	b := v.region.Bytes()[e.Offset : e.Offset+handleWidth]
	binary.LittleEndian.PutUint64(b[0:8], uint64(offset))
	binary.LittleEndian.PutUint64(b[8:16], uint64(length))
	return nil
}
