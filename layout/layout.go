// Package layout implements the field-layout engine of §4.7: given a
// struct-rooted validated schema, compute a stable map from dotted field
// path to byte offset, size, and alignment, so that view.View can do
// direct offset arithmetic instead of re-walking the schema on every
// access.
package layout

import (
	"strings"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
)

// handleSize is the width of the fixed "handle slot" reserved in a fixed
// layout for a variable-length field: an 8-byte offset into the variable
// region followed by an 8-byte length, both aligned to 8 bytes.
const handleSize = 16

// handleAlignment is the alignment of a handle slot.
const handleAlignment = 8

// Entry describes one field's position within a struct's fixed layout.
type Entry struct {
	Path      string
	Type      *schema.Type
	Offset    int
	Size      int
	Alignment int
	// Handle is true when the field is variable-length and Offset/Size
	// describe its handle slot rather than its encoded bytes directly.
	Handle bool
}

// Layout maps dotted field paths to their Entry within a struct's fixed
// region, plus the struct's total fixed size and alignment.
type Layout struct {
	Root      *schema.Type
	Entries   map[string]Entry
	Order     []string
	Size      int
	Alignment int
}

// Compute builds the Layout for root, which must resolve to a struct type.
// Nested structs are flattened into dotted paths ("addr.city"); lists,
// maps, unions, strings, and data fields are variable-length and are
// assigned a handle slot rather than inline storage, per §4.7's "fixed
// layout over variable payload" design.
func Compute(sch *schema.ValidatedSchema, root *schema.Type) (*Layout, error) {
	resolved := sch.Resolve(root)
	if resolved.Kind != schema.KindStruct {
		return nil, bare.NewError(bare.InvalidValue, "layout root must resolve to a struct, got %s", resolved.Kind)
	}

	l := &Layout{Root: root, Entries: map[string]Entry{}}
	an := schema.NewAnalyzer(sch)
	offset := 0
	maxAlign := 1

	var walk func(prefix string, t *schema.Type) error
	walk = func(prefix string, t *schema.Type) error {
		resolved := sch.Resolve(t)
		if resolved.Kind == schema.KindStruct {
			for _, f := range resolved.Fields {
				path := f.Name
				if prefix != "" {
					path = prefix + "." + f.Name
				}
				if err := walk(path, f.Type); err != nil {
					return err
				}
			}
			return nil
		}

		bounds := an.SizeOf(t)
		align := an.AlignmentOf(t)

		var size int
		handle := false
		if bounds.IsFixed {
			size = int(bounds.MinBytes)
		} else {
			size = handleSize
			align = handleAlignment
			handle = true
		}

		offset = alignUp(offset, align)
		l.Entries[prefix] = Entry{Path: prefix, Type: t, Offset: offset, Size: size, Alignment: align, Handle: handle}
		l.Order = append(l.Order, prefix)
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
		return nil
	}

	for _, f := range resolved.Fields {
		if err := walk(f.Name, f.Type); err != nil {
			return nil, err
		}
	}

	l.Size = alignUp(offset, maxAlign)
	l.Alignment = maxAlign
	return l, nil
}

// Lookup returns the Entry at path, or an error if path isn't present.
func (l *Layout) Lookup(path string) (Entry, error) {
	e, ok := l.Entries[path]
	if !ok {
		return Entry{}, bare.NewErrorPath(bare.InvalidValue, path, "no field at path %q", path)
	}
	return e, nil
}

// Paths returns the dotted paths rooted at prefix (or all paths when
// prefix is empty), in layout order.
func (l *Layout) Paths(prefix string) []string {
	if prefix == "" {
		return l.Order
	}
	var out []string
	for _, p := range l.Order {
		if p == prefix || strings.HasPrefix(p, prefix+".") {
			out = append(out, p)
		}
	}
	return out
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}
