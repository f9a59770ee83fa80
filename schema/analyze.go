package schema

import "fmt"

// maxVarintLen is the longest a BARE uint/int (LEB128) or enum value can
// ever take, per §4.1: "Maximum 10 bytes to cover 64-bit values."
const maxVarintLen = 10

// SizeBounds is the {min_bytes, max_bytes_opt, is_fixed} triple of §4.4.
// MaxBytes is nil when the type has no statically knowable upper bound.
type SizeBounds struct {
	MinBytes uint64
	MaxBytes *uint64
	IsFixed  bool
}

func fixedSize(n uint64) SizeBounds { return SizeBounds{MinBytes: n, MaxBytes: &n, IsFixed: true} }

func ptr(n uint64) *uint64 { return &n }

// Analyzer computes and memoizes size bounds and alignments over a single
// validated schema: compute once per schema, reuse across every subsequent
// query instead of recomputing a type's bounds on every lookup.
type Analyzer struct {
	schema    *ValidatedSchema
	sizeCache map[*Type]SizeBounds
	alignCache map[*Type]int
}

// NewAnalyzer builds an Analyzer over s.
func NewAnalyzer(s *ValidatedSchema) *Analyzer {
	return &Analyzer{
		schema:     s,
		sizeCache:  make(map[*Type]SizeBounds),
		alignCache: make(map[*Type]int),
	}
}

// SizeOf computes the size bounds of t per the formulas in §4.4.
func (a *Analyzer) SizeOf(t *Type) SizeBounds {
	if t.Kind == KindUserDefined {
		t = a.schema.Resolve(t)
	}
	if b, ok := a.sizeCache[t]; ok {
		return b
	}
	b := a.computeSize(t)
	a.sizeCache[t] = b
	return b
}

func (a *Analyzer) computeSize(t *Type) SizeBounds {
	switch t.Kind {
	case KindU8, KindI8, KindBool:
		return fixedSize(1)
	case KindU16, KindI16:
		return fixedSize(2)
	case KindU32, KindI32, KindF32:
		return fixedSize(4)
	case KindU64, KindI64, KindF64:
		return fixedSize(8)
	case KindVoid:
		return fixedSize(0)
	case KindFixedData:
		return fixedSize(uint64(t.FixedLen))
	case KindUint, KindInt, KindEnum:
		return SizeBounds{MinBytes: 1, MaxBytes: ptr(maxVarintLen), IsFixed: false}
	case KindString, KindData:
		return SizeBounds{MinBytes: 1, MaxBytes: nil, IsFixed: false}
	case KindOptional:
		inner := a.SizeOf(t.Elem)
		var max *uint64
		if inner.MaxBytes != nil {
			max = ptr(*inner.MaxBytes + 1)
		}
		return SizeBounds{MinBytes: 1, MaxBytes: max, IsFixed: false}
	case KindList:
		return SizeBounds{MinBytes: 1, MaxBytes: nil, IsFixed: false}
	case KindFixedList:
		inner := a.SizeOf(t.Elem)
		n := uint64(t.FixedLen)
		if inner.IsFixed {
			return fixedSize(n * inner.MinBytes)
		}
		return SizeBounds{MinBytes: n * inner.MinBytes, MaxBytes: nil, IsFixed: false}
	case KindMap:
		return SizeBounds{MinBytes: 1, MaxBytes: nil, IsFixed: false}
	case KindUnion:
		min := uint64(1)
		var minCase uint64
		first := true
		maxDefined := true
		var maxCase uint64
		for _, c := range t.Cases {
			cb := a.SizeOf(c.Type)
			if first || cb.MinBytes < minCase {
				minCase = cb.MinBytes
			}
			first = false
			if cb.MaxBytes == nil {
				maxDefined = false
			} else if *cb.MaxBytes > maxCase {
				maxCase = *cb.MaxBytes
			}
		}
		min += minCase
		var max *uint64
		if maxDefined {
			max = ptr(maxCase + maxVarintLen)
		}
		return SizeBounds{MinBytes: min, MaxBytes: max, IsFixed: false}
	case KindStruct:
		var min uint64
		var max uint64
		maxDefined := true
		fixed := true
		for _, f := range t.Fields {
			fb := a.SizeOf(f.Type)
			min += fb.MinBytes
			if !fb.IsFixed {
				fixed = false
			}
			if fb.MaxBytes == nil {
				maxDefined = false
			} else {
				max += *fb.MaxBytes
			}
		}
		var maxp *uint64
		if maxDefined {
			maxp = ptr(max)
		}
		return SizeBounds{MinBytes: min, MaxBytes: maxp, IsFixed: fixed}
	default:
		return SizeBounds{}
	}
}

// AlignmentOf returns t's natural alignment: 1/2/4/8 for fixed-width
// primitives, 1 for variable primitives, and the max alignment of an
// aggregate's components, per §4.4.
func (a *Analyzer) AlignmentOf(t *Type) int {
	if t.Kind == KindUserDefined {
		t = a.schema.Resolve(t)
	}
	if al, ok := a.alignCache[t]; ok {
		return al
	}
	al := a.computeAlignment(t)
	a.alignCache[t] = al
	return al
}

func (a *Analyzer) computeAlignment(t *Type) int {
	switch t.Kind {
	case KindU8, KindI8, KindBool:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	case KindUint, KindInt, KindEnum, KindString, KindData, KindFixedData, KindVoid:
		return 1
	case KindOptional, KindList, KindFixedList:
		return a.AlignmentOf(t.Elem)
	case KindMap:
		return maxInt(a.AlignmentOf(t.Key), a.AlignmentOf(t.Val))
	case KindUnion:
		m := 1
		for _, c := range t.Cases {
			m = maxInt(m, a.AlignmentOf(c.Type))
		}
		return m
	case KindStruct:
		m := 1
		for _, f := range t.Fields {
			m = maxInt(m, a.AlignmentOf(f.Type))
		}
		return m
	default:
		return 1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Verdict is the schema-compatibility outcome of §4.4.
type Verdict int

const (
	FullyCompatible Verdict = iota
	BackwardCompatible
	ForwardCompatible
	Incompatible
)

func (v Verdict) String() string {
	switch v {
	case FullyCompatible:
		return "FullyCompatible"
	case BackwardCompatible:
		return "BackwardCompatible"
	case ForwardCompatible:
		return "ForwardCompatible"
	case Incompatible:
		return "Incompatible"
	default:
		return "Unknown"
	}
}

// CompatibilityResult is the verdict plus, for Incompatible, the reasons
// that drove it.
type CompatibilityResult struct {
	Verdict Verdict
	Reasons []string
}

// CheckCompatibility compares old and new over their roots per the rules
// of §4.4.
func CheckCompatibility(old, new *ValidatedSchema) CompatibilityResult {
	ot := old.Resolve(old.RootType())
	nt := new.Resolve(new.RootType())

	switch ot.Kind {
	case KindStruct:
		if nt.Kind != KindStruct {
			return CompatibilityResult{Incompatible, []string{"root kind changed from struct to " + nt.Kind.String()}}
		}
		v, reasons := structDirection(ot.Fields, nt.Fields, old, new)
		return CompatibilityResult{v, reasons}
	case KindUnion:
		if nt.Kind != KindUnion {
			return CompatibilityResult{Incompatible, []string{"root kind changed from union to " + nt.Kind.String()}}
		}
		v, reasons := unionDirection(ot.Cases, nt.Cases, old, new)
		return CompatibilityResult{v, reasons}
	default:
		if compatibleTypes(ot, nt, old, new) {
			return CompatibilityResult{Verdict: FullyCompatible}
		}
		return CompatibilityResult{Incompatible, []string{fmt.Sprintf("root type %s is not compatible with %s", ot.Kind, nt.Kind)}}
	}
}

func structDirection(oldFields, newFields []Field, os, ns *ValidatedSchema) (Verdict, []string) {
	minLen := len(oldFields)
	if len(newFields) < minLen {
		minLen = len(newFields)
	}
	for i := 0; i < minLen; i++ {
		of, nf := oldFields[i], newFields[i]
		if of.Name != nf.Name {
			return Incompatible, []string{fmt.Sprintf("field %d renamed from %q to %q", i, of.Name, nf.Name)}
		}
		if !compatibleTypes(of.Type, nf.Type, os, ns) {
			return Incompatible, []string{fmt.Sprintf("field %q changed incompatibly", of.Name)}
		}
	}
	switch {
	case len(oldFields) == len(newFields):
		return FullyCompatible, nil
	case len(newFields) > len(oldFields):
		// new only added fields past old's prefix: new can read old data.
		return BackwardCompatible, nil
	default:
		// old has a field beyond new's prefix that new's data can't supply;
		// struct roots have no symmetric forward-compatible case (§4.4).
		return Incompatible, []string{fmt.Sprintf("old root requires field %q which new does not have", oldFields[len(newFields)].Name)}
	}
}

func unionDirection(oldCases, newCases []Field, os, ns *ValidatedSchema) (Verdict, []string) {
	oldByTag := make(map[uint64]*Type, len(oldCases))
	for _, c := range oldCases {
		oldByTag[c.Tag] = c.Type
	}
	newByTag := make(map[uint64]*Type, len(newCases))
	for _, c := range newCases {
		newByTag[c.Tag] = c.Type
	}
	for tag, ot := range oldByTag {
		if nt, ok := newByTag[tag]; ok && !compatibleTypes(ot, nt, os, ns) {
			return Incompatible, []string{fmt.Sprintf("union case %d changed incompatibly", tag)}
		}
	}
	oldCoveredByNew := true
	for tag := range oldByTag {
		if _, ok := newByTag[tag]; !ok {
			oldCoveredByNew = false
		}
	}
	newCoveredByOld := true
	for tag := range newByTag {
		if _, ok := oldByTag[tag]; !ok {
			newCoveredByOld = false
		}
	}
	switch {
	case oldCoveredByNew && newCoveredByOld && len(oldByTag) == len(newByTag):
		return FullyCompatible, nil
	case oldCoveredByNew:
		return BackwardCompatible, nil
	case newCoveredByOld:
		return ForwardCompatible, nil
	default:
		return Incompatible, []string{"union case sets diverge in both directions"}
	}
}

// compatibleTypes is the structural, recursive type-compatibility
// predicate of §4.4: user_defined references compare by name only.
func compatibleTypes(old, new *Type, os, ns *ValidatedSchema) bool {
	if old == nil || new == nil {
		return old == new
	}
	if old.Kind == KindUserDefined && new.Kind == KindUserDefined {
		return old.Ref == new.Ref
	}
	if old.Kind != new.Kind {
		return false
	}
	switch old.Kind {
	case KindFixedData:
		return old.FixedLen == new.FixedLen
	case KindFixedList:
		return old.FixedLen == new.FixedLen && compatibleTypes(old.Elem, new.Elem, os, ns)
	case KindOptional, KindList:
		return compatibleTypes(old.Elem, new.Elem, os, ns)
	case KindMap:
		return compatibleTypes(old.Key, new.Key, os, ns) && compatibleTypes(old.Val, new.Val, os, ns)
	case KindUnion:
		v, _ := unionDirection(old.Cases, new.Cases, os, ns)
		return v != Incompatible
	case KindStruct:
		v, _ := structDirection(old.Fields, new.Fields, os, ns)
		return v != Incompatible
	case KindEnum:
		return true
	default:
		return true
	}
}
