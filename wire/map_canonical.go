package wire

import (
	"bytes"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
	"github.com/petar/GoLLRB/llrb"
)

// mapItem is one canonical-ordered map entry. keyBytes holds the already
// wire-encoded key so ordering is by encoded key bytes, the stronger
// contract §9's design notes recommend over merely "stable iteration
// order": two encodings of the same logical map then agree byte-for-byte.
type mapItem struct {
	keyBytes []byte
	keyValue bare.Value
	val      bare.Value
}

func (m *mapItem) Less(other llrb.Item) bool {
	return bytes.Compare(m.keyBytes, other.(*mapItem).keyBytes) < 0
}

// encodeMapCanonical encodes a map(K,V) value with entries visited in
// ascending key-byte order, using a red-black tree (github.com/petar/GoLLRB)
// to keep a sorted structure for deterministic iteration over keys.
func encodeMapCanonical(w *Writer, t *schema.Type, entries []bare.MapEntry, sch *schema.ValidatedSchema, path string) error {
	tree := llrb.New()
	for _, e := range entries {
		kw := NewWriter()
		if err := encodeType(kw, t.Key, e.Key, sch, path+".key"); err != nil {
			return err
		}
		tree.ReplaceOrInsert(&mapItem{keyBytes: kw.Bytes(), keyValue: e.Key, val: e.Value})
	}

	EncodeUint(w, uint64(tree.Len()))
	if tree.Len() == 0 {
		return nil
	}

	var walkErr error
	pivot := &mapItem{}
	tree.AscendGreaterOrEqual(pivot, func(i llrb.Item) bool {
		mi := i.(*mapItem)
		_, _ = w.Write(mi.keyBytes)
		if err := encodeType(w, t.Val, mi.val, sch, path+".value"); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	return walkErr
}

// decodeMap reads a map(K,V) value. Per §4.5, duplicate keys are accepted
// with last-one-wins semantics; the winning value replaces the first
// occurrence's slot so iteration order otherwise reflects arrival order.
func decodeMap(r *Reader, t *schema.Type, sch *schema.ValidatedSchema, path string) (bare.Value, error) {
	n, _, err := DecodeUint(r)
	if err != nil {
		return bare.Value{}, annotatePath(err, path)
	}

	entries := make([]bare.MapEntry, 0, n)
	index := make(map[string]int, n)
	for i := uint64(0); i < n; i++ {
		keyStart := r.Pos()
		key, err := decodeType(r, t.Key, sch, path+".key")
		if err != nil {
			return bare.Value{}, err
		}
		keyBytes := string(r.buf[keyStart:r.Pos()])

		val, err := decodeType(r, t.Val, sch, path+".value")
		if err != nil {
			return bare.Value{}, err
		}

		if pos, seen := index[keyBytes]; seen {
			entries[pos].Value = val
			continue
		}
		index[keyBytes] = len(entries)
		entries = append(entries, bare.MapEntry{Key: key, Value: val})
	}
	return bare.MapValue(entries), nil
}
