package region

import (
	"testing"

	bare "github.com/barewire/barewire"
	"github.com/stretchr/testify/require"
)

func TestSliceBounds(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5})
	s, err := r.Slice(1, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3, 4}, s.Bytes())

	_, err = r.Slice(3, 3)
	require.Error(t, err)
	require.True(t, bare.Is(err, bare.OutOfBounds))
}

func TestCopyBetweenRegions(t *testing.T) {
	dst := New(make([]byte, 4))
	src := New([]byte{9, 9, 9, 9})
	require.NoError(t, Copy(dst, 1, src, 0, 2))
	require.Equal(t, []byte{0, 9, 9, 0}, dst.Bytes())

	err := Copy(dst, 3, src, 0, 2)
	require.Error(t, err)
}

func TestFillAndEqual(t *testing.T) {
	a := New(make([]byte, 3))
	a.Fill(0x7F)
	b := New([]byte{0x7F, 0x7F, 0x7F})
	require.True(t, Equal(a, b))

	b.Fill(0x00)
	require.False(t, Equal(a, b))
}

func TestFind(t *testing.T) {
	r := New([]byte("hello world"))
	require.Equal(t, 6, r.Find([]byte("world")))
	require.Equal(t, -1, r.Find([]byte("xyz")))
}

func TestResizeGrowAndShrink(t *testing.T) {
	r := New([]byte{1, 2, 3})
	grown, err := r.Resize(5)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0, 0}, grown.Bytes())

	shrunk, err := r.Resize(1)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, shrunk.Bytes())
}

func TestSplitAndMerge(t *testing.T) {
	r := New([]byte{1, 2, 3, 4})
	left, right, err := r.Split(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, left.Bytes())
	require.Equal(t, []byte{3, 4}, right.Bytes())

	merged := Merge(left, right)
	require.Equal(t, r.Bytes(), merged.Bytes())
}

func TestSliceSharesBackingArray(t *testing.T) {
	r := New([]byte{1, 2, 3, 4})
	s, err := r.Slice(0, 2)
	require.NoError(t, err)
	s.Bytes()[0] = 0xFF
	require.Equal(t, byte(0xFF), r.Bytes()[0])
}
