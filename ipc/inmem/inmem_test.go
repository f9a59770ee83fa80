package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/barewire/barewire/ipc"
	"github.com/stretchr/testify/require"
)

func TestNamedPipeWriteRead(t *testing.T) {
	p := New()
	ctx := context.Background()
	h, err := p.CreateNamedPipe(ctx, "p1", ipc.InOut, ipc.Byte, 0)
	require.NoError(t, err)

	n, err := p.WriteNamedPipe(h, []byte("hello"), 0, 5)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = p.ReadNamedPipe(h, buf, 0, 5)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestNamedPipeReadEmptyReturnsZero(t *testing.T) {
	p := New()
	h, err := p.CreateNamedPipe(context.Background(), "p2", ipc.In, ipc.Byte, 0)
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := p.ReadNamedPipe(h, buf, 0, 4)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestClosedPipeRejectsIO(t *testing.T) {
	p := New()
	h, err := p.CreateNamedPipe(context.Background(), "p3", ipc.InOut, ipc.Byte, 0)
	require.NoError(t, err)
	require.NoError(t, p.CloseNamedPipe(h))

	_, err = p.WriteNamedPipe(h, []byte("x"), 0, 1)
	require.Error(t, err)
}

func TestWaitForConnectionTimesOut(t *testing.T) {
	p := New()
	h, err := p.ConnectNamedPipe(context.Background(), "never-created", ipc.In)
	require.NoError(t, err)

	err = p.WaitForNamedPipeConnection(context.Background(), h, 10*time.Millisecond)
	require.Error(t, err)
}

func TestSharedMemoryCreateOpenClose(t *testing.T) {
	p := New()
	h, addr, err := p.CreateSharedMemory("region1", 16, ipc.ReadWrite)
	require.NoError(t, err)
	require.Len(t, addr, 16)

	_, openAddr, size, err := p.OpenSharedMemory("region1", ipc.Read)
	require.NoError(t, err)
	require.Equal(t, 16, size)
	require.Equal(t, addr, openAddr)

	require.True(t, p.ResourceExists("region1", ipc.KindSharedMemory))
	require.False(t, p.ResourceExists("missing", ipc.KindSharedMemory))
	require.NoError(t, p.CloseSharedMemory(h, addr, 16))
}

func TestResizeRefusedWhileLocked(t *testing.T) {
	p := New()
	_, addr, err := p.CreateSharedMemory("region2", 8, ipc.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, p.LockMemory(addr))
	err = p.Resize("region2", 16)
	require.Error(t, err)

	require.NoError(t, p.UnlockMemory(addr))
	require.NoError(t, p.Resize("region2", 16))
}

func TestResizeRefusedWithOpenReaders(t *testing.T) {
	p := New()
	_, _, err := p.CreateSharedMemory("region3", 8, ipc.ReadWrite)
	require.NoError(t, err)

	_, _, _, err = p.OpenSharedMemory("region3", ipc.Read)
	require.NoError(t, err)

	err = p.Resize("region3", 32)
	require.Error(t, err)
}
