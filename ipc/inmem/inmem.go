// Package inmem provides the in-process Provider required by §6 for
// testing and emulation: named pipes and shared memory are faithfully
// emulated with queued byte arrays and pinned buffers rather than real
// platform resources.
package inmem

import (
	"context"
	"sync"
	"time"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/ipc"
	log "github.com/ipfs/go-log/v2"
)

var logger = log.Logger("barewire/ipc/inmem")

type pipe struct {
	name string
	dir  ipc.Direction
	mode ipc.Mode

	mu        sync.Mutex
	queue     [][]byte
	connected bool
	closed    bool
}

type sharedRegion struct {
	mu      sync.Mutex
	data    []byte
	locked  bool
	readers int
}

// Provider implements ipc.Provider entirely in process.
type Provider struct {
	mu      sync.Mutex
	pipes   map[string]*pipe
	regions map[string]*sharedRegion
}

// New builds an empty Provider.
func New() *Provider {
	return &Provider{
		pipes:   make(map[string]*pipe),
		regions: make(map[string]*sharedRegion),
	}
}

func (p *Provider) pipeFor(name string, dir ipc.Direction, mode ipc.Mode) *pipe {
	p.mu.Lock()
	defer p.mu.Unlock()
	pp, ok := p.pipes[name]
	if !ok {
		pp = &pipe{name: name, dir: dir, mode: mode}
		p.pipes[name] = pp
	}
	return pp
}

// CreateNamedPipe registers a named pipe and marks it connected, ready for
// reads/writes.
func (p *Provider) CreateNamedPipe(_ context.Context, name string, dir ipc.Direction, mode ipc.Mode, _ int) (ipc.PipeHandle, error) {
	pp := p.pipeFor(name, dir, mode)
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.connected = true
	logger.Debugw("created named pipe", "name", name, "direction", dir)
	return pp, nil
}

// ConnectNamedPipe attaches to an existing (or not-yet-created) named pipe.
func (p *Provider) ConnectNamedPipe(_ context.Context, name string, dir ipc.Direction) (ipc.PipeHandle, error) {
	pp := p.pipeFor(name, dir, ipc.Byte)
	return pp, nil
}

// WaitForNamedPipeConnection blocks until the pipe is connected or the
// timeout elapses.
func (p *Provider) WaitForNamedPipeConnection(ctx context.Context, h ipc.PipeHandle, timeout time.Duration) error {
	pp := h.(*pipe)
	deadline := time.Now().Add(timeout)

	pp.mu.Lock()
	defer pp.mu.Unlock()
	for !pp.connected {
		if timeout > 0 && time.Now().After(deadline) {
			return bare.NewError(bare.InvalidState, "pipe %q did not connect within %s", pp.name, timeout)
		}
		if ctx.Err() != nil {
			return bare.Wrap(bare.InvalidState, ctx.Err(), "wait for pipe %q connection", pp.name)
		}
		pp.mu.Unlock()
		time.Sleep(time.Millisecond)
		pp.mu.Lock()
	}
	return nil
}

// ReadNamedPipe pops the next queued message (or byte slice) and copies up
// to count bytes of it into buf[off:]. It returns 0 immediately when no
// data is queued, matching the "non-blocking-safe" contract of §6.
func (p *Provider) ReadNamedPipe(h ipc.PipeHandle, buf []byte, off, count int) (int, error) {
	pp := h.(*pipe)
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.closed {
		return 0, bare.NewError(bare.InvalidState, "pipe %q is closed", pp.name)
	}
	if len(pp.queue) == 0 {
		return 0, nil
	}
	msg := pp.queue[0]
	n := count
	if n > len(msg) {
		n = len(msg)
	}
	copy(buf[off:off+n], msg[:n])
	if n == len(msg) {
		pp.queue = pp.queue[1:]
	} else {
		pp.queue[0] = msg[n:]
	}
	return n, nil
}

// WriteNamedPipe enqueues buf[off:off+count] as one message for a later
// ReadNamedPipe.
func (p *Provider) WriteNamedPipe(h ipc.PipeHandle, buf []byte, off, count int) (int, error) {
	pp := h.(*pipe)
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.closed {
		return 0, bare.NewError(bare.InvalidState, "pipe %q is closed", pp.name)
	}
	msg := make([]byte, count)
	copy(msg, buf[off:off+count])
	pp.queue = append(pp.queue, msg)
	return count, nil
}

// CloseNamedPipe marks the pipe closed; further reads/writes fail.
func (p *Provider) CloseNamedPipe(h ipc.PipeHandle) error {
	pp := h.(*pipe)
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.closed = true
	return nil
}

// CreateSharedMemory allocates a named, zero-filled in-process buffer.
func (p *Provider) CreateSharedMemory(name string, size int, _ ipc.Access) (ipc.SharedMemoryHandle, []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.regions[name]; exists {
		return nil, nil, bare.NewError(bare.InvalidState, "shared memory region %q already exists", name)
	}
	r := &sharedRegion{data: make([]byte, size)}
	p.regions[name] = r
	return r, r.data, nil
}

// OpenSharedMemory attaches to an existing region by name.
func (p *Provider) OpenSharedMemory(name string, _ ipc.Access) (ipc.SharedMemoryHandle, []byte, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.regions[name]
	if !ok {
		return nil, nil, 0, bare.NewError(bare.InvalidState, "shared memory region %q does not exist", name)
	}
	r.mu.Lock()
	r.readers++
	r.mu.Unlock()
	return r, r.data, len(r.data), nil
}

// CloseSharedMemory detaches from a region handle.
func (p *Provider) CloseSharedMemory(h ipc.SharedMemoryHandle, _ []byte, _ int) error {
	r := h.(*sharedRegion)
	r.mu.Lock()
	if r.readers > 0 {
		r.readers--
	}
	r.mu.Unlock()
	return nil
}

// ResourceExists reports whether a pipe or shared-memory region of the
// given name has been registered.
func (p *Provider) ResourceExists(name string, kind ipc.ResourceKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case ipc.KindPipe:
		_, ok := p.pipes[name]
		return ok
	case ipc.KindSharedMemory:
		_, ok := p.regions[name]
		return ok
	default:
		return false
	}
}

// LockMemory marks addr's backing region locked, refusing a concurrent
// resize for as long as the lock is held. addr must be a slice previously
// returned by CreateSharedMemory/OpenSharedMemory.
func (p *Provider) LockMemory(addr []byte) error {
	r, err := p.regionOf(addr)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return bare.NewError(bare.InvalidState, "shared memory region is already locked")
	}
	r.locked = true
	return nil
}

// UnlockMemory releases a lock taken by LockMemory.
func (p *Provider) UnlockMemory(addr []byte) error {
	r, err := p.regionOf(addr)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
	return nil
}

// Resize grows or shrinks the named region by replacing its buffer with a
// new one of n bytes holding the first min(old, n) bytes; slices returned
// earlier by Create/OpenSharedMemory keep the old buffer. It refuses to do so
// while the region is locked or has any attached reader, returning
// invalid_state rather than racing with concurrent access — resolving the
// "resize under concurrent readers" design question by making the
// provider the enforcement point.
func (p *Provider) Resize(name string, n int) error {
	p.mu.Lock()
	r, ok := p.regions[name]
	p.mu.Unlock()
	if !ok {
		return bare.NewError(bare.InvalidState, "shared memory region %q does not exist", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked || r.readers > 0 {
		return bare.NewError(bare.InvalidState, "cannot resize region: locked=%v readers=%d", r.locked, r.readers)
	}
	grown := make([]byte, n)
	copy(grown, r.data)
	r.data = grown
	return nil
}

func (p *Provider) regionOf(addr []byte) (*sharedRegion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.regions {
		if len(r.data) > 0 && len(addr) > 0 && &r.data[0] == &addr[0] {
			return r, nil
		}
	}
	return nil, bare.NewError(bare.InvalidState, "address does not belong to any known shared memory region")
}

var _ interface {
	ipc.PipeProvider
	ipc.SharedMemoryProvider
	ipc.MemoryLocker
} = (*Provider)(nil)
