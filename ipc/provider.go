// Package ipc defines the collaborator interfaces of §6: platform named
// pipes, shared memory, and memory locking, consumed by the framing layer
// and by higher-level IPC wrappers. BAREWire's core never talks to the
// operating system directly; it drives these interfaces through a
// pluggable Provider, the same way ipld-go-car's blockstore package is an
// interface the CAR reader/writer drive without knowing the concrete
// storage behind it.
package ipc

import (
	"context"
	"time"
)

// Direction is a named pipe's data-flow direction.
type Direction int

const (
	In Direction = iota
	Out
	InOut
)

// Mode is a named pipe's framing discipline.
type Mode int

const (
	Byte Mode = iota
	Message
)

// Access is the permission a shared-memory mapping is opened with.
type Access int

const (
	Read Access = iota
	Write
	ReadWrite
)

// ResourceKind names the kind of resource ResourceExists checks for.
type ResourceKind string

const (
	KindPipe         ResourceKind = "pipe"
	KindSharedMemory ResourceKind = "sharedmemory"
)

// PipeHandle identifies an open named pipe instance.
type PipeHandle interface{}

// SharedMemoryHandle identifies an open shared-memory mapping.
type SharedMemoryHandle interface{}

// PipeProvider is the platform named-pipe collaborator interface.
type PipeProvider interface {
	CreateNamedPipe(ctx context.Context, name string, dir Direction, mode Mode, bufferSize int) (PipeHandle, error)
	ConnectNamedPipe(ctx context.Context, name string, dir Direction) (PipeHandle, error)
	WaitForNamedPipeConnection(ctx context.Context, h PipeHandle, timeout time.Duration) error
	ReadNamedPipe(h PipeHandle, buf []byte, off, count int) (int, error)
	WriteNamedPipe(h PipeHandle, buf []byte, off, count int) (int, error)
	CloseNamedPipe(h PipeHandle) error
}

// SharedMemoryProvider is the platform shared-memory collaborator
// interface.
type SharedMemoryProvider interface {
	CreateSharedMemory(name string, size int, access Access) (SharedMemoryHandle, []byte, error)
	OpenSharedMemory(name string, access Access) (SharedMemoryHandle, []byte, int, error)
	CloseSharedMemory(h SharedMemoryHandle, addr []byte, size int) error
	ResourceExists(name string, kind ResourceKind) bool
}

// MemoryLocker is the platform memory-locking collaborator interface: a
// lock/unlock pair to be held around a set/update block over shared
// memory. The typed view never calls these itself (§5); callers pair them
// around their own view operations.
type MemoryLocker interface {
	LockMemory(addr []byte) error
	UnlockMemory(addr []byte) error
}

// Provider is the full collaborator surface a BAREWire IPC wrapper depends
// on.
type Provider interface {
	PipeProvider
	SharedMemoryProvider
	MemoryLocker
}
