package frame

import (
	"sync"

	bare "github.com/barewire/barewire"
	"github.com/google/uuid"
)

// Correlator tracks in-flight request ids on the client side of a
// request/response exchange, pairing each outgoing request with the
// response that eventually names the same id.
type Correlator struct {
	mu      sync.Mutex
	pending map[uuid.UUID]struct{}
}

// NewCorrelator builds an empty Correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uuid.UUID]struct{})}
}

// Begin records id as in flight and must be called before the request
// frame carrying id is sent.
func (c *Correlator) Begin(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = struct{}{}
}

// Resolve matches an incoming response's id against the in-flight set,
// removing it on success. A response with an id never recorded by Begin,
// or whose id was already resolved, surfaces as an error rather than being
// silently accepted.
func (c *Correlator) Resolve(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; !ok {
		return bare.NewError(bare.SchemaMismatch, "unexpected response for unknown request id %s", id)
	}
	delete(c.pending, id)
	return nil
}

// Pending reports the number of requests still awaiting a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
