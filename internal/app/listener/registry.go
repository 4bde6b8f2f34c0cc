package listener

import (
	"io"
	"sync"
)

// registry maps connection ids to their handles. It is only used to count
// and close connections, never on the read path.
type registry struct {
	mu    sync.Mutex
	conns map[string]io.Closer
}

func newRegistry() *registry {
	return &registry{conns: make(map[string]io.Closer)}
}

func (r *registry) add(id string, c io.Closer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[id] = c
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, id)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}

// closeAll closes every registered connection and returns how many it closed
func (r *registry) closeAll() int {
	r.mu.Lock()
	conns := make([]io.Closer, 0, len(r.conns))

	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}

	return len(conns)
}
