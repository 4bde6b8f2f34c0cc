package relay

import "sync"

// Buffer is a bounded FIFO of JSON messages waiting for the target. When it
// is full the oldest message is dropped to make room.
type Buffer struct {
	mu       sync.Mutex
	entries  []string
	capacity int
	dropped  uint64
}

// NewBuffer creates a Buffer holding at most capacity messages
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}

	return &Buffer{capacity: capacity}
}

// Push appends msg and reports whether an older message was dropped for it
func (b *Buffer) Push(msg string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := false

	if len(b.entries) >= b.capacity {
		b.entries[0] = ""
		b.entries = b.entries[1:]
		b.dropped++
		dropped = true
	}

	b.entries = append(b.entries, msg)

	return dropped
}

// Peek returns the oldest message without removing it
func (b *Buffer) Peek() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return "", false
	}

	return b.entries[0], true
}

// Pop removes the oldest message
func (b *Buffer) Pop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return
	}

	b.entries[0] = ""
	b.entries = b.entries[1:]
}

// Len returns the number of buffered messages
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}

// Dropped returns how many messages were evicted since creation
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dropped
}
