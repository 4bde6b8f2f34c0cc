package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"inspectd/internal/app/metrics"
	"inspectd/internal/app/packet"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// MessageType represents the type of message
type MessageType string

// Event types
const (
	EventListenerStarted    MessageType = "listener_started"
	EventListenerStopped    MessageType = "listener_stopped"
	EventClientConnected    MessageType = "client_connected"
	EventClientDisconnected MessageType = "client_disconnected"
	EventPacketReceived     MessageType = "packet_received"
	EventError              MessageType = "error"
)

// Message represents a bus message
type Message struct {
	Type      MessageType
	Timestamp time.Time
	Data      interface{}
	Critical  bool
}

// ListenerStarted indicates a transport is accepting clients
type ListenerStarted struct {
	Transport string
	Addr      string
}

// ListenerStopped indicates a transport stopped accepting clients
type ListenerStopped struct {
	Transport string
}

// ClientConnected indicates a client session began
type ClientConnected struct {
	Transport string
	ConnID    string
	Remote    string
}

// ClientDisconnected indicates a client session ended
type ClientDisconnected struct {
	Transport string
	ConnID    string
}

// PacketReceived carries a decoded packet and the connection it came from
type PacketReceived struct {
	Transport string
	ConnID    string
	Packet    packet.Packet
}

// Error carries a recoverable listener error
type Error struct {
	Transport string
	Err       error
}

//go:generate mockgen -source=bus.go -destination=bus_mock.go -package=bus

// Bus handles pub/sub messaging
type Bus interface {
	Subscribe(ctx context.Context) <-chan Message
	Publish(msg Message)
	Dropped() int64
	Close()
}

// bus implements the Bus interface with pub/sub messaging
type bus struct {
	buffer      int
	subscribers []chan Message
	mu          sync.RWMutex
	closed      bool
	dropped     atomic.Int64
	metrics     metrics.Recorder
	log         logger.Logger
}

// New creates a new Bus
func New(cfg *config.Config, rec metrics.Recorder, log logger.Logger) Bus {
	if rec == nil {
		rec = metrics.NoOp()
	}

	return &bus{
		buffer:      cfg.Listener.Buffer,
		subscribers: make([]chan Message, 0),
		metrics:     rec,
		log:         log,
	}
}

// Subscribe creates a new subscription channel
func (b *bus) Subscribe(ctx context.Context) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, b.buffer)

	if b.closed {
		close(ch)
		return ch
	}

	b.subscribers = append(b.subscribers, ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()

	return ch
}

// Publish sends a message to all subscribers. A full subscriber misses
// non-critical messages, critical ones are delivered asynchronously.
func (b *bus) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	msg.Timestamp = time.Now()

	if b.log != nil && msg.Type != EventPacketReceived {
		b.log.Debug().Msgf("%s %s", msg.Type, formatData(msg.Data))
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			if !msg.Critical {
				b.dropped.Add(1)
				b.metrics.EventDropped(string(msg.Type))

				continue
			}

			go func(c chan Message, m Message) {
				defer func() { recover() }()

				c <- m
			}(ch, msg)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels
func (b *bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, ch := range b.subscribers {
		close(ch)
	}

	b.subscribers = nil
}

func (b *bus) unsubscribe(ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)

			close(ch)

			break
		}
	}
}

func formatData(data interface{}) string {
	switch d := data.(type) {
	case ListenerStarted:
		return fmt.Sprintf("{transport: %s, addr: %s}", d.Transport, d.Addr)
	case ListenerStopped:
		return fmt.Sprintf("{transport: %s}", d.Transport)
	case ClientConnected:
		return fmt.Sprintf("{transport: %s, conn: %s, remote: %s}", d.Transport, d.ConnID, d.Remote)
	case ClientDisconnected:
		return fmt.Sprintf("{transport: %s, conn: %s}", d.Transport, d.ConnID)
	case PacketReceived:
		return fmt.Sprintf("{transport: %s, conn: %s, type: %s}", d.Transport, d.ConnID, d.Packet.Type())
	case Error:
		return fmt.Sprintf("{transport: %s, error: %v}", d.Transport, d.Err)
	default:
		return fmt.Sprintf("%+v", data)
	}
}

// NoOp returns a no-op bus for when messaging is disabled
func NoOp() Bus {
	return &noOpBus{}
}

// noOpBus implements Bus interface with no-op methods for testing
type noOpBus struct{}

func (n *noOpBus) Subscribe(ctx context.Context) <-chan Message {
	ch := make(chan Message)

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return ch
}

func (n *noOpBus) Publish(msg Message) {}
func (n *noOpBus) Dropped() int64      { return 0 }
func (n *noOpBus) Close()              {}
