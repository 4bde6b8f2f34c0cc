// Package listener accepts diagnostic clients over TCP, a local socket pool
// and WebSocket, and reports decoded packets to subscribers.
package listener

import (
	"context"
	"sync"

	"inspectd/internal/app/bus"
	"inspectd/internal/app/packet"
)

// Transport names
const (
	TransportTCP       = "tcp"
	TransportPipe      = "pipe"
	TransportWebSocket = "websocket"
)

// Handlers receive listener events. Any field may be nil. Handlers are
// called concurrently from connection goroutines and must not block for long.
type Handlers struct {
	PacketReceived     func(p packet.Packet, connID string)
	ClientConnected    func(connID, remote string)
	ClientDisconnected func(connID string)
	Error              func(err error)
}

// Listener is the capability set shared by every transport
type Listener interface {
	Name() string
	Addr() string
	Start(ctx context.Context) error
	Stop() error
	IsListening() bool
	ClientCount() int
	Subscribe(h Handlers)
}

// subscribers fans events out to every registered Handlers value
type subscribers struct {
	mu       sync.RWMutex
	handlers []Handlers
}

func (s *subscribers) add(h Handlers) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = append(s.handlers, h)
}

func (s *subscribers) snapshot() []Handlers {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.handlers
}

func (s *subscribers) packetReceived(p packet.Packet, connID string) {
	for _, h := range s.snapshot() {
		if h.PacketReceived != nil {
			h.PacketReceived(p, connID)
		}
	}
}

func (s *subscribers) clientConnected(connID, remote string) {
	for _, h := range s.snapshot() {
		if h.ClientConnected != nil {
			h.ClientConnected(connID, remote)
		}
	}
}

func (s *subscribers) clientDisconnected(connID string) {
	for _, h := range s.snapshot() {
		if h.ClientDisconnected != nil {
			h.ClientDisconnected(connID)
		}
	}
}

func (s *subscribers) reportError(err error) {
	for _, h := range s.snapshot() {
		if h.Error != nil {
			h.Error(err)
		}
	}
}

// Publish returns handlers that forward every event of transport to b.
// Packets are not critical and may be dropped for slow consumers.
func Publish(b bus.Bus, transport string) Handlers {
	return Handlers{
		PacketReceived: func(p packet.Packet, connID string) {
			b.Publish(bus.Message{
				Type: bus.EventPacketReceived,
				Data: bus.PacketReceived{Transport: transport, ConnID: connID, Packet: p},
			})
		},
		ClientConnected: func(connID, remote string) {
			b.Publish(bus.Message{
				Type:     bus.EventClientConnected,
				Data:     bus.ClientConnected{Transport: transport, ConnID: connID, Remote: remote},
				Critical: true,
			})
		},
		ClientDisconnected: func(connID string) {
			b.Publish(bus.Message{
				Type:     bus.EventClientDisconnected,
				Data:     bus.ClientDisconnected{Transport: transport, ConnID: connID},
				Critical: true,
			})
		},
		Error: func(err error) {
			b.Publish(bus.Message{
				Type: bus.EventError,
				Data: bus.Error{Transport: transport, Err: err},
			})
		},
	}
}
