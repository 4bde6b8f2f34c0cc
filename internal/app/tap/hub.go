package tap

import (
	"context"
	"sync"

	"github.com/gobwas/glob"

	"inspectd/internal/app/console"
)

// Hub fans packet messages out to subscribed clients
type Hub interface {
	Register(conn *ClientConn)
	Unregister(conn *ClientConn)
	Broadcast(msg PacketMessage)
	Dropped() int64
	Run(ctx context.Context)
}

// ClientConn represents a connected tail client
type ClientConn struct {
	ID       string
	Apps     []glob.Glob
	SendChan chan PacketMessage
}

// NewClientConn creates a client connection with the given send buffer
func NewClientConn(id string, bufferSize int) *ClientConn {
	return &ClientConn{
		ID:       id,
		SendChan: make(chan PacketMessage, bufferSize),
	}
}

// SetSubscription compiles the app patterns this client wants
func (c *ClientConn) SetSubscription(apps []string) error {
	globs, err := console.CompileGlobs(apps)
	if err != nil {
		return err
	}

	c.Apps = globs

	return nil
}

// ShouldReceive reports whether a packet from app goes to this client
func (c *ClientConn) ShouldReceive(app string) bool {
	return console.MatchAny(c.Apps, app)
}

type hub struct {
	clients    map[*ClientConn]bool
	register   chan *ClientConn
	unregister chan *ClientConn
	broadcast  chan PacketMessage
	done       chan struct{}
	dropped    int64
	mu         sync.RWMutex
}

// NewHub creates a hub whose broadcast queue holds bufferSize messages
func NewHub(bufferSize int) Hub {
	return &hub{
		clients:    make(map[*ClientConn]bool),
		register:   make(chan *ClientConn),
		unregister: make(chan *ClientConn),
		broadcast:  make(chan PacketMessage, bufferSize),
		done:       make(chan struct{}),
	}
}

func (h *hub) Register(conn *ClientConn) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

func (h *hub) Unregister(conn *ClientConn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues msg without blocking. Messages that do not fit are
// counted as dropped.
func (h *hub) Broadcast(msg PacketMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.drop()
	}
}

// Dropped returns how many messages were lost to full queues
func (h *hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.dropped
}

func (h *hub) drop() {
	h.mu.Lock()
	h.dropped++
	h.mu.Unlock()
}

func (h *hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()

			for client := range h.clients {
				close(client.SendChan)
				delete(h.clients, client)
			}

			h.mu.Unlock()

			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()

			if _, ok := h.clients[client]; ok {
				close(client.SendChan)
				delete(h.clients, client)
			}

			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *hub) fanOut(msg PacketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.ShouldReceive(msg.Packet.App) {
			continue
		}

		select {
		case client.SendChan <- msg:
		default:
			h.dropped++
		}
	}
}
