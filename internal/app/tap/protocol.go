package tap

import "inspectd/internal/app/packet"

// MessageType represents the type of message in the tap protocol
type MessageType string

const (
	// MessageSubscribe is sent from client to server to choose apps
	MessageSubscribe MessageType = "subscribe"
	// MessagePacket is sent from server to client for every received packet
	MessagePacket MessageType = "packet"
	// MessageStatus is sent from server to client after subscribe
	MessageStatus MessageType = "status"
)

// SubscribeRequest is sent from client to server. Apps holds glob patterns,
// empty means every app.
type SubscribeRequest struct {
	Type MessageType `json:"type"`
	Apps []string    `json:"apps"`
}

// PacketMessage carries one received packet
type PacketMessage struct {
	Type      MessageType    `json:"type"`
	Transport string         `json:"transport"`
	ConnID    string         `json:"connId"`
	Packet    packet.Summary `json:"packet"`
}

// StatusMessage describes the server the client is attached to
type StatusMessage struct {
	Type      MessageType `json:"type"`
	Version   string      `json:"version"`
	Listeners []string    `json:"listeners"`
}

// MessageEnvelope is used for type-based message dispatching
type MessageEnvelope struct {
	Type MessageType `json:"type"`
}
