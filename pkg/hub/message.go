// Package hub provides a thread-safe websocket broadcast hub using
// the channel-based fan-out pattern. The feed carries two kinds of
// traffic: rendered text frames and JSON events (stats, status,
// progress), distinguished by websocket wire type so clients never
// have to sniff payloads.
package hub

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is an encoded event, sent as a websocket text frame.
	JSONMessage MessageType = iota

	// FrameMessage is a rendered text block, sent as a websocket
	// binary frame (UTF-8 bytes).
	FrameMessage
)

// Message is one unit of broadcast traffic.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates an event message from pre-encoded bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewFrameMessage creates a rendered-frame message.
func NewFrameMessage(block string) Message {
	return Message{Type: FrameMessage, Data: []byte(block)}
}
