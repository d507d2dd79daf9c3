package protocol

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Type tags every signaling and control message.
type Type string

const (
	// Session lifecycle
	TypeCreateSession     Type = "create_session"
	TypeJoinSession       Type = "join_session"
	TypeLeaveSession      Type = "leave_session"
	TypeCleanupSession    Type = "cleanup_session"
	TypeSessionCreated    Type = "session_created"
	TypeSessionJoined     Type = "session_joined"
	TypeClientJoined      Type = "client_joined"
	TypeClientLeft        Type = "client_left"
	TypeHostDisconnected  Type = "host_disconnected"
	TypeSessionTerminated Type = "session_terminated"
	TypeError             Type = "error"

	// WebRTC negotiation (payload is opaque to the relay server)
	TypeOffer        Type = "offer"
	TypeAnswer       Type = "answer"
	TypeICECandidate Type = "ice_candidate"

	// Permission handshake
	TypePermissionResponse Type = "permission_response"

	// Remote control
	TypeMouseMove        Type = "mouse_move"
	TypeMouseMoveBatch   Type = "mouse_move_batch"
	TypeMouseClick       Type = "mouse_click"
	TypeMouseDown        Type = "mouse_down"
	TypeMouseUp          Type = "mouse_up"
	TypeKeyDown          Type = "key_down"
	TypeKeyUp            Type = "key_up"
	TypeScreenResolution Type = "screen_resolution"

	// TypeUnknown is the single catch-all for tags this build does not
	// recognize. Unknown messages are dropped, never treated as fatal.
	TypeUnknown Type = "unknown"
)

var knownTypes = map[Type]bool{
	TypeCreateSession:      true,
	TypeJoinSession:        true,
	TypeLeaveSession:       true,
	TypeCleanupSession:     true,
	TypeSessionCreated:     true,
	TypeSessionJoined:      true,
	TypeClientJoined:       true,
	TypeClientLeft:         true,
	TypeHostDisconnected:   true,
	TypeSessionTerminated:  true,
	TypeError:              true,
	TypeOffer:              true,
	TypeAnswer:             true,
	TypeICECandidate:       true,
	TypePermissionResponse: true,
	TypeMouseMove:          true,
	TypeMouseMoveBatch:     true,
	TypeMouseClick:         true,
	TypeMouseDown:          true,
	TypeMouseUp:            true,
	TypeKeyDown:            true,
	TypeKeyUp:              true,
	TypeScreenResolution:   true,
}

// Known reports whether t is part of the closed tag set.
func Known(t Type) bool {
	return knownTypes[t]
}

// IsControl reports whether t carries remote-control input.
func IsControl(t Type) bool {
	switch t {
	case TypeMouseMove, TypeMouseMoveBatch, TypeMouseClick, TypeMouseDown,
		TypeMouseUp, TypeKeyDown, TypeKeyUp, TypeScreenResolution:
		return true
	}
	return false
}

// MouseData holds a pointer event. Coordinates are normalized to [0,1]
// relative to the video surface; the host maps them to pixels using its
// own resolution.
type MouseData struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Button string  `json:"button,omitempty" msgpack:"button,omitempty"` // left, right, middle
}

// KeyboardData holds a key event with modifier state.
type KeyboardData struct {
	Key      string `json:"key" msgpack:"key"`
	Code     string `json:"code" msgpack:"code"`
	CtrlKey  bool   `json:"ctrlKey" msgpack:"ctrlKey"`
	ShiftKey bool   `json:"shiftKey" msgpack:"shiftKey"`
	AltKey   bool   `json:"altKey" msgpack:"altKey"`
	MetaKey  bool   `json:"metaKey" msgpack:"metaKey"`
}

// Resolution is the host screen size in pixels.
type Resolution struct {
	Width  int `json:"width" msgpack:"width"`
	Height int `json:"height" msgpack:"height"`
}

// Message is the envelope carried on both transports: JSON over the relay
// connection, msgpack over the unreliable side-channel. The tag determines
// which optional fields are present.
type Message struct {
	Type      Type   `json:"type" msgpack:"type"`
	SessionID string `json:"sessionId,omitempty" msgpack:"sessionId,omitempty"`
	ClientID  string `json:"clientId,omitempty" msgpack:"clientId,omitempty"`

	// Data carries the negotiation payload (SDP or ICE candidate init).
	// The relay server forwards it without interpreting it.
	Data json.RawMessage `json:"data,omitempty" msgpack:"data,omitempty"`

	MouseData    *MouseData    `json:"mouseData,omitempty" msgpack:"mouseData,omitempty"`
	MouseBatch   []MouseData   `json:"mouseBatch,omitempty" msgpack:"mouseBatch,omitempty"`
	KeyboardData *KeyboardData `json:"keyboardData,omitempty" msgpack:"keyboardData,omitempty"`
	Resolution   *Resolution   `json:"resolution,omitempty" msgpack:"resolution,omitempty"`
	Granted      *bool         `json:"granted,omitempty" msgpack:"granted,omitempty"`
	Reason       string        `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// Decode parses one relay frame. Tags outside the closed set are mapped to
// TypeUnknown so callers can drop them without branching on errors.
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, err
	}
	if !Known(msg.Type) {
		msg.Type = TypeUnknown
	}
	return msg, nil
}

// Encode serializes a message for the relay connection.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// EncodeBinary serializes a message for the side-channel. msgpack keeps
// high-frequency input frames small.
func EncodeBinary(msg Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

// DecodeBinary parses one side-channel frame.
func DecodeBinary(raw []byte) (Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(raw, &msg); err != nil {
		return Message{}, err
	}
	if !Known(msg.Type) {
		msg.Type = TypeUnknown
	}
	return msg, nil
}

// SessionDescription is the body of an offer or answer Data payload.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}
