package control

import (
	"github.com/pion/webrtc/v3"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// State is the orchestrator's connection state. Transitions are the only
// way consumers learn of connectivity changes.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateWaitingForPermission
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateWaitingForPermission:
		return "waiting_for_permission"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Role identifies which side of the session this participant plays.
type Role int

const (
	RoleHost Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

// EventKind discriminates orchestrator notifications.
type EventKind int

const (
	// EventStateChanged carries the new State and, for terminal states, a
	// human-readable reason.
	EventStateChanged EventKind = iota
	// EventPermissionRequest asks the host UI to confirm a joining client.
	EventPermissionRequest
	// EventStreamReceived announces the first media of an inbound track.
	EventStreamReceived
	// EventResolution reports the host's screen resolution to the client.
	EventResolution
	// EventClientLeft tells the host UI a client went away.
	EventClientLeft
)

// Event is one notification on the orchestrator's outbound channel. The
// kind determines which fields are set.
type Event struct {
	Kind       EventKind
	State      State
	Role       Role
	Reason     string
	ClientID   string
	Track      *webrtc.TrackRemote
	Resolution *protocol.Resolution
}
