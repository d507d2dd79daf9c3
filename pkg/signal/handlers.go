package signal

import (
	"log/slog"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// dispatch routes one decoded message. Session-lifecycle tags mutate the
// registry; everything else is pass-through routing - the server never
// interprets offer/answer/control payloads, only forwards them.
func (s *Server) dispatch(c *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeCreateSession:
		s.handleCreate(c, msg)
	case protocol.TypeJoinSession:
		s.handleJoin(c, msg)
	case protocol.TypeLeaveSession:
		s.handleLeave(c, msg)
	case protocol.TypeCleanupSession:
		s.handleCleanup(msg)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate,
		protocol.TypePermissionResponse,
		protocol.TypeMouseMove, protocol.TypeMouseMoveBatch,
		protocol.TypeMouseClick, protocol.TypeMouseDown, protocol.TypeMouseUp,
		protocol.TypeKeyDown, protocol.TypeKeyUp, protocol.TypeScreenResolution:
		s.route(c, msg)
	case protocol.TypeUnknown:
		slog.Debug("unknown message type dropped", "session", msg.SessionID)
	default:
		// Server-originated tags echoed back by a confused peer.
		slog.Debug("unroutable message dropped", "type", msg.Type)
	}
}

func (s *Server) handleCreate(c *Client, msg protocol.Message) {
	if err := s.registry.Create(msg.SessionID, c); err != nil {
		c.Deliver(protocol.Message{
			Type:      protocol.TypeError,
			SessionID: msg.SessionID,
			Reason:    err.Error(),
		})
		return
	}
	slog.Info("session created", "session", msg.SessionID)
	c.Deliver(protocol.Message{Type: protocol.TypeSessionCreated, SessionID: msg.SessionID})
}

func (s *Server) handleJoin(c *Client, msg protocol.Message) {
	host, err := s.registry.Join(msg.SessionID, msg.ClientID, c)
	if err != nil {
		c.Deliver(protocol.Message{
			Type:      protocol.TypeError,
			SessionID: msg.SessionID,
			ClientID:  msg.ClientID,
			Reason:    err.Error(),
		})
		return
	}
	c.clientID = msg.ClientID
	slog.Info("client joined", "session", msg.SessionID, "client", msg.ClientID)

	c.Deliver(protocol.Message{
		Type:      protocol.TypeSessionJoined,
		SessionID: msg.SessionID,
		ClientID:  msg.ClientID,
	})
	host.Deliver(protocol.Message{
		Type:      protocol.TypeClientJoined,
		SessionID: msg.SessionID,
		ClientID:  msg.ClientID,
	})
}

func (s *Server) handleLeave(c *Client, msg protocol.Message) {
	clientID := msg.ClientID
	if clientID == "" {
		clientID = c.clientID
	}
	dep, err := s.registry.Leave(msg.SessionID, c, clientID)
	if err != nil {
		slog.Debug("leave for unknown session", "session", msg.SessionID)
		return
	}
	s.notifyDeparture(dep, "host left the session")
}

func (s *Server) handleCleanup(msg protocol.Message) {
	host, clients, err := s.registry.Cleanup(msg.SessionID)
	if err != nil {
		slog.Warn("cleanup for unknown session", "session", msg.SessionID)
		return
	}

	terminated := protocol.Message{
		Type:      protocol.TypeSessionTerminated,
		SessionID: msg.SessionID,
		Reason:    msg.Reason,
	}
	data, err := protocol.Encode(terminated)
	if err != nil {
		return
	}
	if hc, ok := host.(*Client); ok {
		hc.enqueue(data)
	} else if host != nil {
		host.Deliver(terminated)
	}
	for _, cl := range clients {
		deliverEncoded(cl, terminated, data)
	}
	slog.Info("session cleaned up", "session", msg.SessionID, "reason", msg.Reason)
}

// route forwards a message to the destination the tag's routing rule
// implies: host to a specific client by clientId, client to its session's
// host.
func (s *Server) route(c *Client, msg protocol.Message) {
	host, ok := s.registry.Host(msg.SessionID)
	if !ok {
		slog.Debug("route to dead session", "session", msg.SessionID, "type", msg.Type)
		return
	}

	if host == Conn(c) {
		dest, ok := s.registry.Client(msg.SessionID, msg.ClientID)
		if !ok {
			slog.Debug("route to unknown client", "session", msg.SessionID, "client", msg.ClientID)
			return
		}
		dest.Deliver(msg)
		return
	}

	// Client-originated: stamp the sender so the host can route replies.
	if msg.ClientID == "" {
		msg.ClientID = c.clientID
	}
	host.Deliver(msg)
}

// handleDisconnect runs when a relay connection closes: every session the
// handle hosted is torn down and its clients told, every session it joined
// as a client loses that entry and the host is told.
func (s *Server) handleDisconnect(c *Client) {
	for _, dep := range s.registry.DropConn(c) {
		s.notifyDeparture(dep, "Connection lost - host may have disconnected")
	}
}

// notifyDeparture fans out the messages a Departure implies. The payload is
// encoded once per departure, not once per destination.
func (s *Server) notifyDeparture(dep Departure, hostGoneReason string) {
	if dep.WasHost {
		msg := protocol.Message{
			Type:      protocol.TypeHostDisconnected,
			SessionID: dep.SessionID,
			Reason:    hostGoneReason,
		}
		data, err := protocol.Encode(msg)
		if err != nil {
			return
		}
		for _, cl := range dep.Clients {
			deliverEncoded(cl, msg, data)
		}
		slog.Info("session closed", "session", dep.SessionID)
		return
	}

	if dep.Host != nil {
		dep.Host.Deliver(protocol.Message{
			Type:      protocol.TypeClientLeft,
			SessionID: dep.SessionID,
			ClientID:  dep.ClientID,
		})
	}
}

// deliverEncoded reuses already-encoded bytes for *Client destinations and
// falls back to Deliver for anything else (test fakes).
func deliverEncoded(dest Conn, msg protocol.Message, data []byte) {
	if c, ok := dest.(*Client); ok {
		c.enqueue(data)
		return
	}
	dest.Deliver(msg)
}
