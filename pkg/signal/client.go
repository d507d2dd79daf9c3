package signal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// ackTimeout bounds every request-acknowledgement exchange with the
	// relay server.
	ackTimeout = 10 * time.Second
)

var (
	// ErrAckTimeout is returned when the relay server does not acknowledge
	// a session operation in time.
	ErrAckTimeout = errors.New("timed out waiting for relay acknowledgement")
	// ErrRelayClosed is returned by sends on a closed relay connection.
	ErrRelayClosed = errors.New("relay connection closed")
)

// RelayClient is one participant's connection to the relay server. It is
// the always-available ordered transport: signaling first, input fallback
// second.
type RelayClient struct {
	conn     *websocket.Conn
	incoming chan protocol.Message
	outgoing chan protocol.Message
	done     chan struct{}

	ackMu sync.Mutex
	ackCh chan protocol.Message // one-shot listener for the pending request

	closeOnce sync.Once
}

// Dial connects to the relay server's websocket endpoint.
func Dial(ctx context.Context, url string) (*RelayClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("relay dial: %w", err)
	}

	c := &RelayClient{
		conn:     conn,
		incoming: make(chan protocol.Message, 64),
		outgoing: make(chan protocol.Message, 64),
		done:     make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return c, nil
}

// Messages returns the stream of relay messages that are not request
// acknowledgements. The channel closes when the connection dies.
func (c *RelayClient) Messages() <-chan protocol.Message {
	return c.incoming
}

// Send queues a message for the relay connection. It fails fast once the
// connection is closed so callers can treat it as a connectivity fault
// instead of a silent drop.
func (c *RelayClient) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrRelayClosed
	default:
	}
	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return ErrRelayClosed
	}
}

// CreateSession registers this connection as host of id. Bounded by the
// ack timeout; a duplicate id surfaces as ErrSessionExists.
func (c *RelayClient) CreateSession(ctx context.Context, id string) error {
	return c.request(ctx, protocol.Message{
		Type:      protocol.TypeCreateSession,
		SessionID: id,
	}, protocol.TypeSessionCreated)
}

// JoinSession attaches this connection to id as clientID. Bounded by the
// ack timeout; a missing session surfaces as ErrSessionNotFound.
func (c *RelayClient) JoinSession(ctx context.Context, id, clientID string) error {
	return c.request(ctx, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: id,
		ClientID:  clientID,
	}, protocol.TypeSessionJoined)
}

// Close tears the relay connection down. Safe to call more than once.
func (c *RelayClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// request sends one session operation and blocks for its acknowledgement.
// The one-shot listener is removed on every exit path.
func (c *RelayClient) request(ctx context.Context, msg protocol.Message, want protocol.Type) error {
	ch := make(chan protocol.Message, 1)
	c.ackMu.Lock()
	if c.ackCh != nil {
		c.ackMu.Unlock()
		return errors.New("relay request already in flight")
	}
	c.ackCh = ch
	c.ackMu.Unlock()

	defer func() {
		c.ackMu.Lock()
		c.ackCh = nil
		c.ackMu.Unlock()
	}()

	if err := c.Send(msg); err != nil {
		return err
	}

	timer := time.NewTimer(ackTimeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if reply.Type == want {
			return nil
		}
		return errorFromReason(reply.Reason)
	case <-timer.C:
		return ErrAckTimeout
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrRelayClosed
	}
}

// errorFromReason maps relay error reasons back onto the typed sentinels.
func errorFromReason(reason string) error {
	switch reason {
	case ErrSessionExists.Error():
		return ErrSessionExists
	case ErrSessionNotFound.Error():
		return ErrSessionNotFound
	default:
		return fmt.Errorf("relay error: %s", reason)
	}
}

// readPump decodes relay frames, steering acknowledgements to the pending
// request and everything else to the incoming stream. Parse failures are
// recovered locally and never close the connection.
func (c *RelayClient) readPump() {
	defer func() {
		close(c.incoming)
		c.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			slog.Warn("relay message dropped", "err", err)
			continue
		}

		if c.resolveAck(msg) {
			continue
		}

		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

// resolveAck hands acknowledgement-shaped messages to the pending request,
// if any. Error frames with no waiter flow to the incoming stream so the
// orchestrator still sees them.
func (c *RelayClient) resolveAck(msg protocol.Message) bool {
	switch msg.Type {
	case protocol.TypeSessionCreated, protocol.TypeSessionJoined, protocol.TypeError:
	default:
		return false
	}

	c.ackMu.Lock()
	ch := c.ackCh
	c.ackCh = nil
	c.ackMu.Unlock()

	if ch == nil {
		return false
	}
	ch <- msg
	return true
}

// writePump serializes outgoing messages and keeps the connection alive
// with periodic pings. A missed pong never disconnects by itself; only a
// dead connection does.
func (c *RelayClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
