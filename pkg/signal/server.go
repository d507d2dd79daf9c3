package signal

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// Client represents one accepted relay connection. It is the connection
// handle sessions hold; it lives exactly as long as the websocket.
type Client struct {
	conn     *websocket.Conn
	clientID string // set once the connection joins a session as a client
	send     chan []byte
	server   *Server
}

// Server accepts relay connections, decodes each incoming message and
// routes it through the session registry.
type Server struct {
	registry *Registry
	upgrader websocket.Upgrader
}

// NewServer creates a signaling server around the given registry.
func NewServer(registry *Registry) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // session id is the only access control
			},
		},
	}
}

// Registry exposes the server's session table to the REST surface.
func (s *Server) Registry() *Registry {
	return s.registry
}

// HandleWebSocket upgrades an incoming relay connection. The connection has
// no session membership until it sends create_session or join_session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	go client.writePump()
	go client.readPump()
}

// enqueue hands pre-encoded bytes to the write pump without blocking the
// caller. A full buffer drops the frame rather than stalling the router.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// Deliver implements Conn: encode once, enqueue for the write pump.
func (c *Client) Deliver(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		slog.Error("encode failed", "type", msg.Type, "err", err)
		return
	}
	c.enqueue(data)
}

// readPump reads relay frames until the connection dies, then runs
// disconnect cleanup. A malformed frame is logged and dropped; it never
// terminates the connection.
func (c *Client) readPump() {
	defer func() {
		c.server.handleDisconnect(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "err", err)
			}
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			slog.Warn("invalid message dropped", "err", err)
			continue
		}

		c.server.dispatch(c, msg)
	}
}

// writePump drains the send channel onto the websocket.
func (c *Client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("websocket write error", "err", err)
			return
		}
	}
}
