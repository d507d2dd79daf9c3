package signal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	s := NewServer(NewRegistry())
	ts := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	t.Cleanup(ts.Close)
	return ts, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg protocol.Message) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func recvMsg(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	msg, err := protocol.Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return msg
}

func TestCreateSessionAck(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	reply := recvMsg(t, host)
	if reply.Type != protocol.TypeSessionCreated {
		t.Fatalf("expected session_created, got %q", reply.Type)
	}
	if reply.SessionID != "1234567890" {
		t.Errorf("ack carries session %q", reply.SessionID)
	}
}

func TestDuplicateCreateRejected(t *testing.T) {
	_, url := newTestServer(t)
	first := dialWS(t, url)
	second := dialWS(t, url)

	sendMsg(t, first, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, first)

	sendMsg(t, second, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	reply := recvMsg(t, second)
	if reply.Type != protocol.TypeError {
		t.Fatalf("expected error, got %q", reply.Type)
	}
	if reply.Reason != ErrSessionExists.Error() {
		t.Errorf("reason = %q", reply.Reason)
	}
}

func TestJoinNotifiesHostAndClient(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)
	client := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, host)

	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})

	joined := recvMsg(t, client)
	if joined.Type != protocol.TypeSessionJoined {
		t.Fatalf("client expected session_joined, got %q", joined.Type)
	}

	notice := recvMsg(t, host)
	if notice.Type != protocol.TypeClientJoined {
		t.Fatalf("host expected client_joined, got %q", notice.Type)
	}
	if notice.ClientID != "client-a" {
		t.Errorf("client_joined carries id %q", notice.ClientID)
	}
}

func TestJoinUnknownSessionRejected(t *testing.T) {
	_, url := newTestServer(t)
	client := dialWS(t, url)

	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "0000000000",
		ClientID:  "client-a",
	})
	reply := recvMsg(t, client)
	if reply.Type != protocol.TypeError {
		t.Fatalf("expected error, got %q", reply.Type)
	}
	if reply.Reason != ErrSessionNotFound.Error() {
		t.Errorf("reason = %q", reply.Reason)
	}
}

func TestRoutingStampsClientID(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)
	client := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, host)
	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})
	recvMsg(t, client)
	recvMsg(t, host) // client_joined

	// Client to host: the server stamps the sender's id.
	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeMouseMove,
		SessionID: "1234567890",
		MouseData: &protocol.MouseData{X: 0.5, Y: 0.5},
	})
	fwd := recvMsg(t, host)
	if fwd.Type != protocol.TypeMouseMove {
		t.Fatalf("host expected mouse_move, got %q", fwd.Type)
	}
	if fwd.ClientID != "client-a" {
		t.Errorf("forwarded message not stamped, clientId = %q", fwd.ClientID)
	}

	// Host to client: routed by the explicit clientId.
	sendMsg(t, host, protocol.Message{
		Type:      protocol.TypeOffer,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})
	offer := recvMsg(t, client)
	if offer.Type != protocol.TypeOffer {
		t.Fatalf("client expected offer, got %q", offer.Type)
	}
}

func TestMalformedFrameDoesNotKillConnection(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)

	if err := host.WriteMessage(websocket.TextMessage, []byte(`{"type":`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// The connection must survive and still serve session operations.
	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	reply := recvMsg(t, host)
	if reply.Type != protocol.TypeSessionCreated {
		t.Fatalf("expected session_created after bad frame, got %q", reply.Type)
	}
}

func TestHostDisconnectNotifiesClients(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)
	client := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, host)
	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})
	recvMsg(t, client)
	recvMsg(t, host)

	host.Close()

	notice := recvMsg(t, client)
	if notice.Type != protocol.TypeHostDisconnected {
		t.Fatalf("expected host_disconnected, got %q", notice.Type)
	}
	if notice.Reason == "" {
		t.Error("host_disconnected should carry a reason")
	}
}

func TestClientLeaveNotifiesHost(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)
	client := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, host)
	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})
	recvMsg(t, client)
	recvMsg(t, host)

	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeLeaveSession,
		SessionID: "1234567890",
	})

	notice := recvMsg(t, host)
	if notice.Type != protocol.TypeClientLeft {
		t.Fatalf("expected client_left, got %q", notice.Type)
	}
	if notice.ClientID != "client-a" {
		t.Errorf("client_left carries id %q", notice.ClientID)
	}
}

func TestCleanupTerminatesEveryMember(t *testing.T) {
	_, url := newTestServer(t)
	host := dialWS(t, url)
	client := dialWS(t, url)

	sendMsg(t, host, protocol.Message{Type: protocol.TypeCreateSession, SessionID: "1234567890"})
	recvMsg(t, host)
	sendMsg(t, client, protocol.Message{
		Type:      protocol.TypeJoinSession,
		SessionID: "1234567890",
		ClientID:  "client-a",
	})
	recvMsg(t, client)
	recvMsg(t, host)

	sendMsg(t, host, protocol.Message{
		Type:      protocol.TypeCleanupSession,
		SessionID: "1234567890",
		Reason:    "shutting down",
	})

	for _, conn := range []*websocket.Conn{host, client} {
		notice := recvMsg(t, conn)
		if notice.Type != protocol.TypeSessionTerminated {
			t.Fatalf("expected session_terminated, got %q", notice.Type)
		}
		if notice.Reason != "shutting down" {
			t.Errorf("reason = %q", notice.Reason)
		}
	}
}
