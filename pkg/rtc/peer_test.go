package rtc

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v3"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

func TestParseDescriptionRejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"truncated json", `{"type":"offer"`},
		{"missing sdp", `{"type":"offer"}`},
		{"missing type", `{"sdp":"v=0"}`},
		{"wrong type", `{"type":"answer","sdp":"v=0"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := protocol.Message{Type: protocol.TypeOffer, Data: []byte(tc.data)}
			if _, err := parseDescription(msg, webrtc.SDPTypeOffer); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseDescriptionAcceptsValidOffer(t *testing.T) {
	msg := protocol.Message{
		Type: protocol.TypeOffer,
		Data: []byte(`{"type":"offer","sdp":"v=0\r\n"}`),
	}
	desc, err := parseDescription(msg, webrtc.SDPTypeOffer)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if desc.Type != webrtc.SDPTypeOffer || desc.SDP != "v=0\r\n" {
		t.Errorf("unexpected description: %+v", desc)
	}
}

func TestDescriptionMessageRoundTrip(t *testing.T) {
	desc := &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0\r\n"}
	msg, err := descriptionMessage(protocol.TypeAnswer, desc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if msg.Type != protocol.TypeAnswer {
		t.Errorf("tag = %q", msg.Type)
	}

	parsed, err := parseDescription(msg, webrtc.SDPTypeAnswer)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.SDP != desc.SDP {
		t.Error("SDP not preserved")
	}
}

func TestSendInputBeforeChannelOpen(t *testing.T) {
	tr, err := New(Config{})
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	defer tr.Close()

	err = tr.SendInput(protocol.Message{Type: protocol.TypeMouseClick})
	if err != ErrSideChannelNotReady {
		t.Errorf("expected ErrSideChannelNotReady, got %v", err)
	}
	if tr.SideChannelReady() {
		t.Error("channel reported ready before negotiation")
	}
}

func TestAddICECandidateRejectsGarbage(t *testing.T) {
	tr, err := New(Config{})
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	defer tr.Close()

	if err := tr.AddICECandidate(protocol.Message{Data: []byte(`not json`)}); err == nil {
		t.Error("expected an error for malformed candidate data")
	}

	empty, _ := json.Marshal(webrtc.ICECandidateInit{})
	if err := tr.AddICECandidate(protocol.Message{Data: empty}); err == nil {
		t.Error("expected an error for an empty candidate")
	}
}

func TestWebrtcConfiguration(t *testing.T) {
	cfg := Config{
		TURNServer: "turn:turn.example.com:3478",
		TURNUser:   "user",
		TURNPass:   "pass",
		ForceRelay: true,
	}
	wc := cfg.webrtcConfiguration()

	if len(wc.ICEServers) != len(DefaultICEServers)+1 {
		t.Fatalf("expected default STUN plus TURN, got %d servers", len(wc.ICEServers))
	}
	turn := wc.ICEServers[len(wc.ICEServers)-1]
	if turn.URLs[0] != "turn:turn.example.com:3478" || turn.Username != "user" {
		t.Errorf("TURN server not appended: %+v", turn)
	}
	if wc.ICETransportPolicy != webrtc.ICETransportPolicyRelay {
		t.Error("force relay not applied")
	}
}
