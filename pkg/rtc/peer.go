package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v3"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// SideChannelLabel names the unreliable input channel. An inbound channel
// proposal with any other label is ignored.
const SideChannelLabel = "input"

// DefaultICEServers are the STUN servers used for NAT traversal.
var DefaultICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302"}},
	{URLs: []string{"stun:stun1.l.google.com:19302"}},
	{URLs: []string{"stun:stun2.l.google.com:19302"}},
}

// ErrSideChannelNotReady is returned by SendInput when the unreliable
// channel is absent or not yet open. Callers fall back to the relay.
var ErrSideChannelNotReady = errors.New("side channel not ready")

// Config holds ICE configuration for a peer transport.
type Config struct {
	ICEServers []webrtc.ICEServer
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
}

func (c Config) webrtcConfiguration() webrtc.Configuration {
	servers := c.ICEServers
	if len(servers) == 0 {
		servers = DefaultICEServers
	}
	if c.TURNServer != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{c.TURNServer},
			Username:   c.TURNUser,
			Credential: c.TURNPass,
		})
	}
	cfg := webrtc.Configuration{ICEServers: servers}
	if c.ForceRelay {
		cfg.ICETransportPolicy = webrtc.ICETransportPolicyRelay
	}
	return cfg
}

// PeerTransport wraps one peer connection: a media track for the screen
// stream plus the unordered, non-retransmitting side-channel for input.
// Negotiation payloads travel through the relay; the orchestrator wires
// the two together via the callbacks below.
type PeerTransport struct {
	pc *webrtc.PeerConnection

	mu       sync.Mutex
	side     *webrtc.DataChannel
	sideOpen atomic.Bool

	// connected gates late ICE candidates; candidates generated after the
	// connection is established carry no value.
	connected atomic.Bool

	onCandidate func(protocol.Message)
	onState     func(webrtc.PeerConnectionState)
	onInput     func(protocol.Message)
	onTrack     func(*webrtc.TrackRemote)
}

// New creates a peer transport. Callbacks should be set before any
// negotiation starts.
func New(cfg Config) (*PeerTransport, error) {
	pc, err := webrtc.NewPeerConnection(cfg.webrtcConfiguration())
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	t := &PeerTransport{pc: pc}

	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		if t.connected.Load() {
			return
		}
		t.mu.Lock()
		cb := t.onCandidate
		t.mu.Unlock()
		if cb == nil {
			return
		}
		data, err := json.Marshal(candidate.ToJSON())
		if err != nil {
			slog.Error("encode ICE candidate", "err", err)
			return
		}
		cb(protocol.Message{Type: protocol.TypeICECandidate, Data: data})
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		slog.Debug("peer connection state", "state", state.String())
		if state == webrtc.PeerConnectionStateConnected {
			t.connected.Store(true)
		}
		t.mu.Lock()
		cb := t.onState
		t.mu.Unlock()
		if cb != nil {
			cb(state)
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		t.mu.Lock()
		cb := t.onTrack
		t.mu.Unlock()
		if cb != nil {
			cb(track)
		}
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != SideChannelLabel {
			slog.Warn("rejecting unexpected data channel", "label", dc.Label())
			return
		}
		t.adoptSideChannel(dc)
	})

	return t, nil
}

// OnCandidate registers the sink for locally gathered ICE candidates.
func (t *PeerTransport) OnCandidate(cb func(protocol.Message)) {
	t.mu.Lock()
	t.onCandidate = cb
	t.mu.Unlock()
}

// OnStateChange registers the connection-state sink.
func (t *PeerTransport) OnStateChange(cb func(webrtc.PeerConnectionState)) {
	t.mu.Lock()
	t.onState = cb
	t.mu.Unlock()
}

// OnInput registers the sink for control messages arriving on the
// side-channel.
func (t *PeerTransport) OnInput(cb func(protocol.Message)) {
	t.mu.Lock()
	t.onInput = cb
	t.mu.Unlock()
}

// OnTrack registers the sink for inbound media tracks. It fires once per
// track the remote side adds.
func (t *PeerTransport) OnTrack(cb func(*webrtc.TrackRemote)) {
	t.mu.Lock()
	t.onTrack = cb
	t.mu.Unlock()
}

// CreateSideChannel opens the unreliable input channel. Unordered delivery
// and zero retransmissions are load-bearing: input is sampled at high
// frequency and stale or dropped pointer positions are harmless.
func (t *PeerTransport) CreateSideChannel() error {
	ordered := false
	var maxRetransmits uint16 = 0
	dc, err := t.pc.CreateDataChannel(SideChannelLabel, &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		return fmt.Errorf("create side channel: %w", err)
	}
	t.adoptSideChannel(dc)
	return nil
}

func (t *PeerTransport) adoptSideChannel(dc *webrtc.DataChannel) {
	t.mu.Lock()
	t.side = dc
	t.mu.Unlock()

	dc.OnOpen(func() {
		slog.Debug("side channel open", "label", dc.Label())
		t.sideOpen.Store(true)
	})
	dc.OnClose(func() {
		t.sideOpen.Store(false)
	})
	dc.OnMessage(func(m webrtc.DataChannelMessage) {
		msg, err := protocol.DecodeBinary(m.Data)
		if err != nil {
			slog.Warn("side channel frame dropped", "err", err)
			return
		}
		t.mu.Lock()
		cb := t.onInput
		t.mu.Unlock()
		if cb != nil {
			cb(msg)
		}
	})
}

// SideChannelReady reports whether the unreliable channel is open. Advisory
// only; senders re-check at send time.
func (t *PeerTransport) SideChannelReady() bool {
	return t.sideOpen.Load()
}

// SendInput fires one control message over the side-channel. Fails with
// ErrSideChannelNotReady when the channel is absent or closed.
func (t *PeerTransport) SendInput(msg protocol.Message) error {
	t.mu.Lock()
	dc := t.side
	t.mu.Unlock()

	if dc == nil || !t.sideOpen.Load() {
		return ErrSideChannelNotReady
	}
	data, err := protocol.EncodeBinary(msg)
	if err != nil {
		return fmt.Errorf("encode input frame: %w", err)
	}
	return dc.Send(data)
}

// AttachTrack adds a local media track, typically the screen capture
// stream supplied by the collaborator.
func (t *PeerTransport) AttachTrack(track webrtc.TrackLocal) error {
	if _, err := t.pc.AddTrack(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	return nil
}

// CreateOffer produces the local offer, waiting for ICE gathering to
// complete so the SDP is self-contained.
func (t *PeerTransport) CreateOffer() (protocol.Message, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("create offer: %w", err)
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return protocol.Message{}, fmt.Errorf("set local description: %w", err)
	}
	<-webrtc.GatheringCompletePromise(t.pc)
	return descriptionMessage(protocol.TypeOffer, t.pc.LocalDescription())
}

// HandleOffer applies a remote offer and produces the answer. A payload
// missing its type or SDP body is rejected with an error the caller logs
// and drops; it must never take the connection down.
func (t *PeerTransport) HandleOffer(msg protocol.Message) (protocol.Message, error) {
	desc, err := parseDescription(msg, webrtc.SDPTypeOffer)
	if err != nil {
		return protocol.Message{}, err
	}
	if err := t.pc.SetRemoteDescription(desc); err != nil {
		return protocol.Message{}, fmt.Errorf("set remote offer: %w", err)
	}
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("create answer: %w", err)
	}
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return protocol.Message{}, fmt.Errorf("set local answer: %w", err)
	}
	<-webrtc.GatheringCompletePromise(t.pc)
	return descriptionMessage(protocol.TypeAnswer, t.pc.LocalDescription())
}

// HandleAnswer applies the remote answer to a previously sent offer.
func (t *PeerTransport) HandleAnswer(msg protocol.Message) error {
	desc, err := parseDescription(msg, webrtc.SDPTypeAnswer)
	if err != nil {
		return err
	}
	if err := t.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote answer: %w", err)
	}
	return nil
}

// AddICECandidate feeds one remote candidate into the transport.
func (t *PeerTransport) AddICECandidate(msg protocol.Message) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(msg.Data, &candidate); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}
	if candidate.Candidate == "" {
		return errors.New("empty ICE candidate")
	}
	return t.pc.AddICECandidate(candidate)
}

// Close releases the peer connection and the side-channel.
func (t *PeerTransport) Close() error {
	t.sideOpen.Store(false)
	return t.pc.Close()
}

func descriptionMessage(tag protocol.Type, desc *webrtc.SessionDescription) (protocol.Message, error) {
	data, err := json.Marshal(protocol.SessionDescription{
		Type: desc.Type.String(),
		SDP:  desc.SDP,
	})
	if err != nil {
		return protocol.Message{}, err
	}
	return protocol.Message{Type: tag, Data: data}, nil
}

func parseDescription(msg protocol.Message, want webrtc.SDPType) (webrtc.SessionDescription, error) {
	var body protocol.SessionDescription
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("malformed %s payload: %w", want, err)
	}
	if body.Type == "" || body.SDP == "" {
		return webrtc.SessionDescription{}, fmt.Errorf("malformed %s payload: missing type or sdp", want)
	}
	if body.Type != want.String() {
		return webrtc.SessionDescription{}, fmt.Errorf("unexpected description type %q, want %q", body.Type, want)
	}
	return webrtc.SessionDescription{Type: want, SDP: body.SDP}, nil
}
