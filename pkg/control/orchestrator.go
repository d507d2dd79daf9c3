// Package control hosts the per-participant connection orchestrator: it
// owns a peer transport and a relay connection, runs the permission
// handshake, and drives reconnection and host/client role reversal when
// the peer-to-peer link degrades.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"

	"github.com/tomaslejdung/godesk/pkg/input"
	"github.com/tomaslejdung/godesk/pkg/protocol"
	"github.com/tomaslejdung/godesk/pkg/rtc"
	"github.com/tomaslejdung/godesk/pkg/signal"
)

// ErrAlreadyStarted is returned when starting an orchestrator twice.
var ErrAlreadyStarted = errors.New("orchestrator already started")

const defaultRestartDelay = 2 * time.Second

// Transport is the peer-to-peer side of a participant: media track plus
// the unreliable input side-channel. *rtc.PeerTransport implements it;
// tests substitute fakes.
type Transport interface {
	CreateSideChannel() error
	SideChannelReady() bool
	SendInput(msg protocol.Message) error
	AttachTrack(track webrtc.TrackLocal) error
	CreateOffer() (protocol.Message, error)
	HandleOffer(msg protocol.Message) (protocol.Message, error)
	HandleAnswer(msg protocol.Message) error
	AddICECandidate(msg protocol.Message) error
	OnCandidate(cb func(protocol.Message))
	OnStateChange(cb func(webrtc.PeerConnectionState))
	OnInput(cb func(protocol.Message))
	OnTrack(cb func(*webrtc.TrackRemote))
	Close() error
}

// Relay is the ordered, reliable connection to the signaling server.
// *signal.RelayClient implements it.
type Relay interface {
	CreateSession(ctx context.Context, id string) error
	JoinSession(ctx context.Context, id, clientID string) error
	Send(msg protocol.Message) error
	Messages() <-chan protocol.Message
	Close()
}

// Config wires an orchestrator to its server, transport factory and
// collaborators. Zero-value fields get working defaults.
type Config struct {
	ServerURL string
	RTC       rtc.Config

	Screen     ScreenProvider
	Input      InputSink
	Resolution ResolutionProvider

	// RestartDelay spaces the single retry of a failed restart-as-host.
	RestartDelay time.Duration

	// Dial and NewTransport exist for tests; production uses the relay
	// client and pion transport.
	Dial         func(ctx context.Context) (Relay, error)
	NewTransport func() (Transport, error)
}

func (cfg Config) withDefaults() Config {
	if cfg.Dial == nil {
		url := cfg.ServerURL
		cfg.Dial = func(ctx context.Context) (Relay, error) {
			return signal.Dial(ctx, url)
		}
	}
	if cfg.NewTransport == nil {
		rtcCfg := cfg.RTC
		cfg.NewTransport = func() (Transport, error) {
			return rtc.New(rtcCfg)
		}
	}
	if cfg.Screen == nil {
		cfg.Screen = SyntheticScreen{}
	}
	if cfg.Input == nil {
		cfg.Input = LogSink{}
	}
	if cfg.Resolution == nil {
		cfg.Resolution = StaticResolution{Width: 1920, Height: 1080}
	}
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	return cfg
}

// Orchestrator is the top-level state machine for one participant. All
// state below the mutex is owned by the run loop; public methods post
// commands into it.
type Orchestrator struct {
	cfg    Config
	events chan Event

	internal chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	running   bool
	state     State
	role      Role
	sessionID string
	clientID  string // this participant's id when acting as client
	activeCli string // the client being served when acting as host
	relay     Relay
	transport Transport
	selector  *input.Selector

	screenWidth  int
	screenHeight int

	restartInFlight bool
	restartRetried  bool
}

// New creates an orchestrator. Call StartHost or StartClient to connect.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg.withDefaults(),
		events:   make(chan Event, 64),
		internal: make(chan func(), 64),
		done:     make(chan struct{}),
		state:    StateDisconnected,
	}
}

// Events is the notification channel the UI layer subscribes to.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// State returns the current connection state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Role returns the participant's current role; it flips to host after a
// role reversal.
func (o *Orchestrator) Role() Role {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.role
}

// SessionID returns the session this participant belongs to.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// SideChannelReady reports whether the low-latency path is up. Advisory,
// for status display.
func (o *Orchestrator) SideChannelReady() bool {
	o.mu.Lock()
	t := o.transport
	o.mu.Unlock()
	return t != nil && t.SideChannelReady()
}

// StartHost creates the session and waits for a client to join.
func (o *Orchestrator) StartHost(ctx context.Context, sessionID string) error {
	return o.start(ctx, RoleHost, sessionID)
}

// StartClient joins an existing session.
func (o *Orchestrator) StartClient(ctx context.Context, sessionID string) error {
	return o.start(ctx, RoleClient, sessionID)
}

func (o *Orchestrator) start(ctx context.Context, role Role, sessionID string) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.running = true
	o.role = role
	o.sessionID = sessionID
	if role == RoleClient {
		o.clientID = uuid.NewString()
	}
	o.screenWidth, o.screenHeight = o.cfg.Resolution.ScreenResolution()
	o.mu.Unlock()

	o.setState(StateConnecting, "")

	relay, transport, err := o.connect(ctx, role, sessionID)
	if err != nil {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		o.setState(StateFailed, err.Error())
		return err
	}

	o.install(relay, transport)
	if role == RoleClient {
		// The side-channel and the stream arrive when the host grants
		// permission; until then the client just waits.
		o.setState(StateWaitingForPermission, "")
	}

	go o.run()
	return nil
}

// connect performs the setup sequence for one role: dial the relay, run
// the create/join exchange (bounded by the relay's ack timeout), then
// prepare the peer transport. The host side always creates the
// side-channel; the client receives it passively.
func (o *Orchestrator) connect(ctx context.Context, role Role, sessionID string) (Relay, Transport, error) {
	relay, err := o.cfg.Dial(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect relay: %w", err)
	}

	if role == RoleHost {
		err = relay.CreateSession(ctx, sessionID)
	} else {
		o.mu.Lock()
		clientID := o.clientID
		o.mu.Unlock()
		err = relay.JoinSession(ctx, sessionID, clientID)
	}
	if err != nil {
		relay.Close()
		return nil, nil, err
	}

	transport, err := o.cfg.NewTransport()
	if err != nil {
		relay.Close()
		return nil, nil, fmt.Errorf("create transport: %w", err)
	}
	o.wireTransport(transport, relay, role)

	if role == RoleHost {
		if err := transport.CreateSideChannel(); err != nil {
			transport.Close()
			relay.Close()
			return nil, nil, err
		}
	}

	return relay, transport, nil
}

// wireTransport hooks transport callbacks into the run loop. Candidates
// are forwarded straight to the relay; everything that touches state goes
// through post.
func (o *Orchestrator) wireTransport(t Transport, relay Relay, role Role) {
	t.OnCandidate(func(msg protocol.Message) {
		o.mu.Lock()
		msg.SessionID = o.sessionID
		if role == RoleHost {
			msg.ClientID = o.activeCli
		}
		o.mu.Unlock()
		if err := relay.Send(msg); err != nil {
			slog.Debug("candidate dropped", "err", err)
		}
	})
	t.OnStateChange(func(state webrtc.PeerConnectionState) {
		o.post(func() { o.handleTransportState(t, state) })
	})
	t.OnInput(func(msg protocol.Message) {
		o.post(func() { o.handleRemoteInput(msg) })
	})
	t.OnTrack(func(track *webrtc.TrackRemote) {
		o.post(func() {
			o.emit(Event{Kind: EventStreamReceived, Track: track})
		})
	})
}

func (o *Orchestrator) install(relay Relay, transport Transport) {
	o.mu.Lock()
	o.relay = relay
	o.transport = transport
	o.selector = input.NewSelector(transport, relay, o.sessionID)
	o.mu.Unlock()
}

// run is the orchestrator's event loop: relay messages and posted
// commands, one at a time, until Stop.
func (o *Orchestrator) run() {
	for {
		o.mu.Lock()
		relay := o.relay
		o.mu.Unlock()

		var msgCh <-chan protocol.Message
		if relay != nil {
			msgCh = relay.Messages()
		}

		select {
		case fn := <-o.internal:
			fn()
		case msg, ok := <-msgCh:
			if !ok {
				o.handleRelayClosed(relay)
				continue
			}
			o.handleRelayMessage(msg)
		case <-o.done:
			return
		}
	}
}

// post hands fn to the run loop.
func (o *Orchestrator) post(fn func()) {
	select {
	case o.internal <- fn:
	case <-o.done:
	}
}

func (o *Orchestrator) emit(ev Event) {
	o.mu.Lock()
	ev.Role = o.role
	o.mu.Unlock()
	select {
	case o.events <- ev:
	default:
		slog.Warn("event dropped, subscriber too slow", "kind", ev.Kind)
	}
}

func (o *Orchestrator) setState(s State, reason string) {
	o.mu.Lock()
	if o.state == s {
		o.mu.Unlock()
		return
	}
	o.state = s
	o.mu.Unlock()
	o.emit(Event{Kind: EventStateChanged, State: s, Reason: reason})
}

// handleRelayMessage dispatches one decoded relay frame inside the loop.
func (o *Orchestrator) handleRelayMessage(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeClientJoined:
		o.handleClientJoined(msg)
	case protocol.TypePermissionResponse:
		o.handlePermissionResponse(msg)
	case protocol.TypeOffer:
		o.handleOffer(msg)
	case protocol.TypeAnswer:
		o.handleAnswer(msg)
	case protocol.TypeICECandidate:
		o.handleCandidate(msg)
	case protocol.TypeHostDisconnected:
		reason := msg.Reason
		if reason == "" {
			reason = "Connection lost - host may have disconnected"
		}
		o.handleTransportFailure(reason)
	case protocol.TypeSessionTerminated:
		o.teardown()
		reason := "session terminated"
		if msg.Reason != "" {
			reason = "session terminated: " + msg.Reason
		}
		o.setState(StateDisconnected, reason)
	case protocol.TypeClientLeft:
		o.emit(Event{Kind: EventClientLeft, ClientID: msg.ClientID})
	case protocol.TypeError:
		slog.Warn("relay error", "reason", msg.Reason)
	case protocol.TypeMouseMove, protocol.TypeMouseMoveBatch,
		protocol.TypeMouseClick, protocol.TypeMouseDown, protocol.TypeMouseUp,
		protocol.TypeKeyDown, protocol.TypeKeyUp, protocol.TypeScreenResolution:
		// Relay fallback path for input.
		o.handleRemoteInput(msg)
	default:
		slog.Debug("unhandled relay message", "type", msg.Type)
	}
}

func (o *Orchestrator) handleClientJoined(msg protocol.Message) {
	o.mu.Lock()
	isHost := o.role == RoleHost
	if isHost {
		o.activeCli = msg.ClientID
	}
	o.mu.Unlock()
	if !isHost {
		return
	}

	o.setState(StateWaitingForPermission, "")
	o.emit(Event{Kind: EventPermissionRequest, ClientID: msg.ClientID})
}

func (o *Orchestrator) handlePermissionResponse(msg protocol.Message) {
	if msg.Granted != nil && *msg.Granted {
		return // the offer follows; nothing to do yet
	}
	reason := msg.Reason
	if reason == "" {
		reason = "permission denied by host"
	}
	o.teardown()
	o.setState(StateDisconnected, reason)
}

func (o *Orchestrator) handleOffer(msg protocol.Message) {
	o.mu.Lock()
	transport, relay := o.transport, o.relay
	sessionID, clientID := o.sessionID, o.clientID
	o.mu.Unlock()
	if transport == nil || relay == nil {
		return
	}

	// Answer creation waits for ICE gathering; keep it off the loop.
	go func() {
		answer, err := transport.HandleOffer(msg)
		if err != nil {
			slog.Warn("offer rejected", "err", err)
			return
		}
		answer.SessionID = sessionID
		answer.ClientID = clientID
		if err := relay.Send(answer); err != nil {
			slog.Warn("answer dropped", "err", err)
		}
	}()
}

func (o *Orchestrator) handleAnswer(msg protocol.Message) {
	o.mu.Lock()
	transport := o.transport
	o.mu.Unlock()
	if transport == nil {
		return
	}
	if err := transport.HandleAnswer(msg); err != nil {
		slog.Warn("answer rejected", "err", err)
	}
}

func (o *Orchestrator) handleCandidate(msg protocol.Message) {
	o.mu.Lock()
	transport := o.transport
	o.mu.Unlock()
	if transport == nil {
		return
	}
	if err := transport.AddICECandidate(msg); err != nil {
		slog.Debug("ICE candidate rejected", "err", err)
	}
}

func (o *Orchestrator) handleTransportState(t Transport, state webrtc.PeerConnectionState) {
	o.mu.Lock()
	current := o.transport
	role := o.role
	o.mu.Unlock()
	if t != current {
		return // a torn-down transport reporting its own demise
	}

	switch state {
	case webrtc.PeerConnectionStateConnected:
		o.setState(StateConnected, "")
		if role == RoleHost {
			o.sendResolution()
		}
	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected:
		reason := "Connection lost - client may have disconnected"
		if role == RoleClient {
			reason = "Connection lost - host may have disconnected"
		}
		o.handleTransportFailure(reason)
	}
}

func (o *Orchestrator) handleRelayClosed(relay Relay) {
	o.mu.Lock()
	stale := relay != o.relay
	o.mu.Unlock()
	if stale {
		return // closed deliberately during teardown or restart
	}
	o.handleTransportFailure("relay connection lost")
}

// handleTransportFailure drives the reconnection and role-reversal state
// machine: the participant tears everything down and restarts as host on
// the same session id, so a future connect attempt from the other side can
// succeed symmetrically.
func (o *Orchestrator) handleTransportFailure(reason string) {
	o.mu.Lock()
	inFlight := o.restartInFlight
	o.mu.Unlock()
	if inFlight {
		return
	}

	o.setState(StateFailed, reason)
	o.beginRestart()
}

// beginRestart is the single-flight entry to restarting as host. Only one
// restart sequence may be in progress at a time.
func (o *Orchestrator) beginRestart() {
	o.mu.Lock()
	if o.restartInFlight {
		o.mu.Unlock()
		return
	}
	o.restartInFlight = true
	o.restartRetried = false
	o.role = RoleHost
	o.activeCli = ""
	o.mu.Unlock()

	o.teardown()
	go o.restart()
}

func (o *Orchestrator) restart() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	o.mu.Lock()
	sessionID := o.sessionID
	o.mu.Unlock()

	relay, transport, err := o.connect(ctx, RoleHost, sessionID)
	o.post(func() { o.finishRestart(relay, transport, err) })
}

func (o *Orchestrator) finishRestart(relay Relay, transport Transport, err error) {
	if err != nil {
		o.mu.Lock()
		retried := o.restartRetried
		o.restartRetried = true
		o.mu.Unlock()

		if !retried {
			slog.Warn("restart as host failed, retrying once", "err", err)
			time.AfterFunc(o.cfg.RestartDelay, o.restart)
			return
		}

		o.mu.Lock()
		o.restartInFlight = false
		o.state = StateFailed
		o.mu.Unlock()
		// Emitted directly: the state is usually already failed, but the
		// subscriber still needs to learn the retry is exhausted.
		o.emit(Event{Kind: EventStateChanged, State: StateFailed, Reason: "reconnect failed: " + err.Error()})
		return
	}

	o.install(relay, transport)
	o.mu.Lock()
	o.restartInFlight = false
	o.mu.Unlock()
	o.setState(StateConnecting, "")
	slog.Info("restarted as host", "session", o.SessionID())
}

// GrantPermission is the host UI accepting a pending client: attach the
// screen stream, confirm, then take the offering role.
func (o *Orchestrator) GrantPermission() {
	o.post(func() {
		o.mu.Lock()
		ok := o.role == RoleHost && o.state == StateWaitingForPermission
		transport, relay := o.transport, o.relay
		sessionID, clientID := o.sessionID, o.activeCli
		o.mu.Unlock()
		if !ok || transport == nil || relay == nil {
			slog.Warn("permission grant ignored", "state", o.State())
			return
		}

		track, err := o.cfg.Screen.AcquireTrack()
		if err != nil {
			o.setState(StateFailed, "screen capture unavailable: "+err.Error())
			return
		}
		if err := transport.AttachTrack(track); err != nil {
			o.setState(StateFailed, "attach stream: "+err.Error())
			return
		}

		granted := true
		err = relay.Send(protocol.Message{
			Type:      protocol.TypePermissionResponse,
			SessionID: sessionID,
			ClientID:  clientID,
			Granted:   &granted,
		})
		if err != nil {
			o.handleTransportFailure("relay connection lost")
			return
		}

		go func() {
			offer, err := transport.CreateOffer()
			if err != nil {
				slog.Error("offer creation failed", "err", err)
				o.post(func() { o.setState(StateFailed, "offer creation failed") })
				return
			}
			offer.SessionID = sessionID
			offer.ClientID = clientID
			if err := relay.Send(offer); err != nil {
				slog.Warn("offer dropped", "err", err)
			}
		}()
	})
}

// DenyPermission is the host UI refusing a pending client.
func (o *Orchestrator) DenyPermission(reason string) {
	o.post(func() {
		o.mu.Lock()
		ok := o.role == RoleHost && o.state == StateWaitingForPermission
		relay := o.relay
		sessionID, clientID := o.sessionID, o.activeCli
		o.activeCli = ""
		o.mu.Unlock()
		if !ok || relay == nil {
			return
		}

		granted := false
		err := relay.Send(protocol.Message{
			Type:      protocol.TypePermissionResponse,
			SessionID: sessionID,
			ClientID:  clientID,
			Granted:   &granted,
			Reason:    reason,
		})
		if err != nil {
			slog.Warn("permission response dropped", "err", err)
		}
		o.setState(StateConnecting, "")
	})
}

// Disconnect is the explicit user action: leave the session, release the
// transports, and - like a peer-initiated failure - restart as host so the
// same peer or a new one can connect next.
func (o *Orchestrator) Disconnect() {
	o.post(func() {
		o.sendLeave()
		o.setState(StateDisconnected, "")
		o.beginRestart()
	})
}

// Stop shuts the orchestrator down for good.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.post(func() {
			o.sendLeave()
			o.teardown()
		})
		// Give the loop a turn to process the leave, then halt it.
		time.AfterFunc(100*time.Millisecond, func() { close(o.done) })
	})
}

func (o *Orchestrator) sendLeave() {
	o.mu.Lock()
	relay := o.relay
	sessionID, clientID := o.sessionID, o.clientID
	o.mu.Unlock()
	if relay == nil {
		return
	}
	err := relay.Send(protocol.Message{
		Type:      protocol.TypeLeaveSession,
		SessionID: sessionID,
		ClientID:  clientID,
	})
	if err != nil {
		slog.Debug("leave_session dropped", "err", err)
	}
}

func (o *Orchestrator) teardown() {
	o.mu.Lock()
	relay, transport := o.relay, o.transport
	o.relay, o.transport, o.selector = nil, nil, nil
	o.mu.Unlock()

	if transport != nil {
		transport.Close()
	}
	if relay != nil {
		relay.Close()
	}
}

// --- client-side input API ---

func (o *Orchestrator) currentSelector() *input.Selector {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selector
}

// SendMouseMove queues one normalized pointer position for the next batch.
func (o *Orchestrator) SendMouseMove(x, y float64) {
	if sel := o.currentSelector(); sel != nil {
		sel.QueueMouseMove(x, y)
	}
}

// SendMouseClick fires a click at a normalized position.
func (o *Orchestrator) SendMouseClick(x, y float64, button string) {
	o.sendPointer(protocol.TypeMouseClick, x, y, button)
}

// SendMouseDown presses a button at a normalized position.
func (o *Orchestrator) SendMouseDown(x, y float64, button string) {
	o.sendPointer(protocol.TypeMouseDown, x, y, button)
}

// SendMouseUp releases a button at a normalized position.
func (o *Orchestrator) SendMouseUp(x, y float64, button string) {
	o.sendPointer(protocol.TypeMouseUp, x, y, button)
}

func (o *Orchestrator) sendPointer(tag protocol.Type, x, y float64, button string) {
	sel := o.currentSelector()
	if sel == nil {
		return
	}
	err := sel.SendDiscrete(protocol.Message{
		Type:      tag,
		MouseData: &protocol.MouseData{X: x, Y: y, Button: button},
	})
	if err != nil {
		slog.Warn("pointer event dropped", "type", tag, "err", err)
	}
}

// SendKey fires a key transition with modifier state.
func (o *Orchestrator) SendKey(data protocol.KeyboardData, down bool) {
	sel := o.currentSelector()
	if sel == nil {
		return
	}
	tag := protocol.TypeKeyUp
	if down {
		tag = protocol.TypeKeyDown
	}
	err := sel.SendDiscrete(protocol.Message{Type: tag, KeyboardData: &data})
	if err != nil {
		slog.Warn("key event dropped", "err", err)
	}
}

// sendResolution reports the host's screen size so the client can map
// normalized coordinates for display.
func (o *Orchestrator) sendResolution() {
	o.mu.Lock()
	sel := o.selector
	clientID := o.activeCli
	w, h := o.screenWidth, o.screenHeight
	o.mu.Unlock()
	if sel == nil {
		return
	}
	err := sel.SendDiscrete(protocol.Message{
		Type:       protocol.TypeScreenResolution,
		ClientID:   clientID,
		Resolution: &protocol.Resolution{Width: w, Height: h},
	})
	if err != nil {
		slog.Debug("resolution report dropped", "err", err)
	}
}

// --- inbound input (host side) and resolution (client side) ---

// handleRemoteInput maps normalized coordinates through the cached screen
// resolution and hands events to the injection sink. Sink failures never
// touch connection state.
func (o *Orchestrator) handleRemoteInput(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeMouseMove:
		if msg.MouseData != nil {
			x, y := o.toPixels(msg.MouseData.X, msg.MouseData.Y)
			o.cfg.Input.MovePointer(x, y)
		}
	case protocol.TypeMouseMoveBatch:
		for i := range msg.MouseBatch {
			x, y := o.toPixels(msg.MouseBatch[i].X, msg.MouseBatch[i].Y)
			o.cfg.Input.MovePointer(x, y)
		}
	case protocol.TypeMouseClick:
		if msg.MouseData != nil {
			x, y := o.toPixels(msg.MouseData.X, msg.MouseData.Y)
			o.cfg.Input.ClickPointer(x, y, msg.MouseData.Button)
		}
	case protocol.TypeMouseDown, protocol.TypeMouseUp:
		if msg.MouseData != nil {
			x, y := o.toPixels(msg.MouseData.X, msg.MouseData.Y)
			o.cfg.Input.TogglePointer(x, y, msg.MouseData.Button, msg.Type == protocol.TypeMouseDown)
		}
	case protocol.TypeKeyDown, protocol.TypeKeyUp:
		if msg.KeyboardData != nil {
			o.cfg.Input.ToggleKey(msg.KeyboardData.Key, msg.Type == protocol.TypeKeyDown, modifiers(*msg.KeyboardData))
		}
	case protocol.TypeScreenResolution:
		if msg.Resolution != nil {
			o.emit(Event{Kind: EventResolution, Resolution: msg.Resolution})
		}
	}
}

func (o *Orchestrator) toPixels(x, y float64) (int, int) {
	o.mu.Lock()
	w, h := o.screenWidth, o.screenHeight
	o.mu.Unlock()
	return int(x * float64(w)), int(y * float64(h))
}

func modifiers(kd protocol.KeyboardData) []string {
	var mods []string
	if kd.CtrlKey {
		mods = append(mods, "ctrl")
	}
	if kd.ShiftKey {
		mods = append(mods, "shift")
	}
	if kd.AltKey {
		mods = append(mods, "alt")
	}
	if kd.MetaKey {
		mods = append(mods, "meta")
	}
	return mods
}
