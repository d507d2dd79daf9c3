// Package input delivers remote-control events with the lowest achievable
// latency while guaranteeing delivery through a reliable fallback.
package input

import (
	"log/slog"
	"sync"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

// SideChannel is the unordered, non-retransmitting peer-to-peer transport
// preferred for input.
type SideChannel interface {
	SideChannelReady() bool
	SendInput(msg protocol.Message) error
}

// Relay is the ordered, reliable fallback transport.
type Relay interface {
	Send(msg protocol.Message) error
}

// Selector chooses, per outgoing input message, between the side-channel
// and the relay connection, and batches high-frequency pointer motion.
// Readiness is re-checked at send time, never cached: it can change between
// enqueue and flush.
type Selector struct {
	side      SideChannel
	relay     Relay
	sessionID string

	mu             sync.Mutex
	pending        []protocol.MouseData
	flushScheduled bool

	// scheduleFlush defers f to the next scheduling turn. The default is an
	// immediate goroutine hand-off; tests substitute a manual trigger.
	scheduleFlush func(f func())
}

// NewSelector builds a selector for one session's input stream.
func NewSelector(side SideChannel, relay Relay, sessionID string) *Selector {
	return &Selector{
		side:          side,
		relay:         relay,
		sessionID:     sessionID,
		scheduleFlush: func(f func()) { go f() },
	}
}

// SideChannelReady is advisory, for status display only.
func (s *Selector) SideChannelReady() bool {
	return s.side.SideChannelReady()
}

// SendDiscrete delivers one self-contained event: clicks, key transitions,
// resolution updates. The side-channel is tried first; if and only if that
// attempt does not succeed the relay carries it. Never both.
func (s *Selector) SendDiscrete(msg protocol.Message) error {
	msg.SessionID = s.sessionID
	if s.side.SideChannelReady() {
		if err := s.side.SendInput(msg); err == nil {
			return nil
		} else {
			slog.Debug("side channel send failed, falling back to relay", "type", msg.Type, "err", err)
		}
	}
	return s.relay.Send(msg)
}

// QueueMouseMove enqueues one pointer position. Nothing is sent
// immediately; the whole queue flushes on the next scheduling turn as a
// single batch. Pointer motion is loss-tolerant and latency-sensitive, so
// batching amortizes per-message overhead on a channel that accepts
// reordering and drops.
func (s *Selector) QueueMouseMove(x, y float64) {
	s.mu.Lock()
	s.pending = append(s.pending, protocol.MouseData{X: x, Y: y})
	alreadyScheduled := s.flushScheduled
	s.flushScheduled = true
	s.mu.Unlock()

	if !alreadyScheduled {
		s.scheduleFlush(s.flush)
	}
}

// flush drains the pending queue: one mouse_move_batch over the
// side-channel, or - when the channel is not ready at flush time -
// individual mouse_move relay messages in enqueue order.
func (s *Selector) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.flushScheduled = false
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if s.side.SideChannelReady() {
		err := s.side.SendInput(protocol.Message{
			Type:       protocol.TypeMouseMoveBatch,
			SessionID:  s.sessionID,
			MouseBatch: batch,
		})
		if err == nil {
			return
		}
		slog.Debug("batch send failed, falling back to relay", "err", err)
	}

	for i := range batch {
		md := batch[i]
		err := s.relay.Send(protocol.Message{
			Type:      protocol.TypeMouseMove,
			SessionID: s.sessionID,
			MouseData: &md,
		})
		if err != nil {
			slog.Warn("relay mouse move dropped", "err", err)
		}
	}
}
