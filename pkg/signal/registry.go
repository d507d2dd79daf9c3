package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/tomaslejdung/godesk/pkg/protocol"
)

var (
	// ErrSessionExists is returned when creating a session whose id is taken.
	ErrSessionExists = errors.New("session already exists")
	// ErrSessionNotFound is returned when joining or cleaning a session
	// that does not exist.
	ErrSessionNotFound = errors.New("session not found")
)

// Conn is the relay endpoint a session member is reachable on. The server's
// websocket client implements it; tests supply fakes.
type Conn interface {
	Deliver(msg protocol.Message)
}

// Session pairs one host connection with the clients that joined it.
type Session struct {
	host      Conn
	clients   map[string]Conn
	createdAt time.Time
}

// Registry is the in-memory table of active sessions. It is owned by one
// Server instance and passed around explicitly; it never notifies anyone
// itself - callers deliver the messages the returned handles imply.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create inserts a new session with the given host. Fails with
// ErrSessionExists when the id is already taken.
func (r *Registry) Create(id string, host Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return ErrSessionExists
	}
	r.sessions[id] = &Session{
		host:      host,
		clients:   make(map[string]Conn),
		createdAt: time.Now(),
	}
	return nil
}

// Join attaches a client to an existing session, overwriting any previous
// entry for the same clientID, and returns the host so the caller can send
// it client_joined.
func (r *Registry) Join(id, clientID string, client Conn) (Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, exists := r.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	sess.clients[clientID] = client
	return sess.host, nil
}

// Departure describes who is left to notify after a Leave or DropConn.
type Departure struct {
	SessionID string
	WasHost   bool
	// Host is set when a client left and a host remains to be told.
	Host Conn
	// Clients holds every remaining client when the host left.
	Clients map[string]Conn
	// ClientID is the departing client's id when WasHost is false.
	ClientID string
}

// Leave removes conn from the session. A departing host takes the session
// down with it; a departing client only vacates its slot.
func (r *Registry) Leave(id string, conn Conn, clientID string) (Departure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, exists := r.sessions[id]
	if !exists {
		return Departure{}, ErrSessionNotFound
	}

	if sess.host == conn {
		clients := sess.clients
		delete(r.sessions, id)
		return Departure{SessionID: id, WasHost: true, Clients: clients}, nil
	}

	delete(sess.clients, clientID)
	r.pruneLocked(id, sess)
	return Departure{SessionID: id, Host: sess.host, ClientID: clientID}, nil
}

// Cleanup removes the session unconditionally and returns every member so
// the caller can send session_terminated. ErrSessionNotFound when absent.
func (r *Registry) Cleanup(id string) (host Conn, clients map[string]Conn, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, exists := r.sessions[id]
	if !exists {
		return nil, nil, ErrSessionNotFound
	}
	delete(r.sessions, id)
	return sess.host, sess.clients, nil
}

// DropConn removes conn from every session it participates in and reports
// one Departure per affected session. Membership is not indexed back from
// the connection, so this scans all sessions. Calling it again for the same
// conn finds nothing and returns an empty slice - disconnect cleanup must
// be idempotent.
func (r *Registry) DropConn(conn Conn) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	var departures []Departure
	for id, sess := range r.sessions {
		if sess.host == conn {
			departures = append(departures, Departure{
				SessionID: id,
				WasHost:   true,
				Clients:   sess.clients,
			})
			delete(r.sessions, id)
			continue
		}
		for clientID, c := range sess.clients {
			if c == conn {
				delete(sess.clients, clientID)
				departures = append(departures, Departure{
					SessionID: id,
					Host:      sess.host,
					ClientID:  clientID,
				})
			}
		}
		r.pruneLocked(id, sess)
	}
	return departures
}

// Host returns the host connection for routing client-originated messages.
func (r *Registry) Host(id string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.sessions[id]
	if !exists || sess.host == nil {
		return nil, false
	}
	return sess.host, true
}

// Client returns a specific client connection for host-originated messages.
func (r *Registry) Client(id, clientID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.sessions[id]
	if !exists {
		return nil, false
	}
	c, ok := sess.clients[clientID]
	return c, ok
}

// SessionInfo is a point-in-time view of one session for the REST surface.
type SessionInfo struct {
	ID        string    `json:"id"`
	Clients   int       `json:"clients"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot lists all active sessions.
func (r *Registry) Snapshot() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for id, sess := range r.sessions {
		infos = append(infos, SessionInfo{
			ID:        id,
			Clients:   len(sess.clients),
			CreatedAt: sess.createdAt,
		})
	}
	return infos
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// pruneLocked drops a session that lost everyone. Caller holds r.mu.
func (r *Registry) pruneLocked(id string, sess *Session) {
	if sess.host == nil && len(sess.clients) == 0 {
		delete(r.sessions, id)
	}
}
