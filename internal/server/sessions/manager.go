// Package sessions tracks which connection currently speaks for each
// authenticated username and enforces the at-most-one-live-session-per-user
// invariant, including the kick protocol for superseded logins.
package sessions

import (
	"context"
	"sync"

	"github.com/examhub/examhub/internal/logging"
	"github.com/google/uuid"
)

// KickMessage is pushed to a connection whose session was taken over by a
// newer login for the same username. Clients key off the "another
// location" substring, so keep it stable.
const KickMessage = "Logged in from another location"

// Endpoint is the outbound side of a connection. The manager never touches
// a socket directly: it pushes an error frame into the victim's outbound
// queue and asks the connection to shut itself down, so a kick can never
// deadlock against the victim's own writes.
type Endpoint interface {
	// PushError queues an ERR frame. Must not block.
	PushError(message string)

	// Shutdown closes the outbound queue; the connection's writer flushes
	// pending frames and then closes the socket. Must not block and must be
	// safe to call more than once.
	Shutdown()
}

// Session binds one live connection to an authenticated identity.
type Session struct {
	ID       string
	UserName string
	Role     string
	endpoint Endpoint
}

type Manager struct {
	mu     sync.Mutex
	byUser map[string]*Session
	logger logging.Logger
}

func NewManager(logger logging.Logger) *Manager {
	return &Manager{
		byUser: make(map[string]*Session),
		logger: logger.With("module", "sessions"),
	}
}

// Bind makes ep the current session for userName, replacing any previous
// one. A previous session on a different endpoint is kicked: it gets the
// KickMessage pushed and its endpoint shut down, all before Bind returns,
// so the caller's success reply is ordered after the takeover.
func (m *Manager) Bind(ctx context.Context, userName, role string, ep Endpoint) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		UserName: userName,
		Role:     role,
		endpoint: ep,
	}

	m.mu.Lock()
	old := m.byUser[userName]
	m.byUser[userName] = session
	m.mu.Unlock()

	if old != nil && old.endpoint != ep {
		m.logger.Info(ctx, "kicking superseded session", "username", userName, "session_id", old.ID)
		old.endpoint.PushError(KickMessage)
		old.endpoint.Shutdown()
	}

	return session
}

// Release forgets the session if it is still the current one for its user.
// A session already superseded by a newer login is left alone.
func (m *Manager) Release(ctx context.Context, session *Session) {
	if session == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.byUser[session.UserName]; current != nil && current.ID == session.ID {
		delete(m.byUser, session.UserName)
	}
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}
