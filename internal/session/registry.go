// ABOUTME: Registry mapping session identifiers to live store connections
// ABOUTME: Owns the connect/disconnect lifecycle and per-session operation serialization

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/vault-gateway/internal/store"
)

// Session binds a server-issued identifier to an authenticated store
// connection. A session owns its connection exclusively: two logins by the
// same principal yield two independent sessions and connections.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	// mu serializes all use of conn. The store collaborator makes no
	// concurrency guarantees for a single connection, so operations for one
	// session run one at a time; Disconnect takes the same lock, so an
	// in-flight operation completes against the still-valid connection
	// before the close proceeds.
	mu   sync.Mutex
	conn store.Conn
}

// Do runs fn with exclusive use of the session's connection. After the
// session has been disconnected, Do fails cleanly with store.ErrConnClosed
// without invoking fn.
func (s *Session) Do(fn func(store.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return store.ErrConnClosed
	}
	return fn(s.conn)
}

// Registry is the process-wide table of live sessions. It is backed by a
// sync.Map so a lookup for one session never blocks behind a concurrent
// connect or disconnect for another.
type Registry struct {
	dialer   store.Dialer
	logger   *slog.Logger
	sessions sync.Map // session ID -> *Session
}

// NewRegistry creates an empty registry that opens connections through dialer.
func NewRegistry(dialer store.Dialer, logger *slog.Logger) *Registry {
	return &Registry{
		dialer: dialer,
		logger: logger.With("component", "session"),
	}
}

// Connect opens a store connection with the given credentials and registers
// a new session owning it. On authentication failure the dialer's
// *store.AuthError is returned unchanged and no session is created.
func (r *Registry) Connect(ctx context.Context, username, passphrase, addr string) (*Session, error) {
	conn, err := r.dialer.Connect(ctx, addr, username, passphrase)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
		conn:      conn,
	}
	r.sessions.Store(s.ID, s)

	r.logger.Info("session connected", "session_id", s.ID, "username", username)
	return s, nil
}

// Disconnect closes the session's connection and removes it from the
// registry. It is idempotent: disconnecting an unknown or already-closed
// session is a no-op. The connection is closed exactly once.
func (r *Registry) Disconnect(id string) {
	value, loaded := r.sessions.LoadAndDelete(id)
	if !loaded {
		return
	}
	s := value.(*Session)

	// Wait for any in-flight operation, then close and drop the connection
	// so stale holders of this session fail cleanly.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		r.logger.Warn("closing store connection", "session_id", id, "error", err)
	}
	s.conn = nil

	r.logger.Info("session disconnected", "session_id", id, "username", s.Username)
}

// Resolve returns the live session registered under id. A miss means the
// caller is not authenticated; there is no fallback. The lookup is a single
// map read regardless of registry size.
func (r *Registry) Resolve(id string) (*Session, bool) {
	value, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*Session), true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close disconnects every live session, for server shutdown.
func (r *Registry) Close() {
	r.sessions.Range(func(key, _ any) bool {
		r.Disconnect(key.(string))
		return true
	})
}
