// ABOUTME: Store collaborator boundary: connection dialing and per-connection operations
// ABOUTME: Defines Object, Dialer, Conn, and the error types the gateway branches on

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/vault-gateway/internal/query"
)

// ErrNoSuchObject is returned when an id does not exist within a resource.
var ErrNoSuchObject = errors.New("no such object")

// ErrConnClosed is returned by operations on a closed connection.
var ErrConnClosed = errors.New("connection closed")

// AuthError is returned by Connect when the store rejects the credentials.
// Reason carries the store's failure message and is surfaced to the client.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// Object is one stored object: an opaque identifier plus its flattened
// fields. Fields holds only JSON-representable values.
type Object struct {
	ID     string
	Fields map[string]any
}

// Dialer opens authenticated connections to the vault store.
type Dialer interface {
	// Connect opens a connection to the store at addr using the given
	// credentials. A credential rejection is reported as *AuthError.
	Connect(ctx context.Context, addr, username, passphrase string) (Conn, error)
}

// Conn is a live, authenticated channel to the store. A Conn is owned
// exclusively by one session and is not safe for concurrent use; the session
// layer serializes operations per connection.
type Conn interface {
	// Get fetches one object by id. Missing ids return ErrNoSuchObject.
	Get(ctx context.Context, resource, id string) (*Object, error)

	// Insert stores a new object transactionally and returns its assigned id.
	Insert(ctx context.Context, resource string, fields map[string]any) (string, error)

	// Delete removes one object transactionally. A missing id returns
	// ErrNoSuchObject.
	Delete(ctx context.Context, resource, id string) error

	// Find executes a compiled query plan and returns the matching page of
	// objects. Ordering is deterministic for a fixed dataset and spec.
	Find(ctx context.Context, resource string, spec *query.Spec) ([]*Object, error)

	// Close releases the connection. It is called exactly once, on
	// disconnect; operations after Close return ErrConnClosed.
	Close() error
}
