// Package session tracks authenticated store connections.
//
// # Model
//
// A Session is created by Registry.Connect after the store accepts the
// client's credentials, and destroyed by Registry.Disconnect. Each session
// owns exactly one connection; the connection is never shared across
// sessions, even for the same username.
//
// # Concurrency
//
// The registry is the only shared mutable state in the gateway. It is backed
// by a sync.Map, so resolving one session never blocks behind a connect or
// disconnect for another. Within a session, Session.Do serializes store
// operations on the single connection.
//
// Disconnect is safe concurrently with an in-flight operation on the same
// session: the operation completes against the still-valid connection, then
// the close proceeds. Later operations through a stale session fail with
// store.ErrConnClosed.
package session
