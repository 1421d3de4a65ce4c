// Package store defines the boundary to the external vault store and ships
// a local SQLite-backed implementation of it.
//
// # Boundary
//
// The gateway never talks to storage directly; it goes through two small
// interfaces:
//
//	Dialer.Connect(ctx, addr, username, passphrase) -> Conn
//	Conn.Get / Insert / Delete / Find / Close
//
// Connect reports credential rejections as *AuthError, carrying the store's
// failure reason. Get and Delete report missing ids as ErrNoSuchObject.
//
// A Conn is exclusively owned by one session and is not safe for concurrent
// use; the session layer serializes operations per connection and calls
// Close exactly once.
//
// # Local Store
//
// SQLiteStore is the bundled implementation used for development and tests.
// Objects are stored as JSON rows and query plans are evaluated client-side
// over the decoded fields, mirroring how the encrypted store's clients work:
// the database never sees the criteria. Users authenticate against bcrypt
// passphrase hashes.
package store
