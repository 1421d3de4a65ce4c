// Package auth issues and verifies session credentials.
//
// A credential is an HS256 JWT whose subject is the session ID assigned by
// the registry at connect time. Verifying the signature proves the token was
// issued by this gateway; the session ID is then resolved against the live
// registry, so a structurally valid token for a disconnected session still
// fails authentication.
//
// The credential travels as the vault_session cookie (set by /_connect) or
// as a bearer Authorization header. The two are interchangeable, and a
// missing credential is indistinguishable from an invalid one: both yield
// 403 from the gateway.
package auth
