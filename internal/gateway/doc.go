// Package gateway is the HTTP front for the vault store.
//
// It owns the request surface and nothing else: sessions live in the
// session registry, resource names resolve through the schema resolver,
// and store operations run over the connection a session owns. Every data
// endpoint applies the same two checks in the same order, session first,
// resource second, so an unauthenticated request for an unknown resource
// reports 403, not 404.
//
// Errors go to the client as a JSON envelope {error, error_class}. The
// class names the failure category (AuthenticationError, NotFoundError,
// ValidationError, StoreError) so clients can branch without parsing
// messages.
package gateway
