// Package session tracks the archive uploads issued by one client session.
//
// An Upload represents a single asynchronous transfer. It owns the archive
// stream, the cancellation function of the transfer context and the
// eventual outcome. The outcome is published exactly once by Finish, which
// also releases the stream, so readers never observe a half-written record.
//
// A Registry is the append-only, ordered collection of uploads for the
// lifetime of a client. Entries are never removed or reordered.
package session
