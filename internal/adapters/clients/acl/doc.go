// Package acl is the anti-corruption layer between the engine and the tree
// backends. It implements ports.RemoteTree on top of the instrumented
// clients.Client and keeps backend vocabulary out of the domain:
//
//   - Backend and client errors become domain errors ([MapTreeError])
//   - Values are encoded as JSON records ([EncodeRecord])
//   - Queries are evaluated the same way for every backend
//   - Every write publishes a change notice that drives subscriptions
//
// # Error Handling Strategy
//
// The ACL translates all failures to domain errors:
//   - Malformed paths and unencodable values → [domain.ErrValidation]
//   - Constraint violations → [domain.ErrConflict]
//   - Circuit open, retries exhausted, closed or unreachable backends,
//     busy databases → [domain.ErrUnavailable]
//
// Caller cancellation is passed through unchanged so handlers can tell a
// client that went away from a backend that failed.
package acl
