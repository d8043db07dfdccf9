// Package clients provides the instrumented client for the remote tree
// backend.
package clients

import "errors"

// Client errors represent failures in the tree client layer. The acl
// package translates them into domain errors.
var (
	// ErrCircuitOpen is returned while the circuit breaker is open: the
	// backend has failed repeatedly and operations are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after every read attempt failed.
	// The last attempt's error is wrapped.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
