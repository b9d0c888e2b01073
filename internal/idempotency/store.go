// Package idempotency deduplicates create requests carrying an Idempotency-Key header.
//
// A key moves through three states: absent, pending (reserved by an in-flight
// request) and bound to the id of the record the request created.
package idempotency

import "context"

const pending = "\x00pending"

// Store reserves keys for in-flight creates and remembers the record they produced.
type Store interface {
	// Reserve claims key. When the key already exists, reserved is false and
	// recordID is the bound record id, or empty while the owner is still running.
	Reserve(ctx context.Context, key string) (recordID string, reserved bool, err error)
	// Bind attaches the created record id to a reserved key.
	Bind(ctx context.Context, key, recordID string) error
	// Release forgets a key whose create failed so the client may retry.
	Release(ctx context.Context, key string) error
}
