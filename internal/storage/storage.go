// Package storage persists uploaded image blobs. The catalog only ever sees
// the opaque locators returned by Save; what they mean is backend-specific.
package storage

import "context"

// Store writes and removes blobs. Save returns the locator to persist in the
// catalog record; Remove accepts that same locator.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, locator string) error
}
