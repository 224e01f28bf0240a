package storage

import (
	"context"
	"io"
)

// EvidenceStorage stores binary evidence assets (handover photos, signed
// contract scans) and hands back stable reference URLs. References are
// write-once: a stored asset is never overwritten under the same key.
type EvidenceStorage interface {
	// Upload stores the asset under key and returns its reference URL.
	Upload(ctx context.Context, key string, contentType string, r io.Reader) (string, error)

	// Delete removes a stored asset. Used to clean up after a partially
	// failed multi-asset upload. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is stored and its size.
	Exists(ctx context.Context, key string) (bool, int64, error)

	// Open reads a stored asset (serving path for the local backend).
	Open(key string) (io.ReadCloser, error)
}
