// internal/core/ports/snapshot_store.go
package ports

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when nothing is stored under the key
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore defines the persistence port for the serialized cart.
// It is a plain key/value byte store.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}
