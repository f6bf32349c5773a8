package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// SnapshotSink receives every freshly refreshed snapshot. Implementations
// must not retain or mutate the markets slice.
type SnapshotSink interface {
	StoreSnapshot(ctx context.Context, snap Snapshot) error
}
