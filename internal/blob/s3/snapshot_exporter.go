package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// SnapshotExporter implements domain.SnapshotSink. Each snapshot becomes a
// JSONL object with one market per line, partitioned by UTC date:
//
//	{prefix}/snapshots/2025-01-31/153000.jsonl
//
// plus an overwritten {prefix}/latest.json manifest pointing at it. Exports
// are write-only; nothing reads them back into the service.
type SnapshotExporter struct {
	writer domain.BlobWriter
	prefix string
}

// manifest summarises the most recent export.
type manifest struct {
	Key         string    `json:"key"`
	FetchedAt   time.Time `json:"fetchedAt"`
	MarketCount int       `json:"marketCount"`
}

// NewSnapshotExporter creates an exporter writing under prefix.
func NewSnapshotExporter(writer domain.BlobWriter, prefix string) *SnapshotExporter {
	return &SnapshotExporter{writer: writer, prefix: prefix}
}

// StoreSnapshot uploads the snapshot and then the manifest. The manifest is
// only updated once the data object is in place.
func (e *SnapshotExporter) StoreSnapshot(ctx context.Context, snap domain.Snapshot) error {
	buf, err := marshalJSONL(snap.Markets)
	if err != nil {
		return fmt.Errorf("s3blob: export snapshot marshal: %w", err)
	}

	key := snapshotKey(e.prefix, snap.FetchedAt)
	if err := e.writer.Put(ctx, key, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: export snapshot upload: %w", err)
	}

	m, err := json.Marshal(manifest{Key: key, FetchedAt: snap.FetchedAt.UTC(), MarketCount: len(snap.Markets)})
	if err != nil {
		return fmt.Errorf("s3blob: export manifest marshal: %w", err)
	}
	if err := e.writer.Put(ctx, path.Join(e.prefix, "latest.json"), bytes.NewReader(m), "application/json"); err != nil {
		return fmt.Errorf("s3blob: export manifest upload: %w", err)
	}
	return nil
}

// snapshotKey builds the object key for a snapshot taken at t.
func snapshotKey(prefix string, t time.Time) string {
	t = t.UTC()
	return path.Join(prefix, "snapshots", t.Format("2006-01-02"), t.Format("150405")+".jsonl")
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

var _ domain.SnapshotSink = (*SnapshotExporter)(nil)
