package ports

import (
	"context"

	"github.com/samirrijal/markermap/internal/core/domain"
)

// SnapshotStore is a generic key/value persistence capability. Each key
// holds one opaque blob that is replaced wholesale on Save.
type SnapshotStore interface {
	// Load returns the blob under key. ok is false when nothing was saved yet.
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// MarkerEvent describes a change to the marker collection.
type MarkerEvent struct {
	Type   string         `json:"type"` // added | updated | deleted | saved
	Marker *domain.Marker `json:"marker,omitempty"`
	Count  int            `json:"count"`
	At     int64          `json:"at"` // unix millis
}

// EventPublisher publishes marker lifecycle events to a message broker.
type EventPublisher interface {
	PublishMarkerEvent(ctx context.Context, ev MarkerEvent) error
}
