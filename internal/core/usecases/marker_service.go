package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/markermap/internal/core/domain"
	"github.com/samirrijal/markermap/internal/core/ports"
	"github.com/samirrijal/markermap/internal/pkg/geospatial"
	"github.com/samirrijal/markermap/internal/pkg/metrics"
)

// DefaultSnapshotKey is the store key the marker collection is saved under.
const DefaultSnapshotKey = "markers"

// SaveAck is the acknowledgement shown to the user after a successful save.
const SaveAck = "Markers saved successfully!"

var tracer = otel.Tracer("github.com/samirrijal/markermap/internal/core/usecases")

// SaveResult reports a completed save.
type SaveResult struct {
	Message string    `json:"message"`
	Count   int       `json:"count"`
	Bytes   int       `json:"bytes"`
	SavedAt time.Time `json:"saved_at"`
}

// MarkerService owns the editor state for the session. All mutations go
// through it and are serialised by its mutex.
type MarkerService struct {
	mu        sync.Mutex
	saveMu    sync.Mutex // held across snapshot and store write
	state     domain.EditorState
	store     ports.SnapshotStore
	publisher ports.EventPublisher
	key       string
	now       func() time.Time
}

// NewMarkerService creates a MarkerService. publisher may be nil.
// The collection starts as the default markers until Load is called.
func NewMarkerService(store ports.SnapshotStore, publisher ports.EventPublisher, key string) *MarkerService {
	if key == "" {
		key = DefaultSnapshotKey
	}
	s := &MarkerService{
		state:     domain.NewEditorState(domain.DefaultMarkers()),
		store:     store,
		publisher: publisher,
		key:       key,
		now:       time.Now,
	}
	metrics.MarkersTotal.Set(float64(len(s.state.Markers)))
	return s
}

// Load rehydrates the collection from the store. A missing snapshot keeps
// the default markers. A corrupt one is reported with ErrCorruptSnapshot and
// leaves the current collection in place.
func (s *MarkerService) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "MarkerService.Load")
	defer span.End()

	blob, ok, err := s.store.Load(ctx, s.key)
	if err != nil {
		metrics.ObserveOperation("load", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("load snapshot %q: %w", s.key, err)
	}
	if !ok {
		metrics.ObserveOperation("load", nil)
		slog.InfoContext(ctx, "no saved markers, using defaults", "key", s.key)
		return nil
	}

	markers, err := domain.DecodeSnapshot(blob)
	metrics.ObserveOperation("load", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.mu.Lock()
	s.state = domain.NewEditorState(markers)
	s.mu.Unlock()

	metrics.MarkersTotal.Set(float64(len(markers)))
	span.SetAttributes(attribute.Int("markers.count", len(markers)))
	slog.InfoContext(ctx, "markers loaded", "key", s.key, "count", len(markers))
	return nil
}

// Save overwrites the stored snapshot with the current collection.
// Saves run one at a time, so the last acknowledged save is the one stored.
func (s *MarkerService) Save(ctx context.Context) (*SaveResult, error) {
	ctx, span := tracer.Start(ctx, "MarkerService.Save")
	defer span.End()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	markers := slices.Clone(s.state.Markers)
	s.mu.Unlock()

	blob, err := domain.EncodeSnapshot(markers)
	if err == nil {
		err = s.store.Save(ctx, s.key, blob)
	}
	metrics.ObserveOperation("save", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("save snapshot %q: %w", s.key, err)
	}

	metrics.SnapshotBytes.Observe(float64(len(blob)))
	span.SetAttributes(attribute.Int("markers.count", len(markers)), attribute.Int("snapshot.bytes", len(blob)))

	res := &SaveResult{Message: SaveAck, Count: len(markers), Bytes: len(blob), SavedAt: s.now().UTC()}
	s.publish(ctx, ports.MarkerEvent{Type: "saved", Count: res.Count})
	return res, nil
}

// State returns the current editor state.
func (s *MarkerService) State() domain.EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies an editor event and returns the resulting state.
func (s *MarkerService) Dispatch(ctx context.Context, ev domain.Event) (domain.EditorState, error) {
	s.mu.Lock()
	prev := s.state
	next, err := domain.Apply(prev, ev)
	if err == nil {
		s.state = next
	}
	s.mu.Unlock()

	if err != nil {
		return prev, err
	}
	s.afterChange(ctx, prev.Markers, next.Markers)
	return next, nil
}

// List returns the markers whose name matches query.
func (s *MarkerService) List(ctx context.Context, query string) []domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Filter(s.state.Markers, query)
}

// Get returns the marker with the given id.
func (s *MarkerService) Get(ctx context.Context, id string) (*domain.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := domain.IndexOf(s.state.Markers, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMarkerNotFound, id)
	}
	m := s.state.Markers[i]
	return &m, nil
}

// Add appends a marker without going through the editor modes.
// A blank name is a no-op and returns (nil, nil).
func (s *MarkerService) Add(ctx context.Context, name string, pos domain.Position) (*domain.Marker, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPosition, pos)
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	m := domain.NewMarker(name, pos)

	s.mu.Lock()
	prev := s.state.Markers
	s.state.Markers = append(slices.Clone(prev), m)
	next := s.state.Markers
	s.mu.Unlock()

	s.afterChange(ctx, prev, next)
	return &m, nil
}

// Update replaces the name and position of the marker with the given id.
func (s *MarkerService) Update(ctx context.Context, id, name string, pos domain.Position) (*domain.Marker, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPosition, pos)
	}

	s.mu.Lock()
	prev := s.state.Markers
	i := domain.IndexOf(prev, id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrMarkerNotFound, id)
	}
	m := domain.Marker{ID: id, Name: name, Position: pos}
	next := slices.Clone(prev)
	next[i] = m
	s.state.Markers = next
	s.mu.Unlock()

	s.afterChange(ctx, prev, next)
	return &m, nil
}

// Delete removes the marker with the given id.
func (s *MarkerService) Delete(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, domain.Event{Type: domain.EventDelete, ID: id})
	return err
}

// Bounds returns the box around all markers; ok is false when there are none.
func (s *MarkerService) Bounds(ctx context.Context) (domain.Bounds, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.BoundsOf(s.state.Markers)
}

// NearbyMarker is a marker with its distance from a query point.
type NearbyMarker struct {
	domain.Marker
	DistanceMeters float64 `json:"distance_m"`
}

// Nearby returns markers within radiusMeters of pos, closest first.
func (s *MarkerService) Nearby(ctx context.Context, pos domain.Position, radiusMeters float64, limit int) ([]NearbyMarker, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPosition, pos)
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(pos.Lat, pos.Lng, radiusMeters)

	s.mu.Lock()
	var out []NearbyMarker
	for _, m := range s.state.Markers {
		if !geospatial.InBox(m.Position.Lat, m.Position.Lng, minLat, minLng, maxLat, maxLng) {
			continue
		}
		d := geospatial.Haversine(pos.Lat, pos.Lng, m.Position.Lat, m.Position.Lng)
		if d <= radiusMeters {
			out = append(out, NearbyMarker{Marker: m, DistanceMeters: d})
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// afterChange records metrics and publishes the difference between two
// collections. At most one marker changes per mutation.
func (s *MarkerService) afterChange(ctx context.Context, prev, next []domain.Marker) {
	metrics.MarkersTotal.Set(float64(len(next)))

	var ev ports.MarkerEvent
	switch {
	case len(next) > len(prev):
		m := next[len(next)-1]
		ev = ports.MarkerEvent{Type: "added", Marker: &m}
	case len(next) < len(prev):
		for i, m := range prev {
			if i >= len(next) || next[i].ID != m.ID {
				ev = ports.MarkerEvent{Type: "deleted", Marker: &m}
				break
			}
		}
	default:
		for i := range next {
			if next[i] != prev[i] {
				m := next[i]
				ev = ports.MarkerEvent{Type: "updated", Marker: &m}
				break
			}
		}
	}
	if ev.Type == "" {
		return
	}

	metrics.ObserveOperation(ev.Type, nil)
	ev.Count = len(next)
	s.publish(ctx, ev)
}

func (s *MarkerService) publish(ctx context.Context, ev ports.MarkerEvent) {
	if s.publisher == nil {
		return
	}
	ev.At = s.now().UnixMilli()
	if err := s.publisher.PublishMarkerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish marker event failed", "type", ev.Type, "error", err)
	}
}
