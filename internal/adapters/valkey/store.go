package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/markermap/internal/pkg/metrics"
)

// Store implements ports.SnapshotStore using Valkey (Redis-compatible).
// Keys are namespaced with a prefix so several deployments can share a server.
type Store struct {
	client valkey.Client
	prefix string
}

// New creates a new Valkey client.
func New(addr, prefix string) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

// Load retrieves the blob under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	defer metrics.ObserveStore("valkey", "load", time.Now())

	b, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, true, nil
}

// Save stores the blob without expiry, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	defer metrics.ObserveStore("valkey", "save", time.Now())

	cmd := s.client.Do(ctx, s.client.B().Set().Key(s.key(key)).Value(valkey.BinaryString(blob)).Build())
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *Store) Close() error {
	s.client.Close()
	return nil
}
