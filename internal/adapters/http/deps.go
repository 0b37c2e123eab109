package http

import (
	"github.com/samirrijal/markermap/internal/core/ports"
	"github.com/samirrijal/markermap/internal/core/usecases"
	"github.com/samirrijal/markermap/internal/pkg/config"
)

// BrokerStatus is implemented by event publishers that can report their
// connection state for readiness checks.
type BrokerStatus interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Markers     *usecases.MarkerService
	Store       ports.SnapshotStore
	StoreDriver string
	Broker      BrokerStatus // nil when events are disabled
	Map         config.MapConfig
	Version     string
}
