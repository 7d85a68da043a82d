// Package routing defines the geocoding and multi-stop route optimization
// contract used by the visit day orchestrator.
package routing

import (
	"context"

	"github.com/salesday/backend/internal/models"
)

// Client geocodes addresses and orders stops into a driving route.
// Implementations own their timeouts and retries.
type Client interface {
	Geocode(ctx context.Context, address string) (models.Coordinates, error)
	OptimizeRoute(ctx context.Context, start models.Coordinates, stops []Stop) (Result, error)
}

type Stop struct {
	ID          string
	Coordinates models.Coordinates
}

// Result is a provider's raw answer. Order lists stop ids in visiting order;
// Legs[i] ends at Order[i] and starts at Order[i-1], or at the start location
// for i == 0.
type Result struct {
	Order []string
	Legs  []Leg
}

type Leg struct {
	DistanceMeters  int
	DurationSeconds int
	Points          []models.Coordinates
}
