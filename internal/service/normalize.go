package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/routing"
)

var errInvalidRoute = errors.New("provider returned an invalid route")

// normalizeRoute checks a provider result against the requested stops and
// converts it to a stored route. stops must be in roster order; consecutive
// stops at the same coordinates are equal-cost orderings and are put back in
// roster order.
func normalizeRoute(start models.Coordinates, startAddress string, stops []routing.Stop, res routing.Result, computedAt time.Time) (models.Route, error) {
	if len(res.Order) != len(stops) {
		return models.Route{}, fmt.Errorf("%w: %d stops requested, %d returned", errInvalidRoute, len(stops), len(res.Order))
	}
	if len(res.Legs) != len(res.Order) {
		return models.Route{}, fmt.Errorf("%w: %d stops but %d legs", errInvalidRoute, len(res.Order), len(res.Legs))
	}

	rank := make(map[string]int, len(stops))
	coords := make(map[string]models.Coordinates, len(stops))
	for i, s := range stops {
		rank[s.ID] = i
		coords[s.ID] = s.Coordinates
	}
	seen := make(map[string]bool, len(stops))
	for _, id := range res.Order {
		if _, ok := rank[id]; !ok {
			return models.Route{}, fmt.Errorf("%w: unknown stop %q", errInvalidRoute, id)
		}
		if seen[id] {
			return models.Route{}, fmt.Errorf("%w: stop %q repeated", errInvalidRoute, id)
		}
		seen[id] = true
	}
	for i, leg := range res.Legs {
		if leg.DistanceMeters < 0 || leg.DurationSeconds < 0 {
			return models.Route{}, fmt.Errorf("%w: negative cost on leg %d", errInvalidRoute, i)
		}
	}

	order := stabilizeTies(res, rank, coords)

	route := models.Route{
		Start:        start,
		StartAddress: startAddress,
		StopOrder:    order,
		Legs:         make([]models.RouteLeg, len(order)),
		ComputedAt:   computedAt,
	}
	prev := models.StartStopID
	for i, id := range order {
		leg := res.Legs[i]
		route.Legs[i] = models.RouteLeg{
			OriginID:        prev,
			DestinationID:   id,
			DistanceMeters:  leg.DistanceMeters,
			DurationSeconds: leg.DurationSeconds,
			Points:          append([]models.Coordinates(nil), leg.Points...),
		}
		route.TotalDistanceMeters += leg.DistanceMeters
		route.TotalDurationSeconds += leg.DurationSeconds
		prev = id
	}
	return route, nil
}

// stabilizeTies sorts each run of co-located consecutive stops by roster
// rank. Leg metrics stay positional: inside a run every point is the same,
// so relabelling does not change any leg's cost.
func stabilizeTies(res routing.Result, rank map[string]int, coords map[string]models.Coordinates) []string {
	order := append([]string(nil), res.Order...)
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) && coords[order[j-1]] == coords[order[j]] {
			j++
		}
		if j-i > 1 {
			run := order[i:j]
			sort.SliceStable(run, func(a, b int) bool { return rank[run[a]] < rank[run[b]] })
		}
		i = j
	}
	return order
}
