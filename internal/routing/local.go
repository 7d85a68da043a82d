package routing

import (
	"context"
	"errors"
	"math"

	"github.com/salesday/backend/internal/geocode"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/utils"
)

const defaultSpeedKmh = 50.0

// Local plans routes without a routing backend: geocoding is delegated and
// stops are ordered greedily by great-circle distance.
type Local struct {
	Geocoder geocode.Geocoder
	SpeedKmh float64
}

func (l Local) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	if l.Geocoder == nil {
		return models.Coordinates{}, errors.New("no geocoder configured")
	}
	res, err := l.Geocoder.Geocode(ctx, address)
	if err != nil {
		return models.Coordinates{}, err
	}
	return res.Coordinates(), nil
}

// OptimizeRoute visits the nearest unvisited stop next. Equal distances go to
// the stop listed first.
func (l Local) OptimizeRoute(ctx context.Context, start models.Coordinates, stops []Stop) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	speed := l.SpeedKmh
	if speed <= 0 {
		speed = defaultSpeedKmh
	}

	visited := make([]bool, len(stops))
	res := Result{
		Order: make([]string, 0, len(stops)),
		Legs:  make([]Leg, 0, len(stops)),
	}
	current := start
	for range stops {
		next := -1
		best := 0
		for i, s := range stops {
			if visited[i] {
				continue
			}
			d := utils.DistanceMeters(current, s.Coordinates)
			if next == -1 || d < best {
				next, best = i, d
			}
		}
		visited[next] = true
		res.Order = append(res.Order, stops[next].ID)
		res.Legs = append(res.Legs, Leg{
			DistanceMeters:  best,
			DurationSeconds: travelSeconds(best, speed),
			Points:          []models.Coordinates{current, stops[next].Coordinates},
		})
		current = stops[next].Coordinates
	}
	return res, nil
}

func travelSeconds(meters int, speedKmh float64) int {
	return int(math.Round(float64(meters) / (speedKmh * 1000 / 3600)))
}
