package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/routing"
)

func TestNormalizeRouteRestoresRosterOrderForTies(t *testing.T) {
	same := models.Coordinates{Lat: 47.1, Lon: 8.1}
	stops := []routing.Stop{
		{ID: "X", Coordinates: same},
		{ID: "Y", Coordinates: same},
		{ID: "Z", Coordinates: models.Coordinates{Lat: 47.5, Lon: 8.5}},
	}
	res := routing.Result{
		Order: []string{"Z", "Y", "X"},
		Legs: []routing.Leg{
			{DistanceMeters: 5000, DurationSeconds: 300},
			{DistanceMeters: 4000, DurationSeconds: 240},
			{DistanceMeters: 0, DurationSeconds: 0},
		},
	}

	route, err := normalizeRoute(models.Coordinates{}, "", stops, res, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "X", "Y"}, route.StopOrder)
	assert.Equal(t, 4000, route.Legs[1].DistanceMeters)
	assert.Equal(t, "Z", route.Legs[1].OriginID)
	assert.Equal(t, "X", route.Legs[2].OriginID)
	assert.Equal(t, 9000, route.TotalDistanceMeters)
	assert.Equal(t, 540, route.TotalDurationSeconds)
}

func TestNormalizeRouteZeroCostLegBetweenDistinctPointsKeepsOrder(t *testing.T) {
	stops := []routing.Stop{
		{ID: "A", Coordinates: models.Coordinates{Lat: 1, Lon: 1}},
		{ID: "B", Coordinates: models.Coordinates{Lat: 1.00001, Lon: 1}},
	}
	toB := []models.Coordinates{{Lat: 0, Lon: 0}, {Lat: 1.00001, Lon: 1}}
	bToA := []models.Coordinates{{Lat: 1.00001, Lon: 1}, {Lat: 1, Lon: 1}}
	res := routing.Result{
		Order: []string{"B", "A"},
		Legs:  []routing.Leg{{DistanceMeters: 10, DurationSeconds: 5, Points: toB}, {Points: bToA}},
	}
	route, err := normalizeRoute(models.Coordinates{}, "", stops, res, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, route.StopOrder)

	// Each leg still ends at its own destination.
	require.Len(t, route.Legs, 2)
	assert.Equal(t, "B", route.Legs[0].DestinationID)
	assert.Equal(t, toB, route.Legs[0].Points)
	assert.Equal(t, "B", route.Legs[1].OriginID)
	assert.Equal(t, "A", route.Legs[1].DestinationID)
	assert.Equal(t, bToA, route.Legs[1].Points)
}

func TestNormalizeRouteKeepsDistinctOrder(t *testing.T) {
	stops := []routing.Stop{
		{ID: "A", Coordinates: models.Coordinates{Lat: 1, Lon: 1}},
		{ID: "B", Coordinates: models.Coordinates{Lat: 2, Lon: 2}},
	}
	res := routing.Result{
		Order: []string{"B", "A"},
		Legs:  []routing.Leg{{DistanceMeters: 10}, {DistanceMeters: 20}},
	}
	route, err := normalizeRoute(models.Coordinates{}, "", stops, res, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, route.StopOrder)
}

func TestNormalizeRouteRejectsBadResults(t *testing.T) {
	stops := []routing.Stop{{ID: "A"}, {ID: "B"}}
	legs := []routing.Leg{{}, {}}

	cases := map[string]routing.Result{
		"short order":   {Order: []string{"A"}, Legs: legs[:1]},
		"leg mismatch":  {Order: []string{"A", "B"}, Legs: legs[:1]},
		"unknown stop":  {Order: []string{"A", "Q"}, Legs: legs},
		"repeated stop": {Order: []string{"A", "A"}, Legs: legs},
		"negative cost": {Order: []string{"A", "B"}, Legs: []routing.Leg{{DistanceMeters: -1}, {}}},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := normalizeRoute(models.Coordinates{}, "", stops, res, time.Time{})
			assert.ErrorIs(t, err, errInvalidRoute)
		})
	}
}
