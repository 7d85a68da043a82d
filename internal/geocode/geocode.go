package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/salesday/backend/internal/models"
)

var ErrNotFound = errors.New("geocode not found")

type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64
}

func (r Result) Coordinates() models.Coordinates {
	return models.Coordinates{Lat: r.Lat, Lon: r.Lon}
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

// BuildGeocodeQuery appends the region to an address unless the address
// already names it.
func BuildGeocodeQuery(address string, region string) string {
	address = strings.TrimSpace(address)
	region = strings.TrimSpace(region)
	if region == "" || address == "" {
		return address
	}
	if strings.Contains(strings.ToLower(address), strings.ToLower(region)) {
		return address
	}
	return address + ", " + region
}

func ShouldGeocode(client models.Client, force bool) bool {
	if force {
		return true
	}
	return !client.HasCoordinates()
}

// StaticGeocoder resolves addresses from a fixed table. Keys are matched
// case-insensitively after trimming.
type StaticGeocoder struct {
	entries map[string]Result
}

func NewStaticGeocoder(entries map[string]models.Coordinates) *StaticGeocoder {
	g := &StaticGeocoder{entries: make(map[string]Result, len(entries))}
	for addr, c := range entries {
		g.entries[normalizeKey(addr)] = Result{Lat: c.Lat, Lon: c.Lon, DisplayName: addr, Confidence: 1}
	}
	return g
}

func (g *StaticGeocoder) Geocode(_ context.Context, query string) (Result, error) {
	if res, ok := g.entries[normalizeKey(query)]; ok {
		return res, nil
	}
	return Result{}, ErrNotFound
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
