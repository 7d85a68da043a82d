package metrics

import (
	"context"
	"time"

	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/routing"
)

type instrumentedRouting struct {
	next     routing.Client
	provider string
	m        *Metrics
}

// InstrumentRouting counts and times every call made through next.
func InstrumentRouting(next routing.Client, provider string, m *Metrics) routing.Client {
	return &instrumentedRouting{next: next, provider: provider, m: m}
}

func (r *instrumentedRouting) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	start := time.Now()
	c, err := r.next.Geocode(ctx, address)
	r.m.RecordProviderCall(r.provider, "geocode", time.Since(start).Seconds(), err)
	return c, err
}

func (r *instrumentedRouting) OptimizeRoute(ctx context.Context, origin models.Coordinates, stops []routing.Stop) (routing.Result, error) {
	start := time.Now()
	res, err := r.next.OptimizeRoute(ctx, origin, stops)
	r.m.RecordProviderCall(r.provider, "optimize", time.Since(start).Seconds(), err)
	return res, err
}

type instrumentedRenderer struct {
	next     maps.Renderer
	provider string
	m        *Metrics
}

func InstrumentRenderer(next maps.Renderer, provider string, m *Metrics) maps.Renderer {
	return &instrumentedRenderer{next: next, provider: provider, m: m}
}

func (r *instrumentedRenderer) RenderStaticMap(ctx context.Context, center models.Coordinates, p maps.Params) (maps.Image, error) {
	start := time.Now()
	img, err := r.next.RenderStaticMap(ctx, center, p)
	r.m.RecordProviderCall(r.provider, "render", time.Since(start).Seconds(), err)
	return img, err
}
