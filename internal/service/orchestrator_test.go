package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/roster"
	"github.com/salesday/backend/internal/routing"
	"github.com/salesday/backend/internal/visitday"
)

type fakeRouter struct {
	mu            sync.Mutex
	coords        map[string]models.Coordinates
	geocodeErr    map[string]error
	geocodeCalls  []string
	optimizeCalls int
	optimize      func(ctx context.Context, start models.Coordinates, stops []routing.Stop) (routing.Result, error)
}

func (f *fakeRouter) Geocode(_ context.Context, address string) (models.Coordinates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodeCalls = append(f.geocodeCalls, address)
	if err := f.geocodeErr[address]; err != nil {
		return models.Coordinates{}, err
	}
	c, ok := f.coords[address]
	if !ok {
		return models.Coordinates{}, errors.New("address not known")
	}
	return c, nil
}

func (f *fakeRouter) OptimizeRoute(ctx context.Context, start models.Coordinates, stops []routing.Stop) (routing.Result, error) {
	f.mu.Lock()
	f.optimizeCalls++
	fn := f.optimize
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, start, stops)
	}
	return inputOrder(stops), nil
}

func (f *fakeRouter) optimizeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optimizeCalls
}

func inputOrder(stops []routing.Stop) routing.Result {
	res := routing.Result{}
	for _, s := range stops {
		res.Order = append(res.Order, s.ID)
		res.Legs = append(res.Legs, routing.Leg{DistanceMeters: 1000, DurationSeconds: 60})
	}
	return res
}

type fakeRenderer struct {
	calls   int
	err     error
	centers []models.Coordinates
}

func (f *fakeRenderer) RenderStaticMap(_ context.Context, center models.Coordinates, p maps.Params) (maps.Image, error) {
	f.calls++
	f.centers = append(f.centers, center)
	if f.err != nil {
		return maps.Image{}, f.err
	}
	return maps.Image{Data: []byte("png"), ContentType: "image/png"}, nil
}

func coords(lat, lon float64) *models.Coordinates {
	return &models.Coordinates{Lat: lat, Lon: lon}
}

func abcRoster() []models.Client {
	return []models.Client{
		{ID: "A", Name: "Alpha", Address: "Alpha Street 1", Coordinates: coords(47.36, 8.53)},
		{ID: "B", Name: "Bravo", Address: "Bravo Street 2", Coordinates: coords(47.37, 8.54)},
		{ID: "C", Name: "Charlie", Address: "Charlie Street 3", Coordinates: coords(47.38, 8.55)},
	}
}

var testNow = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func newTestOrchestrator(router routing.Client, renderer maps.Renderer, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewOrchestrator(visitday.NewSession(), router, renderer, opts...)
}

func TestOperationsWithoutDay(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	ctx := context.Background()

	_, err := o.GetStatus()
	assert.ErrorIs(t, err, ErrNoActiveDay)
	_, err = o.ComputeRoute(ctx, nil)
	assert.ErrorIs(t, err, ErrNoActiveDay)
	_, err = o.MarkVisit("A", models.StatusCompleted)
	assert.ErrorIs(t, err, ErrNoActiveDay)
	_, err = o.GetStopImage(ctx, "A", maps.Params{Zoom: 15})
	assert.ErrorIs(t, err, ErrNoActiveDay)
	_, err = o.RecordProgress()
	assert.ErrorIs(t, err, ErrNoActiveDay)

	o.ResetDay()
	o.ResetDay()
	_, err = o.GetStatus()
	assert.ErrorIs(t, err, ErrNoActiveDay)
}

func TestStartDayRejectsBadRosters(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})

	_, err := o.StartDay(nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = o.StartDay([]models.Client{{ID: "A"}, {ID: "A"}})
	assert.ErrorIs(t, err, ErrInvalidRoster)

	_, err = o.StartDay([]models.Client{{ID: " "}})
	assert.ErrorIs(t, err, ErrInvalidRoster)

	_, err = o.GetStatus()
	assert.ErrorIs(t, err, ErrNoActiveDay, "rejected roster must not create a day")
}

func TestStartDayAllPending(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	snap, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	assert.Equal(t, "2026-10-14", snap.Date)
	assert.Equal(t, uint64(0), snap.Revision)
	assert.Nil(t, snap.Route)
	assert.Equal(t, 3, snap.Counts[models.StatusPending])
	for _, c := range abcRoster() {
		assert.Equal(t, models.StatusPending, snap.Statuses[c.ID])
	}
}

func TestStartDayReplacesPreviousDay(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	first, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	_, err = o.MarkVisit("A", models.StatusCompleted)
	require.NoError(t, err)

	second, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	assert.NotEqual(t, first.DayID, second.DayID)
	assert.Equal(t, models.StatusPending, second.Statuses["A"])
	assert.Equal(t, uint64(0), second.Revision)
}

func TestRejectedRosterKeepsCurrentDay(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	first, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	_, err = o.MarkVisit("A", models.StatusCompleted)
	require.NoError(t, err)

	_, err = o.StartDay(nil)
	require.ErrorIs(t, err, ErrEmptyRoster)
	_, err = o.StartDay([]models.Client{{ID: "A"}, {ID: "A"}})
	require.ErrorIs(t, err, ErrInvalidRoster)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, first.DayID, snap.DayID)
	assert.Equal(t, uint64(1), snap.Revision)
	assert.Equal(t, models.StatusCompleted, snap.Statuses["A"])

	// The surviving day still enforces its transitions.
	_, err = o.MarkVisit("A", models.StatusSkipped)
	var it *InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, models.StatusCompleted, it.From)
	assert.Equal(t, models.StatusSkipped, it.To)

	snap, err = o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, snap.Statuses["A"])
	assert.Equal(t, uint64(1), snap.Revision)
}

func TestCompletedClientLeavesRoute(t *testing.T) {
	router := &fakeRouter{}
	o := newTestOrchestrator(router, &fakeRenderer{})
	ctx := context.Background()
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	up, err := o.MarkVisit("B", models.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, up.Changed)
	assert.Equal(t, uint64(1), up.Revision)

	route, err := o.ComputeRoute(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, route.StopOrder)
	assert.Equal(t, *abcRoster()[0].Coordinates, route.Start)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Revision)
	require.NotNil(t, snap.Route)
	assert.Equal(t, []string{"A", "C"}, snap.Route.StopOrder)

	again, err := o.MarkVisit("B", models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, uint64(2), again.Revision)

	_, err = o.MarkVisit("B", models.StatusPending)
	var te *InvalidTransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StatusCompleted, te.From)
	assert.Equal(t, models.StatusPending, te.To)

	snap, err = o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Revision)
	assert.Equal(t, models.StatusCompleted, snap.Statuses["B"])
}

func TestRouteLegsAndTotals(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	start := models.StartLocation{Address: "Office", Coordinates: coords(47.0, 8.0)}
	route, err := o.ComputeRoute(context.Background(), &start)
	require.NoError(t, err)

	require.Len(t, route.Legs, 3)
	assert.Equal(t, models.StartStopID, route.Legs[0].OriginID)
	assert.Equal(t, "A", route.Legs[0].DestinationID)
	assert.Equal(t, "A", route.Legs[1].OriginID)
	assert.Equal(t, "C", route.Legs[2].DestinationID)
	assert.Equal(t, 3000, route.TotalDistanceMeters)
	assert.Equal(t, 180, route.TotalDurationSeconds)
	assert.Equal(t, "Office", route.StartAddress)
	assert.Equal(t, testNow, route.ComputedAt)
}

func TestUnknownClient(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	_, err = o.MarkVisit("Z", models.StatusCompleted)
	var uc *UnknownClientError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "Z", uc.ClientID)

	_, err = o.GetStopImage(context.Background(), "Z", maps.Params{Zoom: 15})
	assert.ErrorAs(t, err, &uc)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.Revision)
}

func TestMarkVisitRejectsUnknownStatus(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	for _, status := range []models.VisitStatus{"bogus", ""} {
		_, err = o.MarkVisit("A", status)
		var it *InvalidTransitionError
		require.ErrorAs(t, err, &it, "status %q", status)
		assert.Equal(t, models.StatusPending, it.From)
	}

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, snap.Statuses["A"])
	assert.Equal(t, uint64(0), snap.Revision)
}

func TestComputeRouteGeocodesMissingCoordinates(t *testing.T) {
	router := &fakeRouter{coords: map[string]models.Coordinates{
		"Bravo Street 2": {Lat: 47.4, Lon: 8.6},
	}}
	o := newTestOrchestrator(router, &fakeRenderer{})
	r := abcRoster()
	r[1].Coordinates = nil
	_, err := o.StartDay(r)
	require.NoError(t, err)

	_, err = o.ComputeRoute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo Street 2"}, router.geocodeCalls)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	require.NotNil(t, snap.Roster[1].Coordinates)
	assert.Equal(t, models.Coordinates{Lat: 47.4, Lon: 8.6}, *snap.Roster[1].Coordinates)

	// Cached coordinates are reused on the next computation.
	_, err = o.ComputeRoute(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, router.geocodeCalls, 1)
}

func TestComputeRouteGeocodesStartAddress(t *testing.T) {
	router := &fakeRouter{coords: map[string]models.Coordinates{
		"Depot": {Lat: 46.9, Lon: 7.4},
	}}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	route, err := o.ComputeRoute(context.Background(), &models.StartLocation{Address: "  Depot "})
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Lat: 46.9, Lon: 7.4}, route.Start)
	assert.Equal(t, "Depot", route.StartAddress)
}

func TestGeocodeFailureLeavesStateUnchanged(t *testing.T) {
	router := &fakeRouter{
		coords:     map[string]models.Coordinates{"Alpha Street 1": {Lat: 1, Lon: 1}},
		geocodeErr: map[string]error{"Charlie Street 3": errors.New("upstream down")},
	}
	o := newTestOrchestrator(router, &fakeRenderer{}, WithGeocodeConcurrency(1))
	r := abcRoster()
	r[0].Coordinates = nil
	r[2].Coordinates = nil
	_, err := o.StartDay(r)
	require.NoError(t, err)

	_, err = o.ComputeRoute(context.Background(), nil)
	var pe *RoutingProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "geocode", pe.Op)
	assert.Equal(t, 0, router.optimizeCount())

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Nil(t, snap.Route)
	assert.Nil(t, snap.Roster[0].Coordinates, "partial geocodes must not be stored")
	assert.Equal(t, uint64(0), snap.Revision)
}

func TestOptimizeFailureKeepsPreviousRoute(t *testing.T) {
	router := &fakeRouter{}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	first, err := o.ComputeRoute(context.Background(), nil)
	require.NoError(t, err)

	boom := errors.New("quota exceeded")
	router.optimize = func(context.Context, models.Coordinates, []routing.Stop) (routing.Result, error) {
		return routing.Result{}, boom
	}
	_, err = o.ComputeRoute(context.Background(), nil)
	var pe *RoutingProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "optimize", pe.Op)
	assert.ErrorIs(t, err, boom)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	require.NotNil(t, snap.Route)
	assert.Equal(t, first.StopOrder, snap.Route.StopOrder)
	assert.Equal(t, uint64(1), snap.Revision)
}

func TestInvalidProviderOutputIsRejected(t *testing.T) {
	router := &fakeRouter{optimize: func(_ context.Context, _ models.Coordinates, stops []routing.Stop) (routing.Result, error) {
		res := inputOrder(stops)
		res.Order[1] = res.Order[0]
		return res, nil
	}}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	_, err = o.ComputeRoute(context.Background(), nil)
	var pe *RoutingProviderError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, errInvalidRoute)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Nil(t, snap.Route)
}

func TestAllClosedDayYieldsEmptyRoute(t *testing.T) {
	router := &fakeRouter{}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	for _, id := range []string{"A", "B"} {
		_, err = o.MarkVisit(id, models.StatusCompleted)
		require.NoError(t, err)
	}
	_, err = o.MarkVisit("C", models.StatusSkipped)
	require.NoError(t, err)

	route, err := o.ComputeRoute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, route.StopOrder)
	assert.Empty(t, route.Legs)
	assert.Zero(t, route.TotalDistanceMeters)
	assert.Equal(t, 0, router.optimizeCount())

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), snap.Revision)
}

func TestRevisionOnlyMovesOnChange(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	var last uint64
	step := func(want bool, f func() uint64) {
		t.Helper()
		rev := f()
		if want {
			assert.Greater(t, rev, last)
		} else {
			assert.Equal(t, last, rev)
		}
		last = rev
	}
	mark := func(id string, s models.VisitStatus) func() uint64 {
		return func() uint64 {
			up, err := o.MarkVisit(id, s)
			require.NoError(t, err)
			return up.Revision
		}
	}
	status := func() uint64 {
		snap, err := o.GetStatus()
		require.NoError(t, err)
		return snap.Revision
	}

	step(true, mark("A", models.StatusInProgress))
	step(false, mark("A", models.StatusInProgress))
	step(false, status)
	step(true, mark("A", models.StatusCompleted))
	step(false, mark("A", models.StatusCompleted))
	step(true, mark("B", models.StatusSkipped))
	step(false, status)
}

func TestGetStatusDoesNotWaitForRouting(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	router := &fakeRouter{optimize: func(_ context.Context, _ models.Coordinates, stops []routing.Stop) (routing.Result, error) {
		close(entered)
		<-release
		return inputOrder(stops), nil
	}}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := o.ComputeRoute(context.Background(), nil)
		done <- err
	}()
	<-entered

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Nil(t, snap.Route)
	assert.Equal(t, uint64(0), snap.Revision)

	close(release)
	require.NoError(t, <-done)

	snap, err = o.GetStatus()
	require.NoError(t, err)
	assert.NotNil(t, snap.Route)
	assert.Equal(t, uint64(1), snap.Revision)
}

func TestMutatorsAreSerialized(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	clients := make([]models.Client, 0, 20)
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		clients = append(clients, models.Client{ID: id, Address: id, Coordinates: coords(47, 8+float64(i)/100)})
	}
	_, err := o.StartDay(clients)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			_, _ = o.MarkVisit(id, models.StatusCompleted)
		}(c.ID)
		go func() {
			defer wg.Done()
			_, _ = o.GetStatus()
		}()
	}
	wg.Wait()

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, uint64(20), snap.Revision)
	assert.Equal(t, 20, snap.Counts[models.StatusCompleted])
}

func TestGetStopImage(t *testing.T) {
	renderer := &fakeRenderer{}
	o := newTestOrchestrator(&fakeRouter{}, renderer)
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	img, err := o.GetStopImage(context.Background(), "B", maps.Params{Zoom: 12, Style: maps.StyleDark})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.Image.ContentType)
	assert.Equal(t, *abcRoster()[1].Coordinates, img.Coordinates)
	assert.Equal(t, 1, renderer.calls)

	_, err = o.GetStopImage(context.Background(), "B", maps.Params{Zoom: 21})
	var me *InvalidMapRequestError
	assert.ErrorAs(t, err, &me)
	_, err = o.GetStopImage(context.Background(), "B", maps.Params{Zoom: 10, Style: "sepia"})
	assert.ErrorAs(t, err, &me)
	_, err = o.GetStopImage(context.Background(), "B", maps.Params{Zoom: 10, Width: 200000, Height: 200000})
	assert.ErrorAs(t, err, &me)
	_, err = o.GetStopImage(context.Background(), "B", maps.Params{Zoom: 10, Width: maps.MaxWidth + 1})
	assert.ErrorAs(t, err, &me)
	assert.Equal(t, 1, renderer.calls)
}

func TestStopImageCacheFillSurvivesRenderFailure(t *testing.T) {
	router := &fakeRouter{coords: map[string]models.Coordinates{"Charlie Street 3": {Lat: 46.2, Lon: 6.1}}}
	renderer := &fakeRenderer{err: errors.New("tile server down")}
	o := newTestOrchestrator(router, renderer)
	r := abcRoster()
	r[2].Coordinates = nil
	_, err := o.StartDay(r)
	require.NoError(t, err)

	_, err = o.GetStopImage(context.Background(), "C", maps.Params{Zoom: 15})
	var re *MapRenderError
	require.ErrorAs(t, err, &re)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	require.NotNil(t, snap.Roster[2].Coordinates)
	assert.Equal(t, models.Coordinates{Lat: 46.2, Lon: 6.1}, *snap.Roster[2].Coordinates)
	assert.Equal(t, uint64(0), snap.Revision)

	renderer.err = nil
	_, err = o.GetStopImage(context.Background(), "C", maps.Params{Zoom: 15})
	require.NoError(t, err)
	assert.Len(t, router.geocodeCalls, 1)
}

func TestStopImageGeocodeFailure(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	r := abcRoster()
	r[0].Coordinates = nil
	_, err := o.StartDay(r)
	require.NoError(t, err)

	_, err = o.GetStopImage(context.Background(), "A", maps.Params{Zoom: 15})
	var pe *RoutingProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "geocode", pe.Op)
}

type fakeRoster struct {
	r   roster.Roster
	err error
}

func (f fakeRoster) GetTodaysClients(context.Context) (roster.Roster, error) {
	return f.r, f.err
}

func TestLoadDay(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{},
		WithRosterProvider(fakeRoster{r: roster.Roster{Date: "2026-10-13", Clients: abcRoster()}}))
	snap, err := o.LoadDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-13", snap.Date)
	assert.Len(t, snap.Roster, 3)
}

func TestLoadDayErrors(t *testing.T) {
	var re *RosterError

	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.LoadDay(context.Background())
	assert.ErrorAs(t, err, &re)

	boom := errors.New("db offline")
	o = newTestOrchestrator(&fakeRouter{}, &fakeRenderer{}, WithRosterProvider(fakeRoster{err: boom}))
	_, err = o.LoadDay(context.Background())
	assert.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, boom)

	o = newTestOrchestrator(&fakeRouter{}, &fakeRenderer{}, WithRosterProvider(fakeRoster{}))
	_, err = o.LoadDay(context.Background())
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestRecordProgressWalksRoute(t *testing.T) {
	router := &fakeRouter{optimize: func(_ context.Context, _ models.Coordinates, stops []routing.Stop) (routing.Result, error) {
		res := inputOrder(stops)
		for i, j := 0, len(res.Order)-1; i < j; i, j = i+1, j-1 {
			res.Order[i], res.Order[j] = res.Order[j], res.Order[i]
		}
		return res, nil
	}}
	o := newTestOrchestrator(router, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	_, err = o.ComputeRoute(context.Background(), nil)
	require.NoError(t, err)

	p, err := o.RecordProgress()
	require.NoError(t, err)
	require.NotNil(t, p.Current)
	assert.Equal(t, "C", p.Current.ID)
	assert.Empty(t, p.Closed)
	assert.Equal(t, 1, p.VisitNumber)
	assert.Equal(t, 2, p.Remaining)
	assert.Equal(t, uint64(2), p.Revision)

	p, err = o.RecordProgress()
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, p.Closed)
	assert.Equal(t, "B", p.Current.ID)

	p, err = o.RecordProgress()
	require.NoError(t, err)
	assert.Equal(t, "A", p.Current.ID)
	assert.Equal(t, 3, p.VisitNumber)
	assert.Equal(t, 0, p.Remaining)

	p, err = o.RecordProgress()
	require.NoError(t, err)
	assert.True(t, p.DayComplete)
	assert.Nil(t, p.Current)
	assert.Equal(t, uint64(5), p.Revision)

	p, err = o.RecordProgress()
	require.NoError(t, err)
	assert.False(t, p.Changed)
	assert.Equal(t, uint64(5), p.Revision)

	snap, err := o.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Counts[models.StatusCompleted])
}

func TestRecordProgressWithoutRouteUsesRosterOrder(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)
	_, err = o.MarkVisit("A", models.StatusSkipped)
	require.NoError(t, err)

	p, err := o.RecordProgress()
	require.NoError(t, err)
	assert.Equal(t, "B", p.Current.ID)
	assert.Equal(t, 2, p.VisitNumber)
	assert.Equal(t, 3, p.TotalVisits)
}

func TestResetDay(t *testing.T) {
	o := newTestOrchestrator(&fakeRouter{}, &fakeRenderer{})
	_, err := o.StartDay(abcRoster())
	require.NoError(t, err)

	o.ResetDay()
	_, err = o.GetStatus()
	assert.ErrorIs(t, err, ErrNoActiveDay)
	o.ResetDay()
	_, err = o.GetStatus()
	assert.ErrorIs(t, err, ErrNoActiveDay)
}
