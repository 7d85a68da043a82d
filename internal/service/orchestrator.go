package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/salesday/backend/internal/geocode"
	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/roster"
	"github.com/salesday/backend/internal/routing"
	"github.com/salesday/backend/internal/visitday"
)

const defaultGeocodeConcurrency = 4

// Orchestrator is the only writer of the visit day session.
//
// opMu serializes mutating operations end to end, including their provider
// calls. mu guards the session itself and is held only to read inputs and to
// apply results, so readers never wait on the network.
type Orchestrator struct {
	session  *visitday.Session
	router   routing.Client
	renderer maps.Renderer
	roster   roster.Provider
	logger   zerolog.Logger
	now      func() time.Time

	geocodeConcurrency int

	opMu sync.Mutex
	mu   sync.RWMutex
}

type Option func(*Orchestrator)

func WithRosterProvider(p roster.Provider) Option {
	return func(o *Orchestrator) { o.roster = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithGeocodeConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.geocodeConcurrency = n
		}
	}
}

func NewOrchestrator(session *visitday.Session, router routing.Client, renderer maps.Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session:            session,
		router:             router,
		renderer:           renderer,
		logger:             zerolog.Nop(),
		now:                time.Now,
		geocodeConcurrency: defaultGeocodeConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartDay replaces any live day with a fresh one over clients. An invalid
// roster leaves the previous day in place.
func (o *Orchestrator) StartDay(clients []models.Client) (visitday.Snapshot, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	return o.startDay(o.now().Format("2006-01-02"), clients)
}

// LoadDay fetches today's roster from the configured provider and starts a
// day with it.
func (o *Orchestrator) LoadDay(ctx context.Context) (visitday.Snapshot, error) {
	if o.roster == nil {
		return visitday.Snapshot{}, &RosterError{Cause: fmt.Errorf("no roster provider configured")}
	}
	o.opMu.Lock()
	defer o.opMu.Unlock()

	r, err := o.roster.GetTodaysClients(ctx)
	if err != nil {
		return visitday.Snapshot{}, &RosterError{Cause: err}
	}
	date := r.Date
	if date == "" {
		date = o.now().Format("2006-01-02")
	}
	return o.startDay(date, r.Clients)
}

func (o *Orchestrator) startDay(date string, clients []models.Client) (visitday.Snapshot, error) {
	if err := validateRoster(clients); err != nil {
		return visitday.Snapshot{}, err
	}
	day := visitday.New(date, clients, o.now())

	o.mu.Lock()
	o.session.Replace(day)
	snap := day.Snapshot()
	o.mu.Unlock()

	o.logger.Info().Str("day_id", snap.DayID).Str("date", date).Int("clients", len(clients)).Msg("visit day started")
	return snap, nil
}

func validateRoster(clients []models.Client) error {
	if len(clients) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]bool, len(clients))
	for i, c := range clients {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("%w: client at position %d has no id", ErrInvalidRoster, i)
		}
		if id != c.ID {
			return fmt.Errorf("%w: client id %q has surrounding spaces", ErrInvalidRoster, c.ID)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate client id %q", ErrInvalidRoster, id)
		}
		seen[id] = true
	}
	return nil
}

type geocodeJob struct {
	clientID string // empty for an explicit start address
	address  string
}

// ComputeRoute orders the clients still open (pending or in progress) into a
// driving route from start. With no start given, the route starts at the
// first roster client's address. Either every geocode and the optimization
// succeed and the route is replaced, or nothing is stored.
func (o *Orchestrator) ComputeRoute(ctx context.Context, start *models.StartLocation) (models.Route, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.RLock()
	day := o.session.Current()
	if day == nil {
		o.mu.RUnlock()
		return models.Route{}, ErrNoActiveDay
	}
	clients := day.Roster()
	statuses := day.Statuses()
	o.mu.RUnlock()

	var open []models.Client
	for _, c := range clients {
		if statuses[c.ID].IsOpen() {
			open = append(open, c)
		}
	}

	var (
		jobs         []geocodeJob
		startCoords  models.Coordinates
		startAddress string
		startPending bool
		fromFirst    bool
	)
	switch {
	case start != nil && start.Coordinates != nil:
		startCoords = *start.Coordinates
		startAddress = start.Address
	case start != nil && strings.TrimSpace(start.Address) != "":
		startAddress = strings.TrimSpace(start.Address)
		startPending = true
	default:
		first := clients[0]
		fromFirst = true
		startAddress = first.Address
		if first.HasCoordinates() {
			startCoords = *first.Coordinates
		} else {
			startPending = true
		}
	}

	if len(open) > 0 {
		queued := map[string]bool{}
		if startPending {
			if fromFirst {
				jobs = append(jobs, geocodeJob{clientID: clients[0].ID, address: clients[0].Address})
				queued[clients[0].ID] = true
			} else {
				jobs = append(jobs, geocodeJob{address: startAddress})
			}
		}
		for _, c := range open {
			if geocode.ShouldGeocode(c, false) && !queued[c.ID] {
				jobs = append(jobs, geocodeJob{clientID: c.ID, address: c.Address})
				queued[c.ID] = true
			}
		}
	}

	resolved, err := o.geocodeAll(ctx, jobs)
	if err != nil {
		o.logger.Warn().Err(err).Str("day_id", day.ID().String()).Msg("route geocoding failed")
		return models.Route{}, err
	}

	filled := map[string]models.Coordinates{}
	for i, job := range jobs {
		if job.clientID != "" {
			filled[job.clientID] = resolved[i]
		}
		if startPending && i == 0 {
			startCoords = resolved[i]
		}
	}

	stops := make([]routing.Stop, 0, len(open))
	for _, c := range open {
		coords, ok := filled[c.ID]
		if !ok {
			coords = *c.Coordinates
		}
		stops = append(stops, routing.Stop{ID: c.ID, Coordinates: coords})
	}

	route := models.Route{
		Start:        startCoords,
		StartAddress: startAddress,
		StopOrder:    []string{},
		Legs:         []models.RouteLeg{},
		ComputedAt:   o.now(),
	}
	if len(stops) > 0 {
		res, err := o.router.OptimizeRoute(ctx, startCoords, stops)
		if err != nil {
			o.logger.Warn().Err(err).Str("day_id", day.ID().String()).Int("stops", len(stops)).Msg("route optimization failed")
			return models.Route{}, &RoutingProviderError{Op: "optimize", Cause: err}
		}
		route, err = normalizeRoute(startCoords, startAddress, stops, res, route.ComputedAt)
		if err != nil {
			return models.Route{}, &RoutingProviderError{Op: "optimize", Cause: err}
		}
	}

	o.mu.Lock()
	for id, coords := range filled {
		day.FillCoordinates(id, coords)
	}
	day.ReplaceRoute(route)
	rev := day.AdvanceRevision()
	o.mu.Unlock()

	o.logger.Info().
		Str("day_id", day.ID().String()).
		Uint64("revision", rev).
		Int("stops", len(route.StopOrder)).
		Int("distance_m", route.TotalDistanceMeters).
		Msg("route computed")
	return route.Clone(), nil
}

// geocodeAll resolves jobs in parallel. Results are positional; the first
// failure aborts the batch.
func (o *Orchestrator) geocodeAll(ctx context.Context, jobs []geocodeJob) ([]models.Coordinates, error) {
	out := make([]models.Coordinates, len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.geocodeConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			c, err := o.router.Geocode(gctx, job.address)
			if err != nil {
				if job.clientID != "" {
					return &RoutingProviderError{Op: "geocode", Cause: fmt.Errorf("client %s (%s): %w", job.clientID, job.address, err)}
				}
				return &RoutingProviderError{Op: "geocode", Cause: fmt.Errorf("start %q: %w", job.address, err)}
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// VisitUpdate reports the outcome of MarkVisit.
type VisitUpdate struct {
	ClientID string             `json:"client_id"`
	Previous models.VisitStatus `json:"previous"`
	Status   models.VisitStatus `json:"status"`
	Changed  bool               `json:"changed"`
	Revision uint64             `json:"revision"`
}

// MarkVisit moves a client to status. Re-sending the status a client already
// has is a successful no-op; closed visits never change to another value.
func (o *Orchestrator) MarkVisit(clientID string, status models.VisitStatus) (VisitUpdate, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	o.mu.Lock()
	defer o.mu.Unlock()

	day := o.session.Current()
	if day == nil {
		return VisitUpdate{}, ErrNoActiveDay
	}
	current, ok := day.Status(clientID)
	if !ok {
		return VisitUpdate{}, &UnknownClientError{ClientID: clientID}
	}

	if !status.IsValid() {
		return VisitUpdate{}, &InvalidTransitionError{ClientID: clientID, From: current, To: status}
	}

	update := VisitUpdate{ClientID: clientID, Previous: current, Status: current, Revision: day.Revision()}
	act := visitday.Transition(current, status)
	switch act {
	case visitday.NoOp:
		return update, nil
	case visitday.Apply:
		day.SetStatus(clientID, status)
		update.Status = status
		update.Changed = true
		update.Revision = day.AdvanceRevision()
		o.logger.Info().
			Str("day_id", day.ID().String()).
			Str("client_id", clientID).
			Str("from", string(current)).
			Str("to", string(status)).
			Uint64("revision", update.Revision).
			Msg("visit status changed")
		return update, nil
	default:
		o.logger.Debug().
			Str("client_id", clientID).
			Str("from", string(current)).
			Str("to", string(status)).
			Str("action", act.String()).
			Msg("visit status change refused")
		return VisitUpdate{}, &InvalidTransitionError{ClientID: clientID, From: current, To: status}
	}
}

func (o *Orchestrator) GetStatus() (visitday.Snapshot, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	day := o.session.Current()
	if day == nil {
		return visitday.Snapshot{}, ErrNoActiveDay
	}
	return day.Snapshot(), nil
}

type StopImage struct {
	ClientID    string
	Coordinates models.Coordinates
	Image       maps.Image
}

// GetStopImage renders a map around a roster client. A missing coordinate is
// geocoded and cached onto the client before rendering; the cache fill is kept
// even when rendering fails and does not change the revision.
func (o *Orchestrator) GetStopImage(ctx context.Context, clientID string, p maps.Params) (StopImage, error) {
	o.mu.RLock()
	day := o.session.Current()
	if day == nil {
		o.mu.RUnlock()
		return StopImage{}, ErrNoActiveDay
	}
	client, ok := day.Client(clientID)
	dayID := day.ID()
	o.mu.RUnlock()
	if !ok {
		return StopImage{}, &UnknownClientError{ClientID: clientID}
	}

	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return StopImage{}, &InvalidMapRequestError{Reason: err.Error()}
	}

	var coords models.Coordinates
	if client.HasCoordinates() {
		coords = *client.Coordinates
	} else {
		c, err := o.router.Geocode(ctx, client.Address)
		if err != nil {
			return StopImage{}, &RoutingProviderError{Op: "geocode", Cause: fmt.Errorf("client %s (%s): %w", clientID, client.Address, err)}
		}
		coords = c
		o.mu.Lock()
		// The day may have been reset or replaced while geocoding.
		if cur := o.session.Current(); cur != nil && cur.ID() == dayID {
			cur.FillCoordinates(clientID, coords)
		}
		o.mu.Unlock()
	}

	img, err := o.renderer.RenderStaticMap(ctx, coords, p)
	if err != nil {
		o.logger.Warn().Err(err).Str("client_id", clientID).Msg("map render failed")
		return StopImage{}, &MapRenderError{Cause: err}
	}
	return StopImage{ClientID: clientID, Coordinates: coords, Image: img}, nil
}

// ResetDay drops the live day. It never fails, with or without a day.
func (o *Orchestrator) ResetDay() {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	o.mu.Lock()
	had := o.session.Clear()
	o.mu.Unlock()
	if had {
		o.logger.Info().Msg("visit day reset")
	}
}
