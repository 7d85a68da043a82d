// Package visitday holds the in-memory state of a single sales day.
//
// Day is a plain data holder. It is not safe for concurrent mutation; the
// service orchestrator serializes every mutator call.
package visitday

import (
	"time"

	"github.com/google/uuid"

	"github.com/salesday/backend/internal/models"
)

type Day struct {
	id        uuid.UUID
	date      string
	startedAt time.Time

	roster   []models.Client
	index    map[string]int
	statuses map[string]models.VisitStatus
	route    *models.Route
	revision uint64
}

// New builds a fresh day over a copy of roster with every client pending.
// Callers validate the roster first: ids must be unique and non-empty.
func New(date string, roster []models.Client, startedAt time.Time) *Day {
	d := &Day{
		id:        uuid.New(),
		date:      date,
		startedAt: startedAt,
		roster:    make([]models.Client, len(roster)),
		index:     make(map[string]int, len(roster)),
		statuses:  make(map[string]models.VisitStatus, len(roster)),
	}
	for i, c := range roster {
		d.roster[i] = c.Clone()
		d.index[c.ID] = i
		d.statuses[c.ID] = models.StatusPending
	}
	return d
}

func (d *Day) ID() uuid.UUID { return d.id }

func (d *Day) Date() string { return d.date }

func (d *Day) StartedAt() time.Time { return d.startedAt }

func (d *Day) Revision() uint64 { return d.revision }

func (d *Day) Len() int { return len(d.roster) }

// Roster returns a copy of the clients in provider order.
func (d *Day) Roster() []models.Client {
	out := make([]models.Client, len(d.roster))
	for i, c := range d.roster {
		out[i] = c.Clone()
	}
	return out
}

func (d *Day) Client(id string) (models.Client, bool) {
	i, ok := d.index[id]
	if !ok {
		return models.Client{}, false
	}
	return d.roster[i].Clone(), true
}

func (d *Day) Status(id string) (models.VisitStatus, bool) {
	s, ok := d.statuses[id]
	return s, ok
}

func (d *Day) Statuses() map[string]models.VisitStatus {
	out := make(map[string]models.VisitStatus, len(d.statuses))
	for id, s := range d.statuses {
		out[id] = s
	}
	return out
}

func (d *Day) Route() (models.Route, bool) {
	if d.route == nil {
		return models.Route{}, false
	}
	return d.route.Clone(), true
}

// SetStatus records a status for a roster client. It does not touch the
// revision; the orchestrator advances it once per operation.
func (d *Day) SetStatus(id string, status models.VisitStatus) bool {
	if _, ok := d.statuses[id]; !ok {
		return false
	}
	d.statuses[id] = status
	return true
}

// ReplaceRoute swaps in a new route wholesale.
func (d *Day) ReplaceRoute(r models.Route) {
	cloned := r.Clone()
	d.route = &cloned
}

// FillCoordinates caches a geocode onto a roster client.
func (d *Day) FillCoordinates(id string, c models.Coordinates) bool {
	i, ok := d.index[id]
	if !ok {
		return false
	}
	coords := c
	d.roster[i].Coordinates = &coords
	return true
}

func (d *Day) AdvanceRevision() uint64 {
	d.revision++
	return d.revision
}

// Snapshot is an immutable copy of a day for readers.
type Snapshot struct {
	DayID     string                        `json:"day_id"`
	Date      string                        `json:"date"`
	StartedAt time.Time                     `json:"started_at"`
	Roster    []models.Client               `json:"roster"`
	Statuses  map[string]models.VisitStatus `json:"statuses"`
	Route     *models.Route                 `json:"route,omitempty"`
	Counts    map[models.VisitStatus]int    `json:"counts"`
	Revision  uint64                        `json:"revision"`
}

func (d *Day) Snapshot() Snapshot {
	s := Snapshot{
		DayID:     d.id.String(),
		Date:      d.date,
		StartedAt: d.startedAt,
		Roster:    d.Roster(),
		Statuses:  d.Statuses(),
		Counts:    make(map[models.VisitStatus]int, len(models.VisitStatuses)),
		Revision:  d.revision,
	}
	if r, ok := d.Route(); ok {
		s.Route = &r
	}
	for _, status := range models.VisitStatuses {
		s.Counts[status] = 0
	}
	for _, status := range d.statuses {
		s.Counts[status]++
	}
	return s
}
