package models

import "time"

// StartStopID marks the representative's start location as a leg origin.
// It is never a roster client id.
const StartStopID = "start"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Client struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Contact     string       `json:"contact,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	LastVisit   string       `json:"last_visit,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// HasCoordinates reports whether the client has been geocoded.
func (c Client) HasCoordinates() bool {
	return c.Coordinates != nil
}

type VisitStatus string

const (
	StatusPending    VisitStatus = "pending"
	StatusInProgress VisitStatus = "in_progress"
	StatusCompleted  VisitStatus = "completed"
	StatusSkipped    VisitStatus = "skipped"
)

// VisitStatuses lists every status in lifecycle order.
var VisitStatuses = []VisitStatus{StatusPending, StatusInProgress, StatusCompleted, StatusSkipped}

func (s VisitStatus) IsValid() bool {
	for _, v := range VisitStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the visit is closed for the day.
func (s VisitStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// IsOpen reports whether the visit still needs routing.
func (s VisitStatus) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// StartLocation is an optional explicit start for route computation.
// Coordinates win over Address when both are set.
type StartLocation struct {
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type RouteLeg struct {
	OriginID        string        `json:"origin_id"`
	DestinationID   string        `json:"destination_id"`
	DistanceMeters  int           `json:"distance_meters"`
	DurationSeconds int           `json:"duration_seconds"`
	Points          []Coordinates `json:"points,omitempty"`
}

type Route struct {
	Start                Coordinates `json:"start"`
	StartAddress         string      `json:"start_address,omitempty"`
	StopOrder            []string    `json:"stop_order"`
	Legs                 []RouteLeg  `json:"legs"`
	TotalDistanceMeters  int         `json:"total_distance_meters"`
	TotalDurationSeconds int         `json:"total_duration_seconds"`
	ComputedAt           time.Time   `json:"computed_at"`
}

// Clone returns a deep copy so callers never share slices with stored state.
func (r Route) Clone() Route {
	out := r
	out.StopOrder = append([]string(nil), r.StopOrder...)
	if out.StopOrder == nil {
		out.StopOrder = []string{}
	}
	out.Legs = make([]RouteLeg, len(r.Legs))
	for i, leg := range r.Legs {
		leg.Points = append([]Coordinates(nil), leg.Points...)
		out.Legs[i] = leg
	}
	return out
}

// Clone returns a copy that does not share the coordinate pointer.
func (c Client) Clone() Client {
	if c.Coordinates != nil {
		coords := *c.Coordinates
		c.Coordinates = &coords
	}
	return c
}
