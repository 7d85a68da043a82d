package service

import "github.com/salesday/backend/internal/models"

// Progress describes where the representative is after RecordProgress.
type Progress struct {
	Closed      []string       `json:"closed"`
	Current     *models.Client `json:"current,omitempty"`
	VisitNumber int            `json:"visit_number"`
	TotalVisits int            `json:"total_visits"`
	Remaining   int            `json:"remaining"`
	DayComplete bool           `json:"day_complete"`
	Changed     bool           `json:"changed"`
	Revision    uint64         `json:"revision"`
}

// RecordProgress closes the visit in progress and starts the next pending one.
// Visit order follows the stored route, with clients the route does not cover
// appended in roster order; without a route it is the roster order.
func (o *Orchestrator) RecordProgress() (Progress, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	o.mu.Lock()
	defer o.mu.Unlock()

	day := o.session.Current()
	if day == nil {
		return Progress{}, ErrNoActiveDay
	}

	order := visitOrder(day.Roster(), day.Route)
	p := Progress{Closed: []string{}, TotalVisits: len(order)}

	for _, id := range order {
		if s, _ := day.Status(id); s == models.StatusInProgress {
			day.SetStatus(id, models.StatusCompleted)
			p.Closed = append(p.Closed, id)
			p.Changed = true
		}
	}

	for _, id := range order {
		if s, _ := day.Status(id); s == models.StatusPending {
			day.SetStatus(id, models.StatusInProgress)
			c, _ := day.Client(id)
			p.Current = &c
			p.Changed = true
			break
		}
	}

	terminal := 0
	for _, id := range order {
		if s, _ := day.Status(id); s.IsTerminal() {
			terminal++
		}
	}
	p.DayComplete = p.Current == nil
	if p.Current != nil {
		p.VisitNumber = terminal + 1
		p.Remaining = len(order) - terminal - 1
	} else {
		p.VisitNumber = terminal
	}

	p.Revision = day.Revision()
	if p.Changed {
		p.Revision = day.AdvanceRevision()
		ev := o.logger.Info().Str("day_id", day.ID().String()).Uint64("revision", p.Revision).Strs("closed", p.Closed)
		if p.Current != nil {
			ev = ev.Str("current", p.Current.ID)
		}
		ev.Bool("day_complete", p.DayComplete).Msg("visit progress recorded")
	}
	return p, nil
}

func visitOrder(roster []models.Client, route func() (models.Route, bool)) []string {
	order := make([]string, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	if r, ok := route(); ok {
		for _, id := range r.StopOrder {
			if !seen[id] {
				order = append(order, id)
				seen[id] = true
			}
		}
	}
	for _, c := range roster {
		if !seen[c.ID] {
			order = append(order, c.ID)
			seen[c.ID] = true
		}
	}
	return order
}
