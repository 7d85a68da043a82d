package visitday

import "github.com/salesday/backend/internal/models"

// Action is the outcome of requesting a status change.
type Action int

const (
	Reject Action = iota
	Apply
	NoOp
)

func (a Action) String() string {
	switch a {
	case Apply:
		return "apply"
	case NoOp:
		return "noop"
	default:
		return "reject"
	}
}

// transitions is current status -> requested status -> action.
// Missing entries reject, which covers pending as a target and unknown values.
var transitions = map[models.VisitStatus]map[models.VisitStatus]Action{
	models.StatusPending: {
		models.StatusInProgress: Apply,
		models.StatusCompleted:  Apply,
		models.StatusSkipped:    Apply,
	},
	models.StatusInProgress: {
		models.StatusInProgress: NoOp,
		models.StatusCompleted:  Apply,
		models.StatusSkipped:    Apply,
	},
	models.StatusCompleted: {
		models.StatusCompleted: NoOp,
	},
	models.StatusSkipped: {
		models.StatusSkipped: NoOp,
	},
}

// Transition looks up what happens when a client in status from is asked to
// move to status to.
func Transition(from, to models.VisitStatus) Action {
	row, ok := transitions[from]
	if !ok {
		return Reject
	}
	return row[to]
}
