package service

import (
	"errors"
	"fmt"

	"github.com/salesday/backend/internal/models"
)

var (
	ErrEmptyRoster   = errors.New("roster is empty")
	ErrInvalidRoster = errors.New("roster is invalid")
	ErrNoActiveDay   = errors.New("no active visit day")
)

type UnknownClientError struct {
	ClientID string
}

func (e *UnknownClientError) Error() string {
	return fmt.Sprintf("client %q is not on today's roster", e.ClientID)
}

type InvalidTransitionError struct {
	ClientID string
	From     models.VisitStatus
	To       models.VisitStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("client %q cannot move from %s to %s", e.ClientID, e.From, e.To)
}

type InvalidMapRequestError struct {
	Reason string
}

func (e *InvalidMapRequestError) Error() string {
	return "invalid map request: " + e.Reason
}

// RoutingProviderError wraps a geocoding or route optimization failure.
// Op is "geocode" or "optimize".
type RoutingProviderError struct {
	Op    string
	Cause error
}

func (e *RoutingProviderError) Error() string {
	return fmt.Sprintf("routing provider %s failed: %v", e.Op, e.Cause)
}

func (e *RoutingProviderError) Unwrap() error { return e.Cause }

type MapRenderError struct {
	Cause error
}

func (e *MapRenderError) Error() string {
	return fmt.Sprintf("map rendering failed: %v", e.Cause)
}

func (e *MapRenderError) Unwrap() error { return e.Cause }

type RosterError struct {
	Cause error
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("roster provider failed: %v", e.Cause)
}

func (e *RosterError) Unwrap() error { return e.Cause }
