package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/service"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrEmptyRoster, http.StatusBadRequest, "EMPTY_ROSTER"},
		{fmt.Errorf("%w: dup", service.ErrInvalidRoster), http.StatusBadRequest, "INVALID_REQUEST"},
		{service.ErrNoActiveDay, http.StatusConflict, "NO_ACTIVE_DAY"},
		{&service.UnknownClientError{ClientID: "X"}, http.StatusNotFound, "UNKNOWN_CLIENT"},
		{&service.InvalidTransitionError{ClientID: "X", From: models.StatusCompleted, To: models.StatusPending}, http.StatusConflict, "INVALID_TRANSITION"},
		{&service.InvalidMapRequestError{Reason: "zoom"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{&service.RoutingProviderError{Op: "optimize", Cause: errors.New("x")}, http.StatusBadGateway, "ROUTING_PROVIDER_ERROR"},
		{&service.RoutingProviderError{Op: "geocode", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout, "TIMEOUT"},
		{&service.MapRenderError{Cause: errors.New("x")}, http.StatusBadGateway, "MAP_RENDER_ERROR"},
		{&service.RosterError{Cause: errors.New("x")}, http.StatusBadGateway, "ROSTER_ERROR"},
		{errors.New("surprise"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code, _ := classify(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("%v: expected %d %s, got %d %s", tc.err, tc.status, tc.code, status, code)
		}
	}
}

func TestClassifyKeepsTransitionDetails(t *testing.T) {
	_, _, details := classify(&service.InvalidTransitionError{ClientID: "B", From: models.StatusSkipped, To: models.StatusCompleted})
	if details == nil {
		t.Fatalf("expected transition details")
	}
}
