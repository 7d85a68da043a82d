package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/metrics"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Orchestrator   *service.Orchestrator
	Metrics        *metrics.Metrics
	Validator      *validator.Validate
	Logger         zerolog.Logger
	Store          Pinger
	Office         models.StartLocation
	RequestTimeout time.Duration
}

type coordinatesInput struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (c *coordinatesInput) toModel() *models.Coordinates {
	if c == nil {
		return nil
	}
	return &models.Coordinates{Lat: c.Lat, Lon: c.Lon}
}

type ClientInput struct {
	ID          string            `json:"id" validate:"required,max=64"`
	Name        string            `json:"name" validate:"required"`
	Address     string            `json:"address" validate:"required"`
	Contact     string            `json:"contact"`
	Priority    string            `json:"priority" validate:"omitempty,oneof=low medium high"`
	Notes       string            `json:"notes"`
	LastVisit   string            `json:"last_visit" validate:"omitempty,datetime=2006-01-02"`
	Coordinates *coordinatesInput `json:"coordinates"`
}

// StartDayRequest carries an explicit roster. Omitting clients loads the
// roster from the configured provider.
type StartDayRequest struct {
	Clients []ClientInput `json:"clients" validate:"omitempty,dive"`
}

type StartInput struct {
	Address     string            `json:"address"`
	Coordinates *coordinatesInput `json:"coordinates"`
}

type ComputeRouteRequest struct {
	Start      *StartInput `json:"start"`
	FromOffice bool        `json:"from_office"`
}

type MarkVisitRequest struct {
	Status models.VisitStatus `json:"status" validate:"required,oneof=pending in_progress completed skipped"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
	}
	_, err := h.Orchestrator.GetStatus()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "day_active": err == nil})
}

// @Summary Start a visit day
// @Description Starts a new day from the given roster, or from the roster provider when no clients are sent. Replaces any live day.
// @Tags day
// @Accept json
// @Produce json
// @Param request body StartDayRequest false "Roster"
// @Success 201 {object} visitday.Snapshot
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/day [post]
func (h *Handler) StartDay(c *gin.Context) {
	var req StartDayRequest
	present, err := bindOptionalJSON(c, &req)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if present {
		if err := h.Validator.Struct(req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid roster", err.Error())
			return
		}
	}

	if req.Clients == nil {
		ctx, cancel := h.withTimeout(c)
		defer cancel()
		snap, err := h.Orchestrator.LoadDay(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, snap)
		return
	}

	clients := make([]models.Client, 0, len(req.Clients))
	for _, in := range req.Clients {
		clients = append(clients, models.Client{
			ID:          in.ID,
			Name:        in.Name,
			Address:     in.Address,
			Contact:     in.Contact,
			Priority:    in.Priority,
			Notes:       in.Notes,
			LastVisit:   in.LastVisit,
			Coordinates: in.Coordinates.toModel(),
		})
	}
	snap, err := h.Orchestrator.StartDay(clients)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// @Summary Visit day status
// @Tags day
// @Produce json
// @Success 200 {object} visitday.Snapshot
// @Failure 409 {object} map[string]any
// @Router /api/day [get]
func (h *Handler) GetStatus(c *gin.Context) {
	snap, err := h.Orchestrator.GetStatus()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Reset the visit day
// @Tags day
// @Success 204
// @Router /api/day [delete]
func (h *Handler) ResetDay(c *gin.Context) {
	h.Orchestrator.ResetDay()
	c.Status(http.StatusNoContent)
}

// @Summary Compute the route
// @Description Orders the open visits into a driving route. Without a start the route begins at the first roster client.
// @Tags day
// @Accept json
// @Produce json
// @Param request body ComputeRouteRequest false "Start location"
// @Success 200 {object} models.Route
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/day/route [post]
func (h *Handler) ComputeRoute(c *gin.Context) {
	var req ComputeRouteRequest
	present, err := bindOptionalJSON(c, &req)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if present {
		if err := h.Validator.Struct(req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid start location", err.Error())
			return
		}
	}
	if req.FromOffice && req.Start != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "start and from_office are mutually exclusive", nil)
		return
	}

	var start *models.StartLocation
	switch {
	case req.FromOffice:
		office := h.Office
		start = &office
	case req.Start != nil:
		start = &models.StartLocation{Address: req.Start.Address, Coordinates: req.Start.Coordinates.toModel()}
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()
	route, err := h.Orchestrator.ComputeRoute(ctx, start)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordRoute(len(route.StopOrder))
	}
	c.JSON(http.StatusOK, route)
}

// @Summary Mark a visit
// @Tags visits
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body MarkVisitRequest true "New status"
// @Success 200 {object} service.VisitUpdate
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/day/visits/{id} [put]
func (h *Handler) MarkVisit(c *gin.Context) {
	var req MarkVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid status", err.Error())
		return
	}

	update, err := h.Orchestrator.MarkVisit(c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	if update.Changed && h.Metrics != nil {
		h.Metrics.RecordVisitTransition(string(update.Status))
	}
	c.JSON(http.StatusOK, update)
}

// @Summary Record progress
// @Description Completes the visit in progress and starts the next one in route order.
// @Tags visits
// @Produce json
// @Success 200 {object} service.Progress
// @Failure 409 {object} map[string]any
// @Router /api/day/progress [post]
func (h *Handler) RecordProgress(c *gin.Context) {
	p, err := h.Orchestrator.RecordProgress()
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.Metrics != nil {
		for range p.Closed {
			h.Metrics.RecordVisitTransition(string(models.StatusCompleted))
		}
		if p.Current != nil {
			h.Metrics.RecordVisitTransition(string(models.StatusInProgress))
		}
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Stop map image
// @Tags visits
// @Produce png
// @Param id path string true "Client ID"
// @Param zoom query int false "Zoom level 0-20" default(15)
// @Param style query string false "main, dark or satellite" default(main)
// @Param width query int false "Image width in pixels"
// @Param height query int false "Image height in pixels"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/day/stops/{id}/map [get]
func (h *Handler) StopMap(c *gin.Context) {
	p := maps.Params{Style: c.Query("style")}
	var err error
	if p.Zoom, err = intQuery(c, "zoom", maps.DefaultZoom); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "zoom must be an integer", nil)
		return
	}
	if p.Width, err = intQuery(c, "width", 0); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "width must be an integer", nil)
		return
	}
	if p.Height, err = intQuery(c, "height", 0); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "height must be an integer", nil)
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()
	img, err := h.Orchestrator.GetStopImage(ctx, c.Param("id"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, img.Image.ContentType, img.Image.Data)
}

// bindOptionalJSON decodes an optional JSON body into obj. It reports false
// for a missing or empty body, including a chunked one with no content.
func bindOptionalJSON(c *gin.Context, obj any) (bool, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return false, nil
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code, details := classify(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error().Err(err).Str("code", code).Msg("request failed")
	}
	_ = c.Error(err)
	writeError(c, status, code, err.Error(), details)
}

// classify maps orchestrator errors to an HTTP status and error code.
func classify(err error) (int, string, any) {
	var (
		unknown    *service.UnknownClientError
		transition *service.InvalidTransitionError
		mapReq     *service.InvalidMapRequestError
		provider   *service.RoutingProviderError
		render     *service.MapRenderError
		rosterErr  *service.RosterError
	)
	switch {
	case errors.Is(err, service.ErrEmptyRoster):
		return http.StatusBadRequest, "EMPTY_ROSTER", nil
	case errors.Is(err, service.ErrInvalidRoster):
		return http.StatusBadRequest, "INVALID_REQUEST", nil
	case errors.Is(err, service.ErrNoActiveDay):
		return http.StatusConflict, "NO_ACTIVE_DAY", nil
	case errors.As(err, &unknown):
		return http.StatusNotFound, "UNKNOWN_CLIENT", gin.H{"client_id": unknown.ClientID}
	case errors.As(err, &transition):
		return http.StatusConflict, "INVALID_TRANSITION", gin.H{"client_id": transition.ClientID, "from": transition.From, "to": transition.To}
	case errors.As(err, &mapReq):
		return http.StatusBadRequest, "INVALID_REQUEST", nil
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", nil
	case errors.As(err, &provider):
		return http.StatusBadGateway, "ROUTING_PROVIDER_ERROR", gin.H{"op": provider.Op}
	case errors.As(err, &render):
		return http.StatusBadGateway, "MAP_RENDER_ERROR", nil
	case errors.As(err, &rosterErr):
		return http.StatusBadGateway, "ROSTER_ERROR", nil
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", nil
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
