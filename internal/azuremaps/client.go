// Package azuremaps talks to the Azure Maps REST API for geocoding, best-order
// route directions and static map images.
package azuremaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/salesday/backend/internal/geocode"
	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/routing"
)

const (
	DefaultBaseURL = "https://atlas.microsoft.com"
	apiVersion     = "1.0"
	maxImageBytes  = 8 << 20
)

// APIError is a non-2xx answer from Azure Maps.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("azure maps %d: %s - %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("azure maps %d", e.Status)
}

type Client struct {
	baseURL    string
	key        string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithRegion appends a region to geocoding queries, see geocode.BuildGeocodeQuery.
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func New(key string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("AZURE_MAPS_KEY is required")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		key:        key,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var (
	_ routing.Client = (*Client)(nil)
	_ maps.Renderer  = (*Client)(nil)
)

type searchResponse struct {
	Results []struct {
		Score    float64 `json:"score"`
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
		Address struct {
			FreeformAddress string `json:"freeformAddress"`
		} `json:"address"`
	} `json:"results"`
}

func (c *Client) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return models.Coordinates{}, errors.New("address is required")
	}
	params := url.Values{
		"query": {geocode.BuildGeocodeQuery(address, c.region)},
		"limit": {"1"},
	}
	var res searchResponse
	if err := c.getJSON(ctx, "/search/address/json", params, &res); err != nil {
		return models.Coordinates{}, fmt.Errorf("geocoding %q: %w", address, err)
	}
	if len(res.Results) == 0 {
		return models.Coordinates{}, fmt.Errorf("geocoding %q: %w", address, geocode.ErrNotFound)
	}
	p := res.Results[0].Position
	return models.Coordinates{Lat: p.Lat, Lon: p.Lon}, nil
}

type directionsResponse struct {
	Routes []struct {
		Legs []struct {
			Summary struct {
				LengthInMeters      int `json:"lengthInMeters"`
				TravelTimeInSeconds int `json:"travelTimeInSeconds"`
			} `json:"summary"`
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
	OptimizedWaypoints []struct {
		ProvidedIndex  int `json:"providedIndex"`
		OptimizedIndex int `json:"optimizedIndex"`
	} `json:"optimizedWaypoints"`
}

// OptimizeRoute requests a round trip start -> stops -> start with best
// order so every stop is free to move, then drops the return leg.
func (c *Client) OptimizeRoute(ctx context.Context, start models.Coordinates, stops []routing.Stop) (routing.Result, error) {
	if len(stops) == 0 {
		return routing.Result{Order: []string{}, Legs: []routing.Leg{}}, nil
	}
	waypoints := make([]string, 0, len(stops)+2)
	waypoints = append(waypoints, formatLatLon(start))
	for _, s := range stops {
		waypoints = append(waypoints, formatLatLon(s.Coordinates))
	}
	waypoints = append(waypoints, formatLatLon(start))

	params := url.Values{
		"query":            {strings.Join(waypoints, ":")},
		"computeBestOrder": {"true"},
		"routeType":        {"fastest"},
		"traffic":          {"true"},
		"travelMode":       {"car"},
	}
	var res directionsResponse
	if err := c.getJSON(ctx, "/route/directions/json", params, &res); err != nil {
		return routing.Result{}, fmt.Errorf("route directions: %w", err)
	}
	return toResult(res, stops)
}

func toResult(res directionsResponse, stops []routing.Stop) (routing.Result, error) {
	if len(res.Routes) == 0 {
		return routing.Result{}, errors.New("route directions: no routes in response")
	}
	legs := res.Routes[0].Legs
	if len(legs) != len(stops)+1 {
		return routing.Result{}, fmt.Errorf("route directions: expected %d legs, got %d", len(stops)+1, len(legs))
	}

	order := make([]string, len(stops))
	for i, s := range stops {
		order[i] = s.ID
	}
	if len(res.OptimizedWaypoints) > 0 {
		if len(res.OptimizedWaypoints) != len(stops) {
			return routing.Result{}, fmt.Errorf("route directions: expected %d optimized waypoints, got %d", len(stops), len(res.OptimizedWaypoints))
		}
		placed := make([]bool, len(stops))
		for _, w := range res.OptimizedWaypoints {
			if w.ProvidedIndex < 0 || w.ProvidedIndex >= len(stops) || w.OptimizedIndex < 0 || w.OptimizedIndex >= len(stops) || placed[w.OptimizedIndex] {
				return routing.Result{}, fmt.Errorf("route directions: bad waypoint mapping %d -> %d", w.ProvidedIndex, w.OptimizedIndex)
			}
			placed[w.OptimizedIndex] = true
			order[w.OptimizedIndex] = stops[w.ProvidedIndex].ID
		}
	}

	out := routing.Result{Order: order, Legs: make([]routing.Leg, 0, len(stops))}
	for _, leg := range legs[:len(stops)] {
		points := make([]models.Coordinates, len(leg.Points))
		for i, p := range leg.Points {
			points[i] = models.Coordinates{Lat: p.Latitude, Lon: p.Longitude}
		}
		out.Legs = append(out.Legs, routing.Leg{
			DistanceMeters:  leg.Summary.LengthInMeters,
			DurationSeconds: leg.Summary.TravelTimeInSeconds,
			Points:          points,
		})
	}
	return out, nil
}

func (c *Client) RenderStaticMap(ctx context.Context, center models.Coordinates, p maps.Params) (maps.Image, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return maps.Image{}, err
	}
	layer, style := "basic", p.Style
	if p.Style == maps.StyleSatellite {
		layer, style = "hybrid", maps.StyleMain
	}
	lonLat := formatLonLat(center)
	params := url.Values{
		"layer":  {layer},
		"style":  {style},
		"zoom":   {strconv.Itoa(p.Zoom)},
		"width":  {strconv.Itoa(p.Width)},
		"height": {strconv.Itoa(p.Height)},
		"center": {lonLat},
		"pins":   {"default||" + strings.Replace(lonLat, ",", " ", 1)},
	}

	resp, err := c.do(ctx, "/map/static/png", params)
	if err != nil {
		return maps.Image{}, fmt.Errorf("static map: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return maps.Image{}, fmt.Errorf("static map: reading body: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/png"
	}
	return maps.Image{Data: data, ContentType: ct}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do sends an authenticated GET and turns non-2xx answers into *APIError.
// The caller closes the body on success.
func (c *Client) do(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params.Set("api-version", apiVersion)
	params.Set("subscription-key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
		}
		return nil, apiErr
	}
	return resp, nil
}

func formatLatLon(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 6, 64)
}

func formatLonLat(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}
