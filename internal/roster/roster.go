// Package roster supplies the day's client list.
package roster

import (
	"context"
	"math/rand"
	"time"

	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/utils"
)

type Roster struct {
	Date    string
	Clients []models.Client
}

type Provider interface {
	GetTodaysClients(ctx context.Context) (Roster, error)
}

// Office is the default start location of the sample data.
var Office = struct {
	Name        string
	Address     string
	Coordinates models.Coordinates
}{
	Name:        "Office",
	Address:     "Stockerstrasse 9, 8002 Zürich",
	Coordinates: models.Coordinates{Lat: 47.366374, Lon: 8.536213},
}

var sampleClients = []models.Client{
	{
		ID:          "CL001",
		Name:        "Swiss Banking Corp",
		Contact:     "Thomas Mueller",
		Address:     "Paradeplatz 8, 8001 Zürich",
		Priority:    "high",
		Notes:       "Contract renewal coming up",
		Coordinates: &models.Coordinates{Lat: 47.369800, Lon: 8.539185},
	},
	{
		ID:          "CL002",
		Name:        "Alpine Solutions AG",
		Contact:     "Maria Bernhard",
		Address:     "Bahnhofstrasse 15, 3920 Zermatt",
		Priority:    "medium",
		Notes:       "Interested in new product line",
		Coordinates: &models.Coordinates{Lat: 46.023731, Lon: 7.747419},
	},
	{
		ID:          "CL003",
		Name:        "Geneva Trading SA",
		Contact:     "Jean Dupont",
		Address:     "Rue du Rhône 30, 1204 Genève",
		Priority:    "high",
		Notes:       "Has open support tickets",
		Coordinates: &models.Coordinates{Lat: 46.203566, Lon: 6.151768},
	},
	{
		ID:       "CL004",
		Name:     "Basel Pharma Logistics",
		Contact:  "Anna Keller",
		Address:  "Aeschenvorstadt 4, 4051 Basel",
		Priority: "low",
		Notes:    "Looking to expand current services",
	},
	{
		ID:       "CL005",
		Name:     "Bern Civic Systems",
		Contact:  "Lukas Weber",
		Address:  "Bundesplatz 3, 3011 Bern",
		Priority: "medium",
		Notes:    "Recently upgraded their subscription",
	},
}

// SampleAddresses maps every sample address to its known coordinates, for a
// static geocoder in development. Clients without seeded coordinates are
// included so routing works offline.
func SampleAddresses() map[string]models.Coordinates {
	out := map[string]models.Coordinates{
		Office.Address:                  Office.Coordinates,
		"Aeschenvorstadt 4, 4051 Basel": {Lat: 47.553680, Lon: 7.593180},
		"Bundesplatz 3, 3011 Bern":      {Lat: 46.946800, Lon: 7.444100},
	}
	for _, c := range sampleClients {
		if c.HasCoordinates() {
			out[c.Address] = *c.Coordinates
		}
	}
	return out
}

// Sample picks Count clients from a fixed catalogue. The pick and the last
// visit dates depend only on the date, so a day reloads identically.
type Sample struct {
	Count int
	Now   func() time.Time
}

func (s Sample) GetTodaysClients(ctx context.Context) (Roster, error) {
	if err := ctx.Err(); err != nil {
		return Roster{}, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now()
	date := today.Format("2006-01-02")

	count := s.Count
	if count < 2 {
		count = 2
	}
	if count > len(sampleClients) {
		count = len(sampleClients)
	}

	rng := rand.New(rand.NewSource(utils.SeedFromString(date)))
	picked := rng.Perm(len(sampleClients))[:count]
	clients := make([]models.Client, 0, count)
	for _, i := range picked {
		c := sampleClients[i].Clone()
		c.LastVisit = today.AddDate(0, 0, -(15 + rng.Intn(46))).Format("2006-01-02")
		clients = append(clients, c)
	}
	return Roster{Date: date, Clients: clients}, nil
}
