package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(day int) func() time.Time {
	return func() time.Time { return time.Date(2026, 10, day, 8, 30, 0, 0, time.UTC) }
}

func TestSampleIsDeterministicPerDay(t *testing.T) {
	p := Sample{Count: 3, Now: fixedNow(14)}
	first, err := p.GetTodaysClients(context.Background())
	require.NoError(t, err)
	second, err := p.GetTodaysClients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-10-14", first.Date)
	assert.Equal(t, first, second)
	require.Len(t, first.Clients, 3)

	seen := map[string]bool{}
	for _, c := range first.Clients {
		assert.False(t, seen[c.ID], "duplicate client %s", c.ID)
		seen[c.ID] = true
		assert.NotEmpty(t, c.Address)
		last, err := time.Parse("2006-01-02", c.LastVisit)
		require.NoError(t, err)
		age := fixedNow(14)().Sub(last).Hours() / 24
		assert.GreaterOrEqual(t, age, 15.0)
		assert.LessOrEqual(t, age, 61.0)
	}
}

func TestSampleClampsCount(t *testing.T) {
	small, err := Sample{Count: 0, Now: fixedNow(14)}.GetTodaysClients(context.Background())
	require.NoError(t, err)
	assert.Len(t, small.Clients, 2)

	large, err := Sample{Count: 50, Now: fixedNow(14)}.GetTodaysClients(context.Background())
	require.NoError(t, err)
	assert.Len(t, large.Clients, len(sampleClients))
}

func TestSampleDoesNotLeakCatalogue(t *testing.T) {
	r, err := Sample{Count: 5, Now: fixedNow(14)}.GetTodaysClients(context.Background())
	require.NoError(t, err)
	for _, c := range r.Clients {
		if c.Coordinates != nil {
			c.Coordinates.Lat = 0
		}
	}
	for _, c := range sampleClients {
		if c.Coordinates != nil {
			assert.NotZero(t, c.Coordinates.Lat)
		}
	}
}

func TestSampleAddressesCoverCatalogue(t *testing.T) {
	addrs := SampleAddresses()
	for _, c := range sampleClients {
		_, ok := addrs[c.Address]
		assert.True(t, ok, "missing %s", c.Address)
	}
	assert.Equal(t, Office.Coordinates, addrs[Office.Address])
}
