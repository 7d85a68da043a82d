package maps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salesday/backend/internal/models"
)

type cacheEntry struct {
	img Image
	exp time.Time
}

// DefaultCacheEntries bounds a Cache built by NewCache.
const DefaultCacheEntries = 256

// Cache keeps rendered images for TTL so repeated requests for the same stop
// do not hit the tile service. Failures are never cached. At most MaxEntries
// images are held; when full, expired entries go first, then the one closest
// to expiry.
type Cache struct {
	Next       Renderer
	TTL        time.Duration
	Now        func() time.Time
	MaxEntries int

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(next Renderer, ttl time.Duration) *Cache {
	return &Cache{Next: next, TTL: ttl, Now: time.Now, MaxEntries: DefaultCacheEntries, entries: map[string]cacheEntry{}}
}

func (c *Cache) RenderStaticMap(ctx context.Context, center models.Coordinates, p Params) (Image, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return Image{}, err
	}
	key := fmt.Sprintf("%.6f,%.6f|%d|%s|%dx%d", center.Lat, center.Lon, p.Zoom, p.Style, p.Width, p.Height)
	if img, ok := c.get(key); ok {
		return img, nil
	}
	img, err := c.Next.RenderStaticMap(ctx, center, p)
	if err != nil {
		return Image{}, err
	}
	c.set(key, img)
	return img, nil
}

func (c *Cache) get(key string) (Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if c.Now().Before(e.exp) {
			return e.img, true
		}
		delete(c.entries, key)
	}
	return Image{}, false
}

func (c *Cache) set(key string, img Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]cacheEntry{}
	}
	now := c.Now()
	if _, ok := c.entries[key]; !ok && c.MaxEntries > 0 && len(c.entries) >= c.MaxEntries {
		c.evict(now)
	}
	c.entries[key] = cacheEntry{img: img, exp: now.Add(c.TTL)}
}

// evict drops expired entries, or the soonest-expiring one if none expired.
// Callers hold mu.
func (c *Cache) evict(now time.Time) {
	var (
		oldestKey string
		oldestExp time.Time
	)
	for k, e := range c.entries {
		if !now.Before(e.exp) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.exp.Before(oldestExp) {
			oldestKey, oldestExp = k, e.exp
		}
	}
	if len(c.entries) >= c.MaxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len reports how many images are held, including expired ones not yet
// dropped.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
