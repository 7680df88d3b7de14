// Package geometry loads the static line geometry artifact and serves
// preprocessed routes to the simulator. The cache is an explicit,
// dependency-injected object with a defined lifecycle: constructed once at
// process start, reloaded explicitly when the geometry version changes.
package geometry

import (
	"fmt"
	"log"
	"sync"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geojson"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/route"
)

// Cache holds preprocessed routes keyed by line code. The route map is
// replaced wholesale on reload; published routes are never mutated, so
// concurrent readers always see a consistent version.
type Cache struct {
	path string

	mu         sync.RWMutex
	routes     map[string]*route.Route
	collection *geojson.FeatureCollection
	generation uint64
}

// NewCache returns an empty cache reading from the given artifact path.
// Call Load before first use.
func NewCache(path string) *Cache {
	return &Cache{path: path, routes: make(map[string]*route.Route)}
}

// Load reads the geometry artifact and preprocesses every line. Degenerate
// lines are skipped with a log line; they do not fail the load. If the
// cache was invalidated while this load was in flight, the stale result is
// discarded on arrival.
func (c *Cache) Load() error {
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	fc, err := geojson.Load(c.path)
	if err != nil {
		return err
	}
	routes := make(map[string]*route.Route, len(fc.Features))
	for _, f := range fc.Features {
		code := f.LineCode()
		if code == "" {
			log.Printf("geometry: feature without line id, skipping")
			continue
		}
		r, err := route.Preprocess(f.Geometry.Coordinates)
		if err != nil {
			log.Printf("geometry: line %s: %v, skipping", code, err)
			continue
		}
		routes[code] = r
	}
	if len(routes) == 0 {
		return fmt.Errorf("geometry: no usable lines in %s", c.path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		// Invalidated mid-flight; the caller who bumped the generation owns
		// the next reload.
		return nil
	}
	c.routes = routes
	c.collection = fc
	c.generation++
	return nil
}

// Invalidate bumps the generation so any in-flight load is discarded on
// arrival. Callers reload explicitly afterwards.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.routes = make(map[string]*route.Route)
	c.collection = nil
	c.mu.Unlock()
}

// Route returns the preprocessed route for a line, or nil when the line has
// no usable geometry.
func (c *Cache) Route(lineCode string) *route.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.routes[lineCode]
}

// Collection returns the loaded feature collection, or nil before Load.
func (c *Cache) Collection() *geojson.FeatureCollection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection
}

// Lines returns the line codes with usable geometry.
func (c *Cache) Lines() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	codes := make([]string, 0, len(c.routes))
	for code := range c.routes {
		codes = append(codes, code)
	}
	return codes
}

// Generation returns the monotonically increasing cache version.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}
