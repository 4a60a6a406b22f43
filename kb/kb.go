package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventAsteroidAdded EventType = iota
	EventAsteroidRemoved
)

// Event is emitted to subscribers when the catalog changes, so dashboards
// can refresh their listings without polling.
type Event struct {
	Type     EventType
	Asteroid model.Asteroid
}

// Catalog is an in-memory, thread-safe store of asteroids and defense
// strategies. Scenario files seed it at startup; user-authored asteroids
// join it at runtime.
type Catalog struct {
	mu sync.RWMutex

	asteroids  map[string]*model.Asteroid
	strategies map[string]*model.DefenseStrategy

	subs []func(Event)
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		asteroids:  make(map[string]*model.Asteroid),
		strategies: make(map[string]*model.DefenseStrategy),
	}
}

// AddAsteroid adds a new asteroid. It returns an error if the ID already
// exists or the record fails validation.
func (c *Catalog) AddAsteroid(a *model.Asteroid) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("asteroid %q: %w", a.ID, err)
	}

	c.mu.Lock()
	if _, exists := c.asteroids[a.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("asteroid with ID %q already exists", a.ID)
	}
	c.asteroids[a.ID] = a
	event := Event{Type: EventAsteroidAdded, Asteroid: *a}
	subs := append([]func(Event){}, c.subs...)
	c.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// RemoveAsteroid deletes an asteroid and notifies subscribers. Removing an
// unknown ID is an error.
func (c *Catalog) RemoveAsteroid(id string) error {
	c.mu.Lock()
	a, ok := c.asteroids[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("asteroid with ID %q not found", id)
	}
	delete(c.asteroids, id)
	event := Event{Type: EventAsteroidRemoved, Asteroid: *a}
	subs := append([]func(Event){}, c.subs...)
	c.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// AddStrategy adds a new defense strategy, keyed by code.
func (c *Catalog) AddStrategy(s *model.DefenseStrategy) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.strategies[s.Code]; exists {
		return fmt.Errorf("strategy with code %q already exists", s.Code)
	}
	c.strategies[s.Code] = s
	return nil
}

// GetAsteroid returns the asteroid with the given ID, or nil if not found.
func (c *Catalog) GetAsteroid(id string) *model.Asteroid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.asteroids[id]
}

// GetStrategy returns the strategy with the given code, or nil if not found.
func (c *Catalog) GetStrategy(code string) *model.DefenseStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategies[code]
}

// ListAsteroids returns a snapshot slice of all asteroids.
func (c *Catalog) ListAsteroids() []*model.Asteroid {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.Asteroid, 0, len(c.asteroids))
	for _, a := range c.asteroids {
		res = append(res, a)
	}
	return res
}

// ListStrategies returns a snapshot slice of all strategies.
func (c *Catalog) ListStrategies() []*model.DefenseStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.DefenseStrategy, 0, len(c.strategies))
	for _, s := range c.strategies {
		res = append(res, s)
	}
	return res
}

// Counts returns the catalog sizes, for the observability gauges.
func (c *Catalog) Counts() (asteroids, strategies int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.asteroids), len(c.strategies)
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < 0 || idx >= len(c.subs) {
			return
		}
		c.subs = append(c.subs[:idx], c.subs[idx+1:]...)
		idx = -1
	}
}
