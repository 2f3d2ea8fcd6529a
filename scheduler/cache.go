package scheduler

import (
	"sync"
	"time"

	"github.com/devskill-org/stargazing/forecast"
	"github.com/devskill-org/stargazing/scoring"
)

// CachedForecast is one source's scored forecast together with its refresh metadata
type CachedForecast struct {
	Source     forecast.Source                `json:"source"`
	RunID      string                         `json:"run_id"`
	FetchedAt  time.Time                      `json:"fetched_at"`
	Records    []scoring.ObservingScoreRecord `json:"records"`
	BestWindow scoring.BestWindow             `json:"best_window"`
	Alerts     []scoring.ObservingScoreRecord `json:"alerts,omitempty"`
}

// ForecastCache keeps the latest forecast per source for cacheDuration
type ForecastCache struct {
	mu            sync.RWMutex
	entries       map[forecast.Source]CachedForecast
	cacheDuration time.Duration
	now           func() time.Time
}

// NewForecastCache creates an empty cache
func NewForecastCache(cacheDuration time.Duration) *ForecastCache {
	return &ForecastCache{
		entries:       make(map[forecast.Source]CachedForecast),
		cacheDuration: cacheDuration,
		now:           time.Now,
	}
}

// Get returns the cached forecast of source if it has not expired
func (c *ForecastCache) Get(source forecast.Source) (CachedForecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[source]
	if !ok {
		return CachedForecast{}, false
	}
	if c.now().Sub(entry.FetchedAt) > c.cacheDuration {
		return CachedForecast{}, false
	}
	return entry, true
}

// Set stores entry under its source
func (c *ForecastCache) Set(entry CachedForecast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Source] = entry
}

// Sources lists the sources with a live entry
func (c *ForecastCache) Sources() []forecast.Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	var out []forecast.Source
	for _, s := range []forecast.Source{forecast.SourceOpenMeteo, forecast.SourceSevenTimer, forecast.SourceMetNorway} {
		if e, ok := c.entries[s]; ok && now.Sub(e.FetchedAt) <= c.cacheDuration {
			out = append(out, s)
		}
	}
	return out
}

// LastRefresh returns the newest FetchedAt across all entries
func (c *ForecastCache) LastRefresh() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var last time.Time
	for _, e := range c.entries {
		if e.FetchedAt.After(last) {
			last = e.FetchedAt
		}
	}
	return last, !last.IsZero()
}
