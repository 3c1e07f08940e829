package server

import (
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// historyTTL matches the hour-long cache the spreadsheet-backed predecessor
// used for previous-workout reads.
const historyTTL = time.Hour

// historyCache memoizes per-person history reads. Saves invalidate the
// person's entry, and callers can force a refetch, so a stale entry only
// survives for reads nobody has written through this process.
type historyCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	records []models.Record
	fetched time.Time
}

func newHistoryCache() *historyCache {
	return &historyCache{entries: make(map[string]cacheEntry)}
}

func (c *historyCache) get(person string) ([]models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[person]
	if !ok || time.Since(e.fetched) > historyTTL {
		return nil, false
	}
	return e.records, true
}

func (c *historyCache) put(person string, records []models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[person] = cacheEntry{records: records, fetched: time.Now()}
}

// invalidate drops a person's entry along with the whole-log entry, which
// includes their rows. Invalidating the whole log drops everything.
func (c *historyCache) invalidate(person string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if person == "" {
		c.entries = make(map[string]cacheEntry)
		return
	}
	delete(c.entries, person)
	delete(c.entries, "")
}
