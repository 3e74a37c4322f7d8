// Package cache holds the in-memory word cache and its durable file store.
package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/at-ishikawa/ydweb/internal/dictionary"
)

// Cache is the shared in-memory mapping from a normalized word to its Record.
// Entries never expire and are never removed while the process runs.
type Cache struct {
	items   *gocache.Cache
	changed chan struct{}
}

var _ dictionary.Cache = (*Cache)(nil)

// New creates an empty Cache.
func New() *Cache {
	return NewFrom(nil)
}

// NewFrom creates a Cache seeded with records, typically the result of Store.Load.
func NewFrom(records map[string]dictionary.Record) *Cache {
	items := make(map[string]gocache.Item, len(records))
	for word, record := range records {
		items[word] = gocache.Item{Object: record}
	}
	return &Cache{
		items:   gocache.NewFrom(gocache.NoExpiration, 0, items),
		changed: make(chan struct{}, 1),
	}
}

// Get returns the cached Record for word.
func (c *Cache) Get(word string) (dictionary.Record, bool) {
	value, ok := c.items.Get(word)
	if !ok {
		return dictionary.Record{}, false
	}
	return value.(dictionary.Record), true
}

// Put stores record under word. A concurrent Put for the same word wins last.
func (c *Cache) Put(word string, record dictionary.Record) {
	c.items.Set(word, record, gocache.NoExpiration)
	c.notify()
}

// Has reports whether word is cached.
func (c *Cache) Has(word string) bool {
	_, ok := c.items.Get(word)
	return ok
}

// Len returns the number of cached words.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

// Snapshot copies the current contents.
func (c *Cache) Snapshot() map[string]dictionary.Record {
	items := c.items.Items()
	records := make(map[string]dictionary.Record, len(items))
	for word, item := range items {
		records[word] = item.Object.(dictionary.Record)
	}
	return records
}

// Changed is signalled after a Put. Signals are coalesced, so a receiver may observe
// several Puts as one notification.
func (c *Cache) Changed() <-chan struct{} {
	return c.changed
}

func (c *Cache) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}
