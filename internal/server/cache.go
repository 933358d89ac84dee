package server

import (
	"sync"

	"github.com/alnah/labnotes/internal/notes"
)

// pageCache holds rendered pages per note. Every invalidation bumps a
// generation so a render that started before a change is not stored.
type pageCache struct {
	mu    sync.RWMutex
	pages map[notes.NoteID][]byte
	gen   uint64
}

func newPageCache() *pageCache {
	return &pageCache{pages: make(map[notes.NoteID][]byte)}
}

// get returns the cached page of id and the current generation.
func (c *pageCache) get(id notes.NoteID) ([]byte, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.pages[id]
	return page, c.gen, ok
}

// put stores page unless the cache was invalidated since gen.
func (c *pageCache) put(id notes.NoteID, page []byte, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.pages[id] = page
	}
}

// invalidate drops the page of id.
func (c *pageCache) invalidate(id notes.NoteID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, id)
	c.gen++
}

// reset drops every page.
func (c *pageCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pages)
	c.gen++
}

func (c *pageCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
