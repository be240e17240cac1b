package content

import "sync"

// Cache memoizes resolved pages. Every Invalidate bumps the page's
// generation; a resolve that started before the bump completes against a
// stale generation and is discarded instead of overwriting newer data.
type Cache struct {
	mu       sync.Mutex
	resolver *Resolver
	pages    map[string][]ResolvedSection
	gen      map[string]uint64
}

// NewCache wraps a resolver with a per-page cache.
func NewCache(resolver *Resolver) *Cache {
	return &Cache{
		resolver: resolver,
		pages:    map[string][]ResolvedSection{},
		gen:      map[string]uint64{},
	}
}

// Get returns the cached sections of a page, resolving on a miss.
func (c *Cache) Get(pageID string) ([]ResolvedSection, error) {
	c.mu.Lock()
	if sections, ok := c.pages[pageID]; ok {
		c.mu.Unlock()
		return sections, nil
	}
	gen := c.gen[pageID]
	c.mu.Unlock()

	sections, err := c.resolver.Resolve(pageID)
	if err != nil {
		return nil, err
	}
	c.complete(pageID, gen, sections)
	return sections, nil
}

// Invalidate drops the cached page and invalidates any resolve in flight.
func (c *Cache) Invalidate(pageID string) {
	c.mu.Lock()
	delete(c.pages, pageID)
	c.gen[pageID]++
	c.mu.Unlock()
}

// begin records the generation a resolve starts against.
func (c *Cache) begin(pageID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[pageID]
}

// complete stores a resolve result unless the page was invalidated after
// the resolve began.
func (c *Cache) complete(pageID string, gen uint64, sections []ResolvedSection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[pageID] != gen {
		return
	}
	c.pages[pageID] = sections
}
