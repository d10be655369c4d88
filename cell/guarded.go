package cell

import "sync"

// Guarded serialises access to a Cell. Readers share the cell, writers get
// it exclusively. The cell itself takes no locks.
type Guarded struct {
	mu sync.RWMutex
	c  *Cell
}

func NewGuarded(c *Cell) *Guarded {
	return &Guarded{c: c}
}

// View runs fn with shared access. fn must not create or destroy records.
func (g *Guarded) View(fn func(*Cell) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.c)
}

// Update runs fn with exclusive access.
func (g *Guarded) Update(fn func(*Cell) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.c)
}
