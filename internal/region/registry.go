// Package region tracks fold regions and their open/closed state.
// Regions are supplied by external collaborators (an LSP server, the
// caller); this package never computes fold boundaries itself.
package region

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Region is a foldable line range. StartLine stays visible as the preview
// line; lines StartLine+1 through EndLine are hidden while the region is
// closed. Lines are 0-indexed, both bounds inclusive.
type Region struct {
	ID        uuid.UUID
	StartLine uint32
	EndLine   uint32
	Kind      string // LSP folding range kind ("comment", "imports", ...), may be empty
	Open      bool
}

// Hidden returns the number of lines the region hides when closed.
func (r Region) Hidden() int {
	return int(r.EndLine - r.StartLine)
}

// Contains returns true if line falls inside the region.
func (r Region) Contains(line uint32) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// Registry holds the fold regions for one document.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	regions []Region
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a region and returns its assigned ID. Inverted ranges are
// rejected by returning uuid.Nil; degenerate single-line ranges are allowed
// but hide nothing.
func (g *Registry) Add(startLine, endLine uint32, kind string) uuid.UUID {
	if endLine < startLine {
		return uuid.Nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r := Region{
		ID:        uuid.New(),
		StartLine: startLine,
		EndLine:   endLine,
		Kind:      kind,
		Open:      true,
	}
	g.regions = append(g.regions, r)
	sort.SliceStable(g.regions, func(i, j int) bool {
		return g.regions[i].StartLine < g.regions[j].StartLine
	})
	return r.ID
}

// Replace swaps in a whole new region set, preserving open state for regions
// whose line range survives. Used when an LSP server re-reports ranges.
func (g *Registry) Replace(regions []Region) {
	g.mu.Lock()
	defer g.mu.Unlock()

	open := make(map[[2]uint32]bool, len(g.regions))
	for _, r := range g.regions {
		open[[2]uint32{r.StartLine, r.EndLine}] = r.Open
	}

	next := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.EndLine < r.StartLine {
			continue
		}
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if state, ok := open[[2]uint32{r.StartLine, r.EndLine}]; ok {
			r.Open = state
		} else {
			r.Open = true
		}
		next = append(next, r)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].StartLine < next[j].StartLine
	})
	g.regions = next
}

// Toggle flips the open state of the innermost region containing line.
// Returns the toggled region and true, or false if no region contains line.
func (g *Registry) Toggle(line uint32) (Region, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.innermostAt(line)
	if idx < 0 {
		return Region{}, false
	}
	g.regions[idx].Open = !g.regions[idx].Open
	return g.regions[idx], true
}

// SetOpen sets the open state of the region with the given ID.
func (g *Registry) SetOpen(id uuid.UUID, open bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.regions {
		if g.regions[i].ID == id {
			g.regions[i].Open = open
			return true
		}
	}
	return false
}

// RegionAt returns the innermost region containing line.
func (g *Registry) RegionAt(line uint32) (Region, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx := g.innermostAt(line)
	if idx < 0 {
		return Region{}, false
	}
	return g.regions[idx], true
}

// ClosedAt returns the closed region whose preview replaces line, if any.
// Only a region's start line carries the preview; lines strictly inside a
// closed region are simply hidden.
func (g *Registry) ClosedAt(line uint32) (Region, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.regions {
		if !r.Open && r.StartLine == line {
			return r, true
		}
	}
	return Region{}, false
}

// Hidden returns true if line is swallowed by some closed region (it is
// inside the region but not its preview line).
func (g *Registry) Hidden(line uint32) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.regions {
		if !r.Open && line > r.StartLine && line <= r.EndLine {
			return true
		}
	}
	return false
}

// Regions returns a copy of all regions in start-line order.
func (g *Registry) Regions() []Region {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Region, len(g.regions))
	copy(out, g.regions)
	return out
}

// Len returns the number of registered regions.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.regions)
}

// innermostAt returns the index of the narrowest region containing line,
// or -1. Caller holds the lock.
func (g *Registry) innermostAt(line uint32) int {
	best := -1
	var bestSpan uint32
	for i, r := range g.regions {
		if !r.Contains(line) {
			continue
		}
		span := r.EndLine - r.StartLine
		if best < 0 || span < bestSpan {
			best = i
			bestSpan = span
		}
	}
	return best
}
