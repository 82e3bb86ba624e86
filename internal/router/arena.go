package router

import (
	"panel-router/internal/obstacle"
	"panel-router/pkg/geometry"
)

// OpenSlot indexes one unit's open list.
type OpenSlot int32

// ClosedSlot indexes one unit's closed list.
type ClosedSlot int32

const (
	// NoParent is the parent of a route's start node.
	NoParent ClosedSlot = -1

	noSlot       OpenSlot = -1
	slotOccupied OpenSlot = -2
)

// node is a search node as it moves between the open list, the best slot and
// the closed list.
type node struct {
	pos    geometry.PointInt
	g, f   int
	parent ClosedSlot
}

// openList is a fixed-capacity pool of open nodes. link holds the next free
// slot for a released slot and slotOccupied for a live one. Slots at or past
// scanEnd have never been used and are handed out before the pool is full.
type openList struct {
	pos    []geometry.PointInt
	g, f   []int32
	parent []ClosedSlot
	link   []OpenSlot

	free    OpenSlot
	scanEnd int
	count   int
}

func newOpenList(capacity int) *openList {
	return &openList{
		pos:    make([]geometry.PointInt, capacity),
		g:      make([]int32, capacity),
		f:      make([]int32, capacity),
		parent: make([]ClosedSlot, capacity),
		link:   make([]OpenSlot, capacity),
		free:   noSlot,
	}
}

func (o *openList) reset() {
	o.free = noSlot
	o.scanEnd = 0
	o.count = 0
}

// insert claims a slot for n. It returns false when the pool is exhausted.
func (o *openList) insert(n node) (OpenSlot, bool) {
	var s OpenSlot
	switch {
	case o.free != noSlot:
		s = o.free
		o.free = o.link[s]
	case o.scanEnd < len(o.link):
		s = OpenSlot(o.scanEnd)
		o.scanEnd++
	default:
		return noSlot, false
	}
	o.pos[s] = n.pos
	o.g[s] = int32(n.g)
	o.f[s] = int32(n.f)
	o.parent[s] = n.parent
	o.link[s] = slotOccupied
	o.count++
	return s, true
}

// remove releases slot s to the free list and returns its node.
func (o *openList) remove(s OpenSlot) node {
	if o.link[s] != slotOccupied {
		panic("router: releasing a free open slot")
	}
	n := node{pos: o.pos[s], g: int(o.g[s]), f: int(o.f[s]), parent: o.parent[s]}
	o.link[s] = o.free
	o.free = s
	o.count--
	return n
}

// min returns the occupied slot with the lowest f, the lowest slot on ties.
func (o *openList) min() (OpenSlot, bool) {
	best := noSlot
	var bestF int32
	for i := 0; i < o.scanEnd; i++ {
		if o.link[i] != slotOccupied {
			continue
		}
		if best == noSlot || o.f[i] < bestF {
			best = OpenSlot(i)
			bestF = o.f[i]
		}
	}
	return best, best != noSlot
}

// closedList is an append-only list of expanded nodes.
type closedList struct {
	pos    []geometry.PointInt
	parent []ClosedSlot
}

func newClosedList(capacity int) *closedList {
	return &closedList{
		pos:    make([]geometry.PointInt, 0, capacity),
		parent: make([]ClosedSlot, 0, capacity),
	}
}

func (c *closedList) reset() {
	c.pos = c.pos[:0]
	c.parent = c.parent[:0]
}

func (c *closedList) size() int { return len(c.pos) }

func (c *closedList) full() bool { return len(c.pos) == cap(c.pos) }

func (c *closedList) push(pos geometry.PointInt, parent ClosedSlot) (ClosedSlot, bool) {
	if c.full() {
		return NoParent, false
	}
	c.pos = append(c.pos, pos)
	c.parent = append(c.parent, parent)
	return ClosedSlot(len(c.pos) - 1), true
}

func (c *closedList) at(s ClosedSlot) (geometry.PointInt, ClosedSlot) {
	return c.pos[s], c.parent[s]
}

// candidate is one neighbor of the best node being scored.
type candidate struct {
	node
	valid bool
}

// unitState is one unit's private sub-arena. Nothing in it is shared with
// another unit, so units of a batch run in parallel without locking.
type unitState struct {
	status Status
	start  geometry.PointInt
	target geometry.PointInt

	open   *openList
	closed *closedList
	// seen holds every position admitted to the open list during the
	// current route, which is the union of the open and closed lists.
	seen map[geometry.PointInt]struct{}

	best      node
	bestSlot  ClosedSlot
	neighbors [8]candidate

	hash *pointHash
	obs  *obstacle.Set
}

// Arena holds the search state of every unit in a batch. Sub-arenas are
// allocated on a unit's first search and kept across batches.
type Arena struct {
	openCap, closedCap int
	grid               gridSpec
	pointsPerChunk     int

	units []unitState
}

// NewArena creates an arena for up to batchSize units.
func NewArena(batchSize, openCap, closedCap int, grid gridSpec, pointsPerChunk int) *Arena {
	return &Arena{
		openCap:        openCap,
		closedCap:      closedCap,
		grid:           grid,
		pointsPerChunk: pointsPerChunk,
		units:          make([]unitState, 0, batchSize),
	}
}

// Reset prepares the arena for a new batch of n units. Committed points,
// obstacle sets and statuses from the previous batch are discarded.
func (a *Arena) Reset(n int) {
	if n > cap(a.units) {
		grown := make([]unitState, n)
		copy(grown, a.units[:cap(a.units)])
		a.units = grown
	}
	a.units = a.units[:n]
	for i := range a.units {
		u := &a.units[i]
		u.status = Skipped
		u.obs = nil
		if u.hash != nil {
			u.hash.reset()
		}
	}
}

// Len returns the number of units in the current batch.
func (a *Arena) Len() int { return len(a.units) }

// unit returns the sub-arena of slot i, allocating it on first use.
func (a *Arena) unit(i int) *unitState {
	u := &a.units[i]
	if u.open == nil {
		u.open = newOpenList(a.openCap)
		u.closed = newClosedList(a.closedCap)
		u.seen = make(map[geometry.PointInt]struct{})
		u.hash = newPointHash(&a.grid, a.pointsPerChunk)
	}
	return u
}

// Bytes estimates the memory held by allocated sub-arenas.
func (a *Arena) Bytes() int64 {
	const (
		openSlot   = 16 + 4 + 4 + 4 + 4
		closedSlot = 16 + 4
	)
	var total int64
	all := a.units[:cap(a.units)]
	for i := range all {
		u := &all[i]
		if u.open == nil {
			continue
		}
		total += int64(a.openCap)*openSlot + int64(a.closedCap)*closedSlot
		total += u.hash.bytes()
	}
	return total
}
