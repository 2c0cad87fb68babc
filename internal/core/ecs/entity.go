package ecs

// Entity encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
type Entity uint64

func NewEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

func (e Entity) Index() uint32      { return uint32(e) }
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// EntityPool manages entity allocation with generational indices and a free list.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 1024),
		alive:       make([]bool, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

// Create returns a recycled index (generation already bumped by Destroy) or
// a fresh index at generation 0.
func (p *EntityPool) Create() Entity {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.alive[idx] = true
		return NewEntity(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	p.alive = append(p.alive, true)
	return NewEntity(idx, 0)
}

func (p *EntityPool) Alive(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.alive[idx] && p.generations[idx] == e.Generation()
}

// Destroy frees the slot behind e. Stale handles are ignored; the return
// value reports whether anything was destroyed.
func (p *EntityPool) Destroy(e Entity) bool {
	if !p.Alive(e) {
		return false
	}
	idx := e.Index()
	p.alive[idx] = false
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.live }

// Cap returns the number of index slots ever allocated.
func (p *EntityPool) Cap() int { return len(p.generations) }
