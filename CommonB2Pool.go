package box2d

/// Index used by records to refer to each other inside the world.
const B2_nullIndex int32 = -1

/// A generation checked object pool. Records live behind stable pointers so
/// growing the pool never moves an object that is being iterated. A freed slot
/// bumps its revision, so any handle minted before the free reads back as gone.
type b2Pool[T any] struct {
	items     []*T
	revisions []uint32
	alive     []bool
	free      []int32
	count     int
}

/// Allocates a zeroed record and returns its index and revision.
func (p *b2Pool[T]) alloc() (int32, uint32) {
	var index int32
	if n := len(p.free); n > 0 {
		index = p.free[n-1]
		p.free = p.free[:n-1]
		*p.items[index] = *new(T)
	} else {
		index = int32(len(p.items))
		p.items = append(p.items, new(T))
		p.revisions = append(p.revisions, 0)
		p.alive = append(p.alive, false)
	}
	p.alive[index] = true
	p.count++
	return index, p.revisions[index]
}

func (p *b2Pool[T]) release(index int32) {
	B2Assert(p.valid(index))
	p.alive[index] = false
	p.revisions[index]++
	p.free = append(p.free, index)
	p.count--
}

func (p *b2Pool[T]) valid(index int32) bool {
	return index >= 0 && int(index) < len(p.items) && p.alive[index]
}

/// Reports whether (index, revision) still names a live record.
func (p *b2Pool[T]) check(index int32, revision uint32) bool {
	return p.valid(index) && p.revisions[index] == revision
}

func (p *b2Pool[T]) get(index int32) *T {
	B2Assert(p.valid(index))
	return p.items[index]
}

/// Returns the record for a handle, or nil when the handle is stale.
func (p *b2Pool[T]) lookup(index int32, revision uint32) *T {
	if !p.check(index, revision) {
		return nil
	}
	return p.items[index]
}

func (p *b2Pool[T]) revision(index int32) uint32 {
	return p.revisions[index]
}

/// Calls fn for every live record in index order. Records allocated by fn
/// are visited when they land past the cursor.
func (p *b2Pool[T]) each(fn func(index int32, item *T) bool) {
	for i := 0; i < len(p.items); i++ {
		if !p.alive[i] {
			continue
		}
		if !fn(int32(i), p.items[i]) {
			return
		}
	}
}

func (p *b2Pool[T]) capacity() int {
	return len(p.items)
}

/// Frees every record. Revisions survive so handles minted before the reset
/// stay stale when their slots are reused.
func (p *b2Pool[T]) reset() {
	p.free = p.free[:0]
	for i := len(p.items) - 1; i >= 0; i-- {
		if p.alive[i] {
			p.alive[i] = false
			p.revisions[i]++
		}
		*p.items[i] = *new(T)
		p.free = append(p.free, int32(i))
	}
	p.count = 0
}
