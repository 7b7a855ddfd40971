package malloc

import "github.com/relyt871/OS-practice-Malloc/internal/debug"

// Alloc allocates at least n bytes and returns a handle to them, or [Nil]
// if n is zero or the arena could not grow to satisfy the request. The
// returned memory is uninitialized.
func (a *Allocator) Alloc(n int) Ptr {
	defer a.guardReentry()()

	if n <= 0 {
		return Nil
	}

	asize := adjustSize(n)

	if bp, ok := a.findFit(asize); ok {
		a.build(bp, asize)
		debug.Log(nil, "alloc", "n=%d asize=%d -> %#x (fit)", n, asize, bp)
		return Ptr(bp)
	}

	grow := asize
	if hint := uint32(a.ChunkHint); hint > grow {
		grow = hint
	}

	bp, ok := a.extendHeap(grow)
	if !ok {
		return Nil
	}

	a.build(bp, asize)
	debug.Log(nil, "alloc", "n=%d asize=%d -> %#x (extend)", n, asize, bp)

	return Ptr(bp)
}

// Free releases a previously allocated handle back to the arena. Freeing
// [Nil] is a no-op. Freeing anything else is undefined behavior: the
// allocator does not detect double frees or use-after-free.
func (a *Allocator) Free(p Ptr) {
	defer a.guardReentry()()

	if p == Nil {
		return
	}

	bp := offset32(p)
	header := a.readHeader(bp)
	size := sizeOf(header)
	prevAlloc := isPrevAllocWord(header)

	a.writeHeader(bp, pack(size, false, prevAlloc))
	a.writeFooter(bp, pack(size, false, prevAlloc))
	a.coalesce(bp)

	debug.Log(nil, "free", "%#x size=%d", bp, size)
}

// Realloc resizes the allocation at p to n bytes, preserving the lesser
// of the old and new payload capacities' worth of leading bytes. p==nil
// behaves like Alloc(n); n==0 behaves like Free(p) and returns Nil.
//
// The copy length is derived from each block's own header-rounded
// capacity, not from any remembered "requested size" -- the allocator
// never stores one.
func (a *Allocator) Realloc(p Ptr, n int) Ptr {
	defer a.guardReentry()()

	if p == Nil {
		return a.Alloc(n)
	}
	if n == 0 {
		a.Free(p)
		return Nil
	}

	newP := a.Alloc(n)
	if newP == Nil {
		return Nil
	}

	oldBp, newBp := offset32(p), offset32(newP)
	cpy := a.payloadSize(oldBp)
	if newCap := a.payloadSize(newBp); newCap < cpy {
		cpy = newCap
	}

	buf := a.bytes()
	copy(buf[newBp:uint32(newBp)+cpy], buf[oldBp:uint32(oldBp)+cpy])

	a.Free(p)

	debug.Log(nil, "realloc", "%#x -> %#x n=%d copied=%d", oldBp, newBp, n, cpy)

	return newP
}

// Calloc allocates space for m*n bytes and zeroes it. Memory recycled
// from a free list may carry stale contents from a previous allocation,
// so Calloc always zeroes explicitly rather than relying on the heap
// provider's own zero-initialized backing array.
func (a *Allocator) Calloc(m, n int) Ptr {
	defer a.guardReentry()()

	if m < 0 || n < 0 {
		return Nil
	}

	total := m * n
	p := a.Alloc(total)
	if p == Nil {
		return Nil
	}

	clear(a.View(p)[:total])

	return p
}

// View returns the live, writable bytes backing p's allocation, sized to
// the block's full header-rounded capacity (which may exceed the size
// originally requested). It aliases the arena directly; callers must not
// retain it past a Free or Realloc of p.
func (a *Allocator) View(p Ptr) []byte {
	if p == Nil {
		return nil
	}

	bp := offset32(p)
	size := a.payloadSize(bp)

	return a.bytes()[uint32(bp) : uint32(bp)+size]
}
