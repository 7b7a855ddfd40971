package malloc

import "github.com/relyt871/OS-practice-Malloc/internal/debug"

// coalesce absorbs bp's free physical neighbors and reinserts the
// surviving block into its free list. The caller must have already
// marked bp free with a correct header and footer (its own prev-alloc
// bit intact) -- coalesce only ever widens bp, it never clears its
// allocated bit for it.
//
// Precisely one of four cases applies, keyed on whether the previous and
// next physical blocks are currently allocated:
//
//	prev alloc, next alloc: no absorption, but next's cached prev-alloc
//	  bit is stale (it still says bp is allocated) and must be cleared.
//	prev alloc, next free:  absorb next; bp's own prev-alloc bit is
//	  unaffected since bp's predecessor hasn't changed.
//	prev free, next alloc:  absorb prev; the merged block is prev, and
//	  next's cached prev-alloc bit is stale and must be cleared.
//	prev free, next free:   absorb both; the merged block is prev.
//
// In the free-neighbor cases nothing downstream of the absorbed free
// block needs a prev-alloc fixup: that neighbor's own successor already
// had prev-alloc=false, because the absorbed block was already free
// before this call.
func (a *Allocator) coalesce(bp offset32) offset32 {
	prevAlloc := a.isPrevAllocAt(bp)
	size := a.sizeAt(bp)
	next := a.nextBlock(bp)
	nextAlloc := a.isAllocAt(next)

	switch {
	case prevAlloc && nextAlloc:
		a.setPrevAlloc(next, false)

	case prevAlloc && !nextAlloc:
		a.unlinkFree(next)
		size += a.sizeAt(next)
		a.writeHeader(bp, pack(size, false, prevAlloc))
		a.writeFooter(bp, pack(size, false, prevAlloc))

	case !prevAlloc && nextAlloc:
		prev := a.prevBlock(bp)
		a.unlinkFree(prev)
		size += a.sizeAt(prev)
		prevPrevAlloc := a.isPrevAllocAt(prev)
		a.writeHeader(prev, pack(size, false, prevPrevAlloc))
		a.writeFooter(prev, pack(size, false, prevPrevAlloc))
		a.setPrevAlloc(next, false)
		bp = prev

	default: // !prevAlloc && !nextAlloc
		prev := a.prevBlock(bp)
		a.unlinkFree(prev)
		a.unlinkFree(next)
		size += a.sizeAt(prev) + a.sizeAt(next)
		prevPrevAlloc := a.isPrevAllocAt(prev)
		a.writeHeader(prev, pack(size, false, prevPrevAlloc))
		a.writeFooter(prev, pack(size, false, prevPrevAlloc))
		bp = prev
	}

	a.insertFree(bp)
	debug.Log(nil, "coalesce", "%#x size=%d", bp, size)

	return bp
}
