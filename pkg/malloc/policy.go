package malloc

import "github.com/relyt871/OS-practice-Malloc/internal/debug"

const (
	// defaultBestFitScanLimit is K in the bounded best-fit search: the
	// search stops as soon as this many fitting candidates have been
	// examined across all scanned lists, returning the smallest of them.
	defaultBestFitScanLimit = 6

	// defaultUnfitBudget is the secondary stopping condition: once a fit
	// has been found, the search gives up after this many additional
	// non-fitting inspections rather than walking every remaining list
	// to the end.
	defaultUnfitBudget = 28

	// defaultChunkHint is the minimum amount the allocator extends the
	// heap by on a miss (larger requests extend by their own size), to
	// amortize the cost of future extends. It doubles as the pre-extend
	// size Init performs right after laying down the sentinels.
	defaultChunkHint = 4096
)

// adjustSize computes the block size the allocator must carve for a
// request of n bytes: room for the header word, rounded up to the
// double-word boundary, never smaller than the minimum block.
func adjustSize(n int) uint32 {
	need := uint32(n) + wordSize
	asize := alignUp8(need)
	if asize < minBlockSize {
		asize = minBlockSize
	}
	return asize
}

// findFit performs a bounded best-of-K search: starting from asize's own
// size class, it walks free lists in
// increasing order, tracking the smallest block seen that fits, and
// stops as soon as either K fitting candidates have been examined or
// (once at least one fit exists) unfitBudget further non-fitting blocks
// have been inspected. If every list is exhausted first, whatever best
// candidate was found (possibly none) is returned.
func (a *Allocator) findFit(asize uint32) (offset32, bool) {
	var best offset32
	bestSize := ^uint32(0)
	fits, unfit := 0, 0

	for class := classOf(asize); class < numSizeClasses; class++ {
		for bp := a.freeHead[class]; !bp.isNil(); bp = a.getSucc(bp) {
			size := a.sizeAt(bp)
			if size < asize {
				if fits > 0 {
					unfit++
					if unfit >= a.UnfitBudget {
						return best, true
					}
				}
				continue
			}

			fits++
			if size < bestSize {
				best, bestSize = bp, size
			}
			if fits >= a.BestFitScanLimit {
				return best, true
			}
		}
	}

	return best, fits > 0
}

// build consumes a free block bp to satisfy a request of size asize
// (already adjusted by adjustSize): unlink it from its free list, then
// either split off a remainder that is large enough to stand on its own,
// or hand over the whole block if the leftover would be too small to
// hold a valid block.
//
// The split threshold is strict '>', not '>=': a remainder exactly equal
// to minBlockSize would still be a legal block, but carving one on
// purpose serves no one and the '>' form is what the source material
// uses, so the margin is kept here too.
func (a *Allocator) build(bp offset32, asize uint32) {
	a.unlinkFree(bp)

	blockSize := a.sizeAt(bp)
	prevAlloc := a.isPrevAllocAt(bp)

	if blockSize-asize > minBlockSize {
		a.writeHeader(bp, pack(asize, true, prevAlloc))

		remainder := a.nextBlock(bp)
		remSize := blockSize - asize
		a.writeHeader(remainder, pack(remSize, false, true))
		a.writeFooter(remainder, pack(remSize, false, true))
		a.coalesce(remainder)

		debug.Log(nil, "split", "%#x asize=%d remainder=%#x size=%d", bp, asize, remainder, remSize)
	} else {
		a.writeHeader(bp, pack(blockSize, true, prevAlloc))
		a.setPrevAlloc(a.nextBlock(bp), true)
	}
}
