package malloc

import (
	"fmt"

	"github.com/relyt871/OS-practice-Malloc/internal/debug"
)

// Check walks the arena and every free list and verifies every
// consistency invariant the allocator maintains. It returns nil if the
// heap is consistent. Unless [Allocator.Strict] is set, violations are
// collected into a single [CheckError] rather than stopping at the
// first one; in strict mode, the first violation panics immediately.
//
// verbose additionally logs one line per visited block through the
// internal/debug logger (a no-op unless built with the debug tag).
func (a *Allocator) Check(verbose bool) error {
	var problems []string

	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if a.Strict {
			panic(fmt.Errorf("%w: %s", ErrInvariant, msg))
		}
		problems = append(problems, msg)
	}

	freeInArena := make(map[offset32]bool)
	var totalSize uint32
	prevAlloc := true // the prologue is always allocated

	for bp := a.first; ; {
		header := a.readHeader(bp)
		size := sizeOf(header)
		if size == 0 {
			break // epilogue
		}

		if size%dwordSize != 0 || size < minBlockSize {
			report("block %#x has invalid size %d", bp, size)
		}
		if uint32(bp)%dwordSize != 0 {
			report("block %#x payload is not 8-aligned", bp)
		}
		if isPrevAllocWord(header) != prevAlloc {
			report("block %#x prev-alloc bit is %v, want %v", bp, isPrevAllocWord(header), prevAlloc)
		}

		allocated := isAllocWord(header)
		if !allocated {
			footer := a.readFooter(bp)
			if sizeOf(footer) != size || isAllocWord(footer) {
				report("block %#x header/footer mismatch: header=%#x footer=%#x", bp, header, footer)
			}
			if !prevAlloc {
				report("block %#x is free and adjacent to a free predecessor", bp)
			}
			freeInArena[bp] = true
		}

		if verbose {
			debug.Log(nil, "check", "%v", debug.Dict(bp, "size", size, "alloc", allocated, "prevAlloc", prevAlloc))
		}

		totalSize += size
		prevAlloc = allocated
		bp = a.nextBlock(bp)
	}

	if got, want := totalSize, uint32(a.heapEnd)-uint32(a.headerOff(a.first)); got != want {
		report("block sizes sum to %d, want %d (heapEnd minus first block's header offset)", got, want)
	}

	freeInLists := make(map[offset32]bool)
	for class := 0; class < numSizeClasses; class++ {
		for bp := a.freeHead[class]; !bp.isNil(); bp = a.getSucc(bp) {
			if got := classOf(a.sizeAt(bp)); got != class {
				report("block %#x sits in class %d, belongs in %d", bp, class, got)
			}

			if succ := a.getSucc(bp); !succ.isNil() && a.getPred(succ) != bp {
				report("block %#x -> succ %#x does not point back", bp, succ)
			}
			if pred := a.getPred(bp); !pred.isNil() && a.getSucc(pred) != bp {
				report("block %#x -> pred %#x does not point back", bp, pred)
			}

			if freeInLists[bp] {
				report("block %#x appears twice across free lists", bp)
			}
			freeInLists[bp] = true
		}
	}

	for bp := range freeInArena {
		if !freeInLists[bp] {
			report("free block %#x in arena is not on any free list", bp)
		}
	}
	for bp := range freeInLists {
		if !freeInArena[bp] {
			report("block %#x on a free list is not a free block in the arena", bp)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &CheckError{Problems: problems}
}
