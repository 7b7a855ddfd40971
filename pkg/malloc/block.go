package malloc

import (
	"encoding/binary"
	"math/bits"

	"github.com/relyt871/OS-practice-Malloc/internal/debug"
)

const (
	// wordSize is the width of a header/footer word and of a free-list link.
	wordSize = 4
	// dwordSize is the double-word alignment boundary every block size
	// and every payload address must respect.
	dwordSize = 8
	// minBlockSize is the smallest block the allocator ever hands out or
	// carves during a split: two double-words, enough to hold a header,
	// a footer, and a pred/succ pair.
	minBlockSize = 2 * dwordSize

	allocBit     uint32 = 0x1
	prevAllocBit uint32 = 0x2
	sizeMask     uint32 = ^uint32(0x7)
)

// pack assembles a header/footer word from a size and its two flag bits.
// size must already be a multiple of 8.
func pack(size uint32, allocated, prevAllocated bool) uint32 {
	w := size & sizeMask
	if allocated {
		w |= allocBit
	}
	if prevAllocated {
		w |= prevAllocBit
	}
	return w
}

func sizeOf(word uint32) uint32     { return word & sizeMask }
func isAllocWord(word uint32) bool  { return word&allocBit != 0 }
func isPrevAllocWord(word uint32) bool { return word&prevAllocBit != 0 }

// dwordShift is the power-of-two shift dwordSize implies, derived via
// bits.TrailingZeros instead of hardcoded, so alignUp8 stays correct if
// the double-word boundary ever changes.
var dwordShift = bits.TrailingZeros(uint(dwordSize))

// alignUp8 rounds n up to the next multiple of 8.
func alignUp8(n uint32) uint32 {
	mask := uint32(1)<<dwordShift - 1
	return (n + mask) &^ mask
}

// readWord/writeWord are the sole points where the package reads or
// writes boundary tags and free-list links in the arena's backing array;
// the only other direct uses of the array are the payload copy in
// Realloc and the payload slice View returns.
func (a *Allocator) readWord(off offset32) uint32 {
	return binary.LittleEndian.Uint32(a.bytes()[off:])
}

func (a *Allocator) writeWord(off offset32, v uint32) {
	binary.LittleEndian.PutUint32(a.bytes()[off:], v)
}

// headerOff/footerOff compute the byte offset of a block's boundary tags
// from its payload offset: header(bp) = bp-4, footer(bp) = bp+size-8.
func (a *Allocator) headerOff(bp offset32) offset32 { return bp - wordSize }

func (a *Allocator) footerOff(bp offset32) offset32 {
	return bp + offset32(a.sizeAt(bp)) - dwordSize
}

func (a *Allocator) readHeader(bp offset32) uint32 { return a.readWord(a.headerOff(bp)) }
func (a *Allocator) writeHeader(bp offset32, v uint32) { a.writeWord(a.headerOff(bp), v) }

// readFooter/writeFooter must never be called on an allocated block: an
// allocated block's last word is payload, not a boundary tag.
func (a *Allocator) readFooter(bp offset32) uint32 {
	debug.Assert(!a.isAllocAt(bp), "readFooter called on allocated block %#x", bp)
	return a.readWord(a.footerOff(bp))
}

func (a *Allocator) writeFooter(bp offset32, v uint32) {
	debug.Assert(!isAllocWord(v), "writeFooter called with an allocated tag for block %#x", bp)
	a.writeWord(a.footerOff(bp), v)
}

func (a *Allocator) sizeAt(bp offset32) uint32        { return sizeOf(a.readHeader(bp)) }
func (a *Allocator) isAllocAt(bp offset32) bool       { return isAllocWord(a.readHeader(bp)) }
func (a *Allocator) isPrevAllocAt(bp offset32) bool   { return isPrevAllocWord(a.readHeader(bp)) }

// payloadSize returns the number of usable bytes at bp, i.e. the block
// size minus the one header word an allocated block still pays for. This
// is the quantity Realloc copies by -- never the caller's originally
// requested size, which the allocator does not remember past the
// rounding in adjustSize.
func (a *Allocator) payloadSize(bp offset32) uint32 {
	return a.sizeAt(bp) - wordSize
}

// nextBlock returns the payload offset of the block physically following bp.
func (a *Allocator) nextBlock(bp offset32) offset32 {
	return bp + offset32(a.sizeAt(bp))
}

// prevBlock returns the payload offset of the block physically preceding
// bp, read off its boundary-tag footer. Callers must only call this when
// the previous block is known to be free (isPrevAllocAt(bp) == false);
// an allocated predecessor has no valid footer.
func (a *Allocator) prevBlock(bp offset32) offset32 {
	pf := a.readWord(bp - dwordSize)
	return bp - offset32(sizeOf(pf))
}

// setPrevAlloc rewrites bp's header with a new prev-allocated bit,
// preserving its size and its own allocated bit. This is how a block's
// predecessor communicates a change in its own allocation state without
// the predecessor needing a footer.
func (a *Allocator) setPrevAlloc(bp offset32, prevAllocated bool) {
	h := a.readHeader(bp)
	a.writeHeader(bp, pack(sizeOf(h), isAllocWord(h), prevAllocated))
}
