package malloc

// offset32 is a 32-bit unsigned offset from the start of the arena's
// backing array. Free-list links (pred/succ) and the public [Ptr] handle
// are both expressed as offset32: encoding a link this way, instead of as
// a native pointer, keeps each link inside the 8-byte minimum block
// payload even on hosts where a real pointer would need 8 bytes. Zero
// means "no block" -- safe because the prologue sentinel (see Init in malloc.go)
// always occupies the first bytes of the arena, so no real block ever has
// payload offset 0.
//
// This file is the isolated boundary between the offset encoding and the
// rest of the package: everywhere else reasons about blocks through
// offset32 values and the accessors below, never through raw arena
// indices.
type offset32 uint32

const nilOffset offset32 = 0

func (o offset32) isNil() bool { return o == nilOffset }

// getPred reads the predecessor link stored in a free block's payload.
func (a *Allocator) getPred(bp offset32) offset32 {
	return offset32(a.readWord(bp))
}

// setPred writes the predecessor link stored in a free block's payload.
func (a *Allocator) setPred(bp, pred offset32) {
	a.writeWord(bp, uint32(pred))
}

// getSucc reads the successor link stored in a free block's payload.
func (a *Allocator) getSucc(bp offset32) offset32 {
	return offset32(a.readWord(bp + wordSize))
}

// setSucc writes the successor link stored in a free block's payload.
func (a *Allocator) setSucc(bp, succ offset32) {
	a.writeWord(bp+wordSize, uint32(succ))
}

// Ptr is an opaque handle to a live allocation, as returned by [Allocator.Alloc],
// [Allocator.Calloc], and [Allocator.Realloc]. The zero value, [Nil], never
// identifies a live allocation.
type Ptr uint32

// Nil is the handle returned in place of a pointer for defined nil-cases:
// a zero-size request, or a successful free/realloc-to-zero.
const Nil Ptr = 0
