package malloc

import "math/bits"

// sizeClassThresholds is the geometric size-class ladder: 18 classes,
// each holding free blocks up to its threshold, with the last class
// catching everything larger. The first numLinearClasses entries (32,
// 48) are irregular small classes; from 64 on the ladder strictly
// doubles, which lets classOf resolve those classes from the position
// of the size's highest set bit instead of a linear scan.
var sizeClassThresholds = [...]uint32{
	32, 48, 64, 128, 256, 512, 1024, 2048, 4096, 8192,
	16384, 32768, 65536, 131072, 262144, 524288, 1048576,
	1<<32 - 1,
}

const numSizeClasses = len(sizeClassThresholds)

// numLinearClasses is how many leading classes fall outside the
// power-of-two ladder and must be resolved by direct comparison.
const numLinearClasses = 2

// powerOfTwoBaseShift is the shift implied by the first power-of-two
// threshold (64 == 1<<6), derived via bits.TrailingZeros rather than
// hardcoded, so classOf stays correct if the ladder's base ever changes.
var powerOfTwoBaseShift = bits.TrailingZeros(uint(sizeClassThresholds[numLinearClasses]))

// classOf returns the smallest size class whose threshold is >= size, or
// the top class if none is. The first two classes are found by direct
// comparison; every class after that sits on a power-of-two ladder, so
// its index is recovered from bits.Len(size-1), the same "round up to
// the next power of two" trick used to size classes in a buddy allocator.
func classOf(size uint32) int {
	for i := 0; i < numLinearClasses; i++ {
		if size <= sizeClassThresholds[i] {
			return i
		}
	}

	base := sizeClassThresholds[numLinearClasses]
	if size <= base {
		return numLinearClasses
	}

	shift := bits.Len(uint(size-1)) - powerOfTwoBaseShift
	if class := numLinearClasses + shift; class < numSizeClasses-1 {
		return class
	}
	return numSizeClasses - 1
}

// insertFree pushes bp onto the head of its size class's free list (LIFO).
func (a *Allocator) insertFree(bp offset32) {
	class := classOf(a.sizeAt(bp))
	head := a.freeHead[class]

	a.setPred(bp, nilOffset)
	a.setSucc(bp, head)
	if !head.isNil() {
		a.setPred(head, bp)
	}
	a.freeHead[class] = bp
}

// unlinkFree removes bp from whichever position it occupies on its size
// class's free list. The caller guarantees bp currently sits on a list.
func (a *Allocator) unlinkFree(bp offset32) {
	class := classOf(a.sizeAt(bp))
	pred := a.getPred(bp)
	succ := a.getSucc(bp)

	if pred.isNil() {
		a.freeHead[class] = succ
	} else {
		a.setSucc(pred, succ)
	}

	if !succ.isNil() {
		a.setPred(succ, pred)
	}
}
