package malloc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// threeAdjacent allocates three same-sized blocks back to back and
// returns their payload offsets in arena order.
func threeAdjacent(a *Allocator, size int) (offset32, offset32, offset32) {
	p1 := a.Alloc(size)
	p2 := a.Alloc(size)
	p3 := a.Alloc(size)
	return offset32(p1), offset32(p2), offset32(p3)
}

func TestCoalesceNeitherNeighborFree(t *testing.T) {
	Convey("Given three adjacent allocated blocks", t, func() {
		a := newTestAllocator(t)
		_, p2, _ := threeAdjacent(a, 24)

		Convey("When the middle block is freed", func() {
			a.Free(Ptr(p2))

			Convey("Then it does not merge with either neighbor", func() {
				So(a.isAllocAt(p2), ShouldBeFalse)
				So(a.Check(false), ShouldBeNil)
			})
		})
	})
}

func TestCoalesceNextFree(t *testing.T) {
	Convey("Given three adjacent allocated blocks", t, func() {
		a := newTestAllocator(t)
		_, p2, p3 := threeAdjacent(a, 24)

		Convey("When the last block is freed first, then the middle one", func() {
			a.Free(Ptr(p3))
			want := a.sizeAt(p2) + a.sizeAt(p3)
			a.Free(Ptr(p2))

			Convey("Then the middle and last blocks merge into one free span", func() {
				So(a.sizeAt(p2), ShouldEqual, want)
				So(a.Check(false), ShouldBeNil)
			})
		})
	})
}

func TestCoalescePrevFree(t *testing.T) {
	Convey("Given three adjacent allocated blocks", t, func() {
		a := newTestAllocator(t)
		p1, p2, _ := threeAdjacent(a, 24)

		Convey("When the first block is freed first, then the middle one", func() {
			a.Free(Ptr(p1))
			a.Free(Ptr(p2))

			Convey("Then the surviving free block starts at the first block's offset", func() {
				So(a.isAllocAt(p1), ShouldBeFalse)
				So(a.Check(false), ShouldBeNil)
			})
		})
	})
}

func TestCoalesceBothNeighborsFree(t *testing.T) {
	Convey("Given three adjacent allocated blocks", t, func() {
		a := newTestAllocator(t)
		p1, p2, p3 := threeAdjacent(a, 24)

		Convey("When both neighbors are freed before the middle block", func() {
			a.Free(Ptr(p1))
			a.Free(Ptr(p3))
			a.Free(Ptr(p2))

			Convey("Then all three merge into a single free block large enough for a 72-byte request", func() {
				So(a.isAllocAt(p1), ShouldBeFalse)
				So(a.sizeAt(p1) >= adjustSize(72), ShouldBeTrue)
				So(a.Check(false), ShouldBeNil)
			})
		})
	})
}

func TestCoalesceThenReallocLargeBlockReusesSlot(t *testing.T) {
	Convey("Given the three-way coalesce scenario from the end-to-end spec", t, func() {
		a := newTestAllocator(t)
		p1 := a.Alloc(24)
		p2 := a.Alloc(24)
		p3 := a.Alloc(24)

		a.Free(p1)
		a.Free(p3)
		a.Free(p2)

		Convey("When a block big enough to need the full merged span is requested", func() {
			p4 := a.Alloc(72)

			Convey("Then it reuses the same offset the coalesce produced", func() {
				So(p4, ShouldEqual, p1)
				So(a.Check(false), ShouldBeNil)
			})
		})

		Convey("When a small block is allocated afterward", func() {
			a.Alloc(72)
			p5 := a.Alloc(8)

			Convey("Then it succeeds and every prev-alloc bit stays consistent", func() {
				So(p5, ShouldNotEqual, Nil)
				So(a.Check(false), ShouldBeNil)
			})
		})
	})
}
