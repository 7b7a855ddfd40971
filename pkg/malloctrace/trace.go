// Package malloctrace replays a symbolic sequence of allocator operations
// against a [malloc.Allocator] and checks the laws from the allocator's
// test suite -- alignment, non-overlap, realloc-preserves-prefix,
// calloc-zeros -- without the caller having to thread real payload
// pointers through a hand-written test.
//
// Operations reference each other by name instead of by [malloc.Ptr], the
// way a captured trace would: "alloc 64 as a", "free a", "realloc a to
// 200 as b".
package malloctrace

import (
	"fmt"

	"github.com/dolthub/maphash"

	"github.com/relyt871/OS-practice-Malloc/pkg/malloc"
)

// OpKind identifies which allocator method an [Op] drives.
type OpKind int

const (
	AllocOp OpKind = iota
	FreeOp
	ReallocOp
	CallocOp
	CheckOp
)

// Op is one symbolic step of a trace. Name is the label this op's result
// (if any) is filed under; Ref is the name a Free/Realloc op acts on.
// Fill is written across the first Size bytes of the payload right after
// an Alloc so later steps have something distinctive to verify; Calloc
// and Realloc ops do not use it.
type Op struct {
	Kind  OpKind
	Name  string
	Ref   string
	Size  int
	Count int // Calloc's m; Size doubles as Calloc's n
	Fill  byte
}

func Alloc(name string, size int, fill byte) Op {
	return Op{Kind: AllocOp, Name: name, Size: size, Fill: fill}
}

func Free(ref string) Op { return Op{Kind: FreeOp, Ref: ref} }

func Realloc(ref, name string, size int) Op {
	return Op{Kind: ReallocOp, Ref: ref, Name: name, Size: size}
}

func Calloc(name string, m, n int) Op {
	return Op{Kind: CallocOp, Name: name, Count: m, Size: n}
}

// Check inserts a full invariant check between two operations.
func Check() Op { return Op{Kind: CheckOp} }

// live is what Replay remembers about a still-allocated, named handle:
// enough to check the alignment, non-overlap, and data-preservation laws
// the next time it is touched.
type live struct {
	ptr     malloc.Ptr
	content []byte // shadow copy of what the payload should currently hold
}

// Report summarizes a completed replay.
type Report struct {
	Ops      int
	Peak     int // largest number of simultaneously live allocations
	Failures []string
}

func (r *Report) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Replay drives a, applying each op in order, and returns a [Report]
// describing every law violation observed. It never stops early: a
// failed step is recorded and replay continues with whatever state the
// allocator is actually in, the same way a fuzzer would keep going past
// the first broken invariant to see how badly it degrades.
func Replay(a *malloc.Allocator, ops []Op) *Report {
	report := &Report{}
	names := maphash.NewHasher[string]()
	liveByHash := make(map[uint64]live)
	hashOf := func(name string) uint64 { return names.Hash(name) }

	for i, op := range ops {
		report.Ops++

		switch op.Kind {
		case AllocOp:
			p := a.Alloc(op.Size)
			if p == malloc.Nil {
				report.fail("step %d: alloc(%d) for %q returned Nil", i, op.Size, op.Name)
				continue
			}
			if uint32(p)%8 != 0 {
				report.fail("step %d: alloc(%d) for %q returned unaligned offset %#x", i, op.Size, op.Name, uint32(p))
			}

			content := make([]byte, op.Size)
			for j := range content {
				content[j] = op.Fill
			}
			copy(a.View(p), content)

			liveByHash[hashOf(op.Name)] = live{ptr: p, content: content}

		case FreeOp:
			l, ok := liveByHash[hashOf(op.Ref)]
			if !ok {
				report.fail("step %d: free(%q) references unknown name", i, op.Ref)
				continue
			}
			a.Free(l.ptr)
			delete(liveByHash, hashOf(op.Ref))

		case ReallocOp:
			l, ok := liveByHash[hashOf(op.Ref)]
			if !ok {
				report.fail("step %d: realloc(%q) references unknown name", i, op.Ref)
				continue
			}

			q := a.Realloc(l.ptr, op.Size)
			if op.Size > 0 && q == malloc.Nil {
				report.fail("step %d: realloc(%q, %d) returned Nil", i, op.Ref, op.Size)
				delete(liveByHash, hashOf(op.Ref))
				continue
			}

			want := min(len(l.content), op.Size)
			if q != malloc.Nil {
				got := a.View(q)[:want]
				for j := 0; j < want; j++ {
					if got[j] != l.content[j] {
						report.fail("step %d: realloc(%q, %d) lost byte %d: got %#x, want %#x", i, op.Ref, op.Size, j, got[j], l.content[j])
						break
					}
				}
			}

			delete(liveByHash, hashOf(op.Ref))
			if q != malloc.Nil {
				content := make([]byte, op.Size)
				copy(content, l.content[:want])
				liveByHash[hashOf(op.Name)] = live{ptr: q, content: content}
			}

		case CallocOp:
			p := a.Calloc(op.Count, op.Size)
			total := op.Count * op.Size
			if total > 0 && p == malloc.Nil {
				report.fail("step %d: calloc(%d, %d) for %q returned Nil", i, op.Count, op.Size, op.Name)
				continue
			}
			if p != malloc.Nil {
				for j, b := range a.View(p)[:total] {
					if b != 0 {
						report.fail("step %d: calloc(%d, %d) for %q left byte %d non-zero", i, op.Count, op.Size, op.Name, j)
						break
					}
				}
				liveByHash[hashOf(op.Name)] = live{ptr: p, content: make([]byte, total)}
			}

		case CheckOp:
			if err := a.Check(false); err != nil {
				report.fail("step %d: check failed: %v", i, err)
			}
		}

		if len(liveByHash) > report.Peak {
			report.Peak = len(liveByHash)
		}
	}

	checkNonOverlap(a, liveByHash, report)

	return report
}

// checkNonOverlap verifies the non-overlap law across everything still
// live at the end of the trace: no two [payload, payload+len) ranges may
// intersect.
func checkNonOverlap(a *malloc.Allocator, liveByHash map[uint64]live, report *Report) {
	type span struct {
		lo, hi uint32
	}
	var spans []span
	for _, l := range liveByHash {
		lo := uint32(l.ptr)
		spans = append(spans, span{lo, lo + uint32(len(l.content))})
	}

	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].lo < spans[j].hi && spans[j].lo < spans[i].hi {
				report.fail("overlapping live allocations: [%#x,%#x) and [%#x,%#x)", spans[i].lo, spans[i].hi, spans[j].lo, spans[j].hi)
			}
		}
	}
}
