//go:build go1.22

// Package malloc implements a single-threaded dynamic storage allocator
// over one contiguous, monotonically growable arena, in the style of a
// CS:APP "malloc lab": boundary-tagged blocks, a previous-allocated bit
// that lets allocated blocks skip their footer, and a segregated family
// of explicit doubly linked free lists searched with a bounded best-fit.
//
// # Key Concepts
//
// Arena: the single contiguous byte region the allocator manages. It is
// obtained from a [HeapProvider] and only ever grows.
//
// Block: a contiguous span of the arena bounded by boundary tags (a
// header word and, for free blocks only, a footer word). Every block is
// either allocated or sits on exactly one free list, selected by its
// size class.
//
// Ptr: an opaque handle to a live allocation. It is a 4-byte offset from
// the start of the arena's backing array rather than a Go pointer, which
// mirrors the classic malloc-lab trick of keeping free-list links inside
// the minimum block payload even on hosts where a native pointer would
// not fit. See addr.go for the isolated encode/decode boundary.
//
// # Design
//
// The arena is modeled as a byte slice plus an index, not a graph of Go
// pointers: ownership is flat, the arena exclusively owns all bytes, and
// [Ptr] values are views into it. This keeps the allocator free of
// unsafe.Pointer entirely -- the "unsafe" part of this design is the
// offset encoding invariant (addr.go), not memory safety.
//
// # Usage
//
//	a := malloc.New()
//	if err := a.Init(); err != nil {
//		// out of arena space before a single byte was allocated
//	}
//
//	p := a.Alloc(64)
//	copy(a.View(p), someBytes)
//	a.Free(p)
//
// # Thread Safety
//
// Allocator is not safe for concurrent use. Callers that need concurrent
// access must serialize calls with their own mutex; the allocator itself
// never blocks and never yields mid-operation.
package malloc
