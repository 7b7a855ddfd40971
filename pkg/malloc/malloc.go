package malloc

import "github.com/relyt871/OS-practice-Malloc/internal/debug"

// Allocator is the allocator's entire process-wide state, carried as an
// ordinary Go value instead of package globals so that a process can run
// more than one independent heap: the arena, the epilogue's position, and
// the segregated free-list heads.
//
// A zero Allocator is not ready to use; construct one with [New] and
// call [Allocator.Init] before any other method.
type Allocator struct {
	heap    HeapProvider
	heapEnd offset32 // offset of the epilogue header
	first   offset32 // payload offset of the first real (non-sentinel) block

	freeHead [numSizeClasses]offset32

	// ChunkHint is the minimum number of bytes a miss extends the heap by
	// (a larger request extends by its own block size instead), and how
	// much Init pre-extends by right after laying down the sentinels.
	// Defaults to 4 KiB.
	ChunkHint int

	// BestFitScanLimit is K in the bounded best-fit search: the search
	// stops once this many fitting candidates have been examined.
	// Defaults to 6.
	BestFitScanLimit int

	// UnfitBudget is the secondary search cutoff: once a fit has been
	// found, the search gives up after this many additional non-fitting
	// inspections. Defaults to 28.
	UnfitBudget int

	// Strict makes Check's violations fatal (it panics instead of
	// returning a [CheckError]), for debug and test builds that want to
	// fail fast on the first corrupted invariant rather than collect a
	// full report.
	Strict bool

	// activeGoroutine backs guardReentry (debug builds only).
	activeGoroutine int64
}

// Option configures an Allocator constructed by [New].
type Option func(*Allocator)

// WithHeapProvider overrides the default in-process heap provider, e.g.
// with one backed by a real mmap region. Must be supplied before Init is
// called.
func WithHeapProvider(h HeapProvider) Option {
	return func(a *Allocator) { a.heap = h }
}

// WithMaxHeapSize bounds the default heap provider's capacity. Ignored if
// WithHeapProvider is also given.
func WithMaxHeapSize(n int) Option {
	return func(a *Allocator) {
		if _, isDefault := a.heap.(*sliceHeap); a.heap == nil || isDefault {
			a.heap = newSliceHeap(n)
		}
	}
}

// WithChunkHint overrides [Allocator.ChunkHint].
func WithChunkHint(n int) Option {
	return func(a *Allocator) { a.ChunkHint = n }
}

// WithBestFitScanLimit overrides [Allocator.BestFitScanLimit].
func WithBestFitScanLimit(n int) Option {
	return func(a *Allocator) { a.BestFitScanLimit = n }
}

// WithUnfitBudget overrides [Allocator.UnfitBudget].
func WithUnfitBudget(n int) Option {
	return func(a *Allocator) { a.UnfitBudget = n }
}

// WithStrictChecking overrides [Allocator.Strict].
func WithStrictChecking(strict bool) Option {
	return func(a *Allocator) { a.Strict = strict }
}

// New constructs an Allocator with the given options applied over the
// documented defaults. The allocator is not usable until [Allocator.Init]
// is called.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		ChunkHint:        defaultChunkHint,
		BestFitScanLimit: defaultBestFitScanLimit,
		UnfitBudget:      defaultUnfitBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// sentinelBytes is the padding-word + prologue-header + prologue-interior
// + epilogue-header region Init lays down before any real block exists:
// one pad word, one prologue header, three prologue interior words
// (wasted, since the prologue is never read as a real block), and the
// initial epilogue header.
const sentinelBytes = 6 * wordSize

// Init resets the arena: it lays out the prologue and epilogue sentinels,
// clears every free-list head, and pre-extends the heap by ChunkHint
// bytes so the first few allocations do not each pay for their own
// extend. Init must be called at most once per Allocator.
func (a *Allocator) Init() error {
	if a.heap == nil {
		a.heap = newSliceHeap(0)
	}

	for i := range a.freeHead {
		a.freeHead[i] = nilOffset
	}

	if !a.heap.Extend(sentinelBytes) {
		return ErrOutOfArena
	}

	// word0: padding, keeps the prologue header 4 bytes into the arena so
	// its payload offset (8) is 8-aligned.
	a.writeWord(0, 0)
	// word1: prologue header, a minimum-size block marked allocated so
	// its footer slot (interior word 4) is never read.
	a.writeHeader(2*wordSize, pack(minBlockSize, true, true))
	// word5: initial epilogue header.
	a.heapEnd = 5 * wordSize
	a.writeHeader(a.heapEnd+wordSize, pack(0, true, true))

	first, ok := a.extendHeap(uint32(a.ChunkHint))
	if !ok {
		return ErrOutOfArena
	}
	a.first = first

	debug.Log(nil, "init", "chunkHint=%d bestFit=%d unfitBudget=%d", a.ChunkHint, a.BestFitScanLimit, a.UnfitBudget)

	return nil
}

// extendHeap grows the heap by nbytes (rounded up to the double-word
// boundary), turns the old epilogue into a fresh free block, writes a new
// epilogue after it, and coalesces the fresh block with whatever
// physically precedes it. It returns the payload offset of the (possibly
// merged) surviving free block.
func (a *Allocator) extendHeap(nbytes uint32) (offset32, bool) {
	nbytes = alignUp8(nbytes)
	if nbytes == 0 {
		return nilOffset, false
	}

	oldEpilogue := a.heapEnd
	prevAlloc := isPrevAllocWord(a.readWord(oldEpilogue))

	if !a.heap.Extend(int(nbytes)) {
		return nilOffset, false
	}

	fresh := oldEpilogue + wordSize
	a.writeHeader(fresh, pack(nbytes, false, prevAlloc))
	a.writeFooter(fresh, pack(nbytes, false, prevAlloc))

	newEpilogue := fresh + offset32(nbytes) - wordSize
	a.writeWord(newEpilogue, pack(0, true, false))
	a.heapEnd = newEpilogue

	debug.Log(nil, "extend", "n=%d fresh=%#x newEpilogue=%#x", nbytes, fresh, newEpilogue)

	return a.coalesce(fresh), true
}
