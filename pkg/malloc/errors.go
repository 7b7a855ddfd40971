package malloc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfArena is returned by Init when the heap provider denies either
// of Init's extensions (the sentinels, then the ChunkHint pre-extension).
// The public Alloc/Realloc/Calloc operations report an out-of-arena
// condition as Nil instead of an error.
var ErrOutOfArena = errors.New("malloc: out of arena space")

// ErrInvariant is the sentinel every [CheckError] wraps. A caller that
// only wants to know whether Check failed because of a corrupted heap
// (rather than, say, a misuse of the API) can test for it with
// [errors.Is] instead of unwrapping a [CheckError] to inspect Problems.
var ErrInvariant = errors.New("malloc: invariant violation")

// CheckError aggregates every invariant violation [Allocator.Check]
// found while walking the arena. A caller that only cares whether the
// heap is consistent can treat it as a plain error; one that wants the
// detail can use [errors.As] to recover the list of problems.
type CheckError struct {
	Problems []string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("malloc: %d invariant violation(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Unwrap lets [errors.Is](err, [ErrInvariant]) succeed for any CheckError,
// without flattening away the individual Problems an [errors.As] caller
// still wants.
func (e *CheckError) Unwrap() error { return ErrInvariant }
