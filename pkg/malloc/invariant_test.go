package malloc_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relyt871/OS-practice-Malloc/internal/debug"
	"github.com/relyt871/OS-practice-Malloc/pkg/malloc"
)

// TestInvariantsHoldAcrossRandomTrace generates a long, seeded sequence of
// Alloc/Free/Realloc/Calloc calls and asserts Allocator.Check passes after
// every single step, not just at the end: a corrupted invariant can sit
// latent for many operations after the mutation that caused it, so
// checking only the final state would miss exactly the bugs this test
// exists to catch. The seed is fixed (not math/rand's global source) so a
// failure is reproducible across runs.
func TestInvariantsHoldAcrossRandomTrace(t *testing.T) {
	defer debug.WithTesting(t)()

	const seed = 20240615
	const steps = 2000

	rng := rand.New(rand.NewSource(seed))

	a := malloc.New(malloc.WithChunkHint(256), malloc.WithMaxHeapSize(1<<22))
	require.NoError(t, a.Init())

	var live []malloc.Ptr

	for i := 0; i < steps; i++ {
		op := rng.Intn(4)
		if len(live) == 0 {
			op = 0
		}

		switch op {
		case 0: // alloc
			n := 1 + rng.Intn(256)
			if p := a.Alloc(n); p != malloc.Nil {
				live = append(live, p)
			}

		case 1: // free
			idx := rng.Intn(len(live))
			a.Free(live[idx])
			live = append(live[:idx], live[idx+1:]...)

		case 2: // realloc
			idx := rng.Intn(len(live))
			n := 1 + rng.Intn(256)
			if q := a.Realloc(live[idx], n); q != malloc.Nil {
				live[idx] = q
			} else {
				live = append(live[:idx], live[idx+1:]...)
			}

		default: // calloc
			m := 1 + rng.Intn(16)
			n := 1 + rng.Intn(16)
			if p := a.Calloc(m, n); p != malloc.Nil {
				live = append(live, p)
			}
		}

		require.NoErrorf(t, a.Check(false), "invariant violated after step %d (op=%d)", i, op)
	}
}

// TestInvariantsHoldAcrossSeveralSeeds repeats a shorter walk (Alloc,
// Free and Realloc only, requests up to 64 bytes) with a handful of
// distinct seeds and a tighter arena, so the generator is more
// likely to exercise extend/split/coalesce in combinations a single long
// run might not hit early.
func TestInvariantsHoldAcrossSeveralSeeds(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42, 99991} {
		rng := rand.New(rand.NewSource(seed))

		a := malloc.New(malloc.WithChunkHint(64), malloc.WithMaxHeapSize(1 << 16))
		require.NoError(t, a.Init())

		var live []malloc.Ptr

		for i := 0; i < 500; i++ {
			op := rng.Intn(3)
			if len(live) == 0 {
				op = 0
			}

			switch op {
			case 0:
				n := 1 + rng.Intn(64)
				if p := a.Alloc(n); p != malloc.Nil {
					live = append(live, p)
				}
			case 1:
				idx := rng.Intn(len(live))
				a.Free(live[idx])
				live = append(live[:idx], live[idx+1:]...)
			default:
				idx := rng.Intn(len(live))
				n := 1 + rng.Intn(64)
				if q := a.Realloc(live[idx], n); q != malloc.Nil {
					live[idx] = q
				} else {
					live = append(live[:idx], live[idx+1:]...)
				}
			}

			require.NoErrorf(t, a.Check(false), "seed %d: invariant violated after step %d", seed, i)
		}
	}
}
