package malloc

import (
	"fmt"

	"github.com/timandy/routine"

	"github.com/relyt871/OS-practice-Malloc/internal/debug"
)

// guardReentry is a cheap tripwire for the no-concurrent-entry rule: the
// allocator may not be entered from two different goroutines
// concurrently. It is a no-op unless built with the debug tag, in which
// case it uses the same goroutine-identification dependency
// internal/debug already relies on for log lines.
func (a *Allocator) guardReentry() func() {
	if !debug.Enabled {
		return noopExit
	}

	id := routine.Goid()
	if a.activeGoroutine != 0 && a.activeGoroutine != id {
		panic(fmt.Sprintf(
			"malloc: concurrent call from goroutine %d while goroutine %d is active\n%s",
			id, a.activeGoroutine, debug.Stack(2),
		))
	}

	// Nested calls from the same goroutine (Realloc calling Alloc/Free,
	// Calloc calling Alloc) are expected; only the outermost call resets
	// the marker on exit.
	if a.activeGoroutine == id {
		return noopExit
	}

	a.activeGoroutine = id
	return func() { a.activeGoroutine = 0 }
}

func noopExit() {}
