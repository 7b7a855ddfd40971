//go:build go1.21

// Package xflag provides small conveniences on top of the standard
// flag package used by the allocator's debug instrumentation.
package xflag

import "flag"

// Func is like [flag.Func], but avoids the need for an init func by
// allocating its own storage for the return value.
func Func[T any](name, usage string, fn func(string) (T, error)) *T {
	v := new(T)
	flag.Func(name, usage, func(s string) (err error) {
		*v, err = fn(s)
		return err
	})
	return v
}
