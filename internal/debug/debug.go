//go:build !release

package debug

import "fmt"

// Assert panics with the formatted info if fn returns false. fn is not run
// in release builds, so it may be arbitrarily expensive.
func Assert(fn func() bool, info string, args ...interface{}) {
	if !fn() {
		panic("assertion failed: " + fmt.Sprintf(info, args...))
	}
}
