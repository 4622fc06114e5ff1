// Package memzero wipes secret buffers once they are no longer needed.
//
// Wiping is best-effort: Go may already have copied the bytes elsewhere
// (stack growth, append, string conversion). It shortens the lifetime of the
// copies the caller controls.
package memzero

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites each buffer with zeros in a constant-time friendly way.
//
//go:noinline
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		zero := make([]byte, len(b))
		subtle.ConstantTimeCopy(1, b, zero)
		runtime.KeepAlive(&b)
	}
}
