package lib

/* thread.go contains functions useful for multi-threading. */

import (
	"runtime"
)

// SetThreads lets the Go runtime use n cores and returns the previous
// setting. n should come from Args.Threads, which has already been checked
// against the number of cores.
func SetThreads(n int) int {
	if n < 1 {
		n = runtime.NumCPU()
	}
	return runtime.GOMAXPROCS(n)
}
