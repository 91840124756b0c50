// Package osmem obtains and returns page-aligned virtual memory ranges
// directly from the operating system, using anonymous memory maps. There
// is no caching at this layer, every Map is a fresh mapping and every
// Unmap goes straight back to the OS.
package osmem

import "os"

// Pagesize return the OS page size in bytes.
func Pagesize() int64 {
	return int64(os.Getpagesize())
}
