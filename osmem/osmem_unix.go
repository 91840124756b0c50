//go:build !plan9 && !windows && !js

package osmem

import "fmt"

import "golang.org/x/sys/unix"

// Map allocate `size` bytes of fresh, page-aligned, zero-initialized
// memory using an anonymous memory map. `size` is expected to be a
// multiple of the OS page size. Failures are reported, never retried.
func Map(size int64) ([]byte, error) {
	mem, err := unix.Mmap(
		-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, fmt.Errorf("osmem: map of %v bytes failed: %w", size, err)
	}
	return mem, nil
}

// Unmap return a region to the OS. `mem` shall be the same slice (not a
// derived slice) that Map returned.
func Unmap(mem []byte) error {
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("osmem: unmap failed: %w", err)
	}
	return nil
}
