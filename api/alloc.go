package api

import "unsafe"

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Slabs return the size-class boundaries of the free-list index.
	Slabs() (sizes []int64)

	// Alloc allocate a chunk of `n` bytes. Allocated memory is always
	// 64-bit aligned, nil is returned when memory is exhausted.
	Alloc(n int64) unsafe.Pointer

	// Realloc resize the chunk at `ptr` to `n` bytes. Return the same
	// pointer when resizing is done in place, a new pointer when the
	// chunk had to move, nil when memory is exhausted. On nil return
	// the old chunk is left untouched.
	Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer

	// Free chunk back to the heap. Freeing nil is a no-op.
	Free(ptr unsafe.Pointer)

	// Chunklen return the length of the chunk usable by application.
	Chunklen(ptr unsafe.Pointer) int64

	// Info of memory accounting for this heap.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization returns size-class boundaries and the number of free
	// blocks currently indexed under each class.
	Utilization() ([]int64, []int64)

	// Release heap, all its regions and resources. Returns 0.
	Release() int
}

// Blockinfo describes one in-use block, as enumerated by the heap's
// leak walker.
type Blockinfo struct {
	// Ptr is the user pointer of the block.
	Ptr unsafe.Pointer
	// Size is the chunk length usable by application.
	Size int64
	// Large is true for blocks backed by a dedicated region.
	Large bool
}
