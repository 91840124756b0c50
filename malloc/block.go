package malloc

import "unsafe"

// block states and kinds, kept in the header's flags field.
const (
	blkfree  = uint64(0x1)
	blklarge = uint64(0x2)
)

// block is the in-band header preceding every chunk handed out by the
// heap. Within an arena region blocks tile the region exactly, the
// next physical header sits `total` bytes ahead and the previous one is
// reached through the back-link. A large region holds a single block
// spanning the whole mapping.
type block struct {
	total    int64   // header + payload + alignment padding
	payload  int64   // bytes usable by the application
	flags    uint64  // blkfree | blklarge
	prevphys *block  // previous physical block, nil at region start
	reg      *region // owning region
}

// freeblock overlays a free arena block, the two link words live in the
// first payload bytes and are valid only while the block is free.
type freeblock struct {
	block
	fprev **freeblock
	fnext *freeblock
}

// headersize fixed offset between a block header and its user pointer.
var headersize = int64(unsafe.Sizeof(block{}))

// Minpayload smallest payload a block can carry, sized to hold the
// free-list links of freeblock{}.
const Minpayload = int64(24)

// minblocksize smallest viable block, also the minimum splittable
// residual.
var minblocksize = headersize + Minpayload

// headerof recover the block header from a user pointer.
func headerof(ptr unsafe.Pointer) *block {
	return (*block)(unsafe.Pointer(uintptr(ptr) - uintptr(headersize)))
}

func (blk *block) userptr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + uintptr(headersize))
}

func (blk *block) isfree() bool {
	return (blk.flags & blkfree) != 0
}

func (blk *block) islarge() bool {
	return (blk.flags & blklarge) != 0
}

// spansregion true when this block covers its entire arena region.
func (blk *block) spansregion() bool {
	return blk.prevphys == nil && blk.total == blk.reg.size
}

func (blk *block) asfree() *freeblock {
	return (*freeblock)(unsafe.Pointer(blk))
}

// nextphys next physical block within the same region, nil at region
// end.
func (blk *block) nextphys() *block {
	end := uintptr(blk.reg.base()) + uintptr(blk.reg.size)
	nxt := uintptr(unsafe.Pointer(blk)) + uintptr(blk.total)
	if nxt >= end {
		return nil
	}
	return (*block)(unsafe.Pointer(nxt))
}

// splitat carve a tail block `at` bytes into blk, fixing the physical
// links on either side. Caller indexes the tail into the free list.
func (blk *block) splitat(at int64) *block {
	tail := (*block)(unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + uintptr(at)))
	tail.total = blk.total - at
	tail.payload = 0
	tail.flags = blkfree
	tail.prevphys = blk
	tail.reg = blk.reg
	blk.total = at
	if nn := tail.nextphys(); nn != nil {
		nn.prevphys = tail
	}
	return tail
}
