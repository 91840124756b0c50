package malloc

import "unsafe"

// ptrat address `off` bytes into a mapping.
func ptrat(base unsafe.Pointer, off int64) unsafe.Pointer {
	return unsafe.Pointer(uintptr(base) + uintptr(off))
}

// Validate walk every region and check the heap's structural
// invariants, panicking on the first violation. Meant for tests and
// debugging, the walk is linear in the number of blocks.
//
// Checked invariants:
//   - blocks tile each arena region exactly, no gaps, no overlap
//   - every total is a multiple of Alignment and at least the minimum
//     viable block
//   - back-links mirror the physical chain
//   - no two adjacent free blocks (eager coalescing)
//   - every free arena block is indexed exactly once, every index
//     member is a free block, bucketed under its class
//   - a large region holds exactly one in-use block spanning it
func (heap *Heap) Validate() {
	indexed := make(map[uintptr]int)
	for idx, fb := range heap.flist {
		for ; fb != nil; fb = fb.fnext {
			indexed[uintptr(unsafe.Pointer(fb))]++
			if !fb.isfree() {
				panicerr("%v indexed block %p not free", heap.logprefix, fb)
			} else if fb.islarge() {
				panicerr("%v indexed block %p is large", heap.logprefix, fb)
			} else if fitclass(heap.slabs, fb.total) != idx {
				fmsg := "%v block %p of %v bytes in bucket %v"
				panicerr(fmsg, heap.logprefix, fb, fb.total, heap.slabs[idx])
			}
		}
	}

	nfree, nempty := 0, int64(0)
	for reg := heap.regions; reg != nil; reg = reg.next {
		if reg.large {
			blk := reg.firstblock()
			if blk.isfree() || !blk.islarge() || blk.total != reg.size {
				panicerr("%v bad large region %p", heap.logprefix, reg)
			}
			continue
		}
		var prev *block
		off, prevfree := int64(0), false
		for off < reg.size {
			blk := (*block)(ptrat(reg.base(), off))
			if blk.total < minblocksize || (blk.total%Alignment) != 0 {
				fmsg := "%v bad total %v at %p"
				panicerr(fmsg, heap.logprefix, blk.total, blk)
			} else if blk.reg != reg {
				panicerr("%v block %p region link broken", heap.logprefix, blk)
			} else if blk.prevphys != prev {
				panicerr("%v block %p back-link broken", heap.logprefix, blk)
			}
			if blk.isfree() {
				if prevfree {
					panicerr("%v adjacent free blocks at %p", heap.logprefix, blk)
				}
				nfree++
				if indexed[uintptr(unsafe.Pointer(blk))] != 1 {
					panicerr("%v free block %p not indexed", heap.logprefix, blk)
				}
				if blk.spansregion() {
					nempty++
				}
			}
			prev, prevfree = blk, blk.isfree()
			off += blk.total
		}
		if off != reg.size {
			panicerr("%v region %p not tiled exactly", heap.logprefix, reg)
		}
	}
	if nfree != len(indexed) {
		fmsg := "%v index holds %v blocks, regions hold %v"
		panicerr(fmsg, heap.logprefix, len(indexed), nfree)
	}
	if nempty != heap.nempty {
		fmsg := "%v empty region count %v, expected %v"
		panicerr(fmsg, heap.logprefix, heap.nempty, nempty)
	}
}
